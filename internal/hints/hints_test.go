package hints_test

import (
	"strings"
	"testing"

	"github.com/ymitsu/sanmark/internal/hints"
)

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	t.Run("always suggests --config", func(t *testing.T) {
		t.Parallel()

		got := hints.ForConfigNotFound(nil)
		if !strings.Contains(got, "--config") {
			t.Errorf("hint = %q, want containing --config", got)
		}
	})

	t.Run("suggests creating a user config when searched", func(t *testing.T) {
		t.Parallel()

		paths := []string{"team.yaml", "/home/u/.config/sanmark/team.yaml"}
		got := hints.ForConfigNotFound(paths)
		if !strings.Contains(got, "/home/u/.config/sanmark/team.yaml") {
			t.Errorf("hint = %q, want containing the user config path", got)
		}
	})

	t.Run("hint prefix is consistent", func(t *testing.T) {
		t.Parallel()

		got := hints.ForConfigNotFound(nil)
		if !strings.HasPrefix(got, "\n  hint: ") {
			t.Errorf("hint = %q, want prefix %q", got, "\n  hint: ")
		}
	})
}

func TestForUnknownFormat(t *testing.T) {
	t.Parallel()

	t.Run("lists available formats", func(t *testing.T) {
		t.Parallel()

		got := hints.ForUnknownFormat([]string{"text", "yaml"})
		if !strings.Contains(got, "text, yaml") {
			t.Errorf("hint = %q, want containing %q", got, "text, yaml")
		}
	})

	t.Run("empty list yields no hint", func(t *testing.T) {
		t.Parallel()

		if got := hints.ForUnknownFormat(nil); got != "" {
			t.Errorf("hint = %q, want empty", got)
		}
	})
}

func TestSimpleHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fn     func() string
		wantIn string
	}{
		{"timeout", hints.ForTimeout, "--timeout"},
		{"input extension", hints.ForInputExtension, ".san"},
		{"strict mode", hints.ForStrictMode, "--strict"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.fn()
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Errorf("hint = %q, want the standard prefix", got)
			}
			if !strings.Contains(got, tt.wantIn) {
				t.Errorf("hint = %q, want containing %q", got, tt.wantIn)
			}
		})
	}
}
