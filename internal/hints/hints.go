// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import "strings"

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in ~/.config/sanmark/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/sanmark) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/sanmark") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTimeout returns a hint about the accepted timeout syntax.
func ForTimeout() string {
	return format("--timeout takes a Go duration such as 30s or 2m")
}

// ForInputExtension returns a hint naming the accepted input extensions.
func ForInputExtension() string {
	return format("input files must end in .san or .sanm")
}

// ForUnknownFormat returns a hint listing the supported output formats.
func ForUnknownFormat(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available formats: " + strings.Join(available, ", "))
}

// ForStrictMode returns a hint shown when warnings fail a strict run.
func ForStrictMode() string {
	return format("warnings fail the run under --strict; drop the flag to allow them")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
