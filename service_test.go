package sanmark

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

// sampleDocument is a small well-formed document exercising headings,
// multi-line blocks and the list shorthand.
const sampleDocument = `;;;見出し1;;; Introduction ;;;
plain prose between blocks
;;;引用
a quoted line
another quoted line
;;;
;;;見出し2;;; Details ;;;
- ;;;太字;;; emphasized item
`

func TestServiceCompile(t *testing.T) {
	t.Parallel()

	svc := New()
	doc, err := svc.Compile(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(doc.Issues) != 0 {
		t.Errorf("issues = %v, want none", issueCodes(doc.Issues))
	}
	if len(doc.Blocks) != 4 {
		t.Errorf("got %d blocks, want 4", len(doc.Blocks))
	}
	if len(doc.TOC) != 1 {
		t.Fatalf("got %d TOC roots, want 1", len(doc.TOC))
	}
	root := doc.TOC[0]
	if root.Title != "Introduction" || root.ID != "introduction" {
		t.Errorf("TOC root = %+v, want Introduction/introduction", root)
	}
	if len(root.Children) != 1 || root.Children[0].Title != "Details" {
		t.Errorf("TOC children = %+v, want [Details]", root.Children)
	}
}

func TestServiceCompile_EmptyInput(t *testing.T) {
	t.Parallel()

	svc := New()
	if _, err := svc.Compile(context.Background(), ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Compile(\"\") error = %v, want ErrEmptyInput", err)
	}
}

func TestServiceCompile_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New()
	if _, err := svc.Compile(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if _, err := svc.CompileChunked(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("chunked error = %v, want context.Canceled", err)
	}
}

func TestServiceCompile_Idempotent(t *testing.T) {
	t.Parallel()

	svc := New()
	first, err := svc.Compile(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := svc.Compile(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Compile of the same input produced different documents")
	}
}

func TestServiceCompile_IssuesDoNotError(t *testing.T) {
	t.Parallel()

	svc := New()
	doc, err := svc.Compile(context.Background(), ";;;bold;;;\n;;;未知")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !hasCode(doc.Issues, CodeUnknownKeyword) {
		t.Error("missing UNKNOWN_KEYWORD")
	}
	if !hasCode(doc.Issues, CodeUnclosedBlock) {
		t.Error("missing UNCLOSED_BLOCK")
	}
	if doc.ErrorCount() < 2 {
		t.Errorf("ErrorCount = %d, want at least 2", doc.ErrorCount())
	}
}

func TestServiceCompile_CRLFInput(t *testing.T) {
	t.Parallel()

	svc := New()
	crlf := strings.ReplaceAll(sampleDocument, "\n", "\r\n")

	want, err := svc.Compile(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := svc.Compile(context.Background(), crlf)
	if err != nil {
		t.Fatalf("Compile(crlf): %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Error("CRLF input compiled differently from LF input")
	}
}

func TestServiceCompileChunked_MatchesSequential(t *testing.T) {
	t.Parallel()

	// With a chunk size larger than the document there is exactly one
	// chunk, so the chunked path must agree with the sequential one.
	svc := New(WithChunkSize(1000), WithMaxWorkers(4))

	want, err := svc.Compile(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := svc.CompileChunked(context.Background(), sampleDocument)
	if err != nil {
		t.Fatalf("CompileChunked: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("chunked document differs from sequential one:\n got %+v\nwant %+v", got, want)
	}
}

func TestServiceCompileChunked_LargeInput(t *testing.T) {
	t.Parallel()

	// Many whole blocks, sized so every block fits inside one chunk.
	var sb strings.Builder
	for i := 1; i <= 200; i++ {
		fmt.Fprintf(&sb, ";;;見出し1;;; Section %d ;;;\n", i)
		fmt.Fprintf(&sb, ";;;太字;;; body %d ;;;\n", i)
	}

	svc := New(WithChunkSize(40), WithMaxWorkers(4))
	doc, err := svc.CompileChunked(context.Background(), sb.String())
	if err != nil {
		t.Fatalf("CompileChunked: %v", err)
	}

	if len(doc.Blocks) != 400 {
		t.Errorf("got %d blocks, want 400", len(doc.Blocks))
	}
	if len(doc.TOC) != 200 {
		t.Errorf("got %d TOC roots, want 200", len(doc.TOC))
	}
	// Blocks must come back in document order.
	for i := 1; i < len(doc.Blocks); i++ {
		if doc.Blocks[i-1].StartLine >= doc.Blocks[i].StartLine {
			t.Fatalf("blocks out of document order at index %d", i)
		}
	}
}

func TestServiceCompileChunked_BoundarySplit(t *testing.T) {
	t.Parallel()

	// A block spanning a chunk boundary is reported as unclosed in one
	// chunk and unmatched in the next. That is the documented trade-off
	// of the chunked path.
	text := ";;;太字\ncontent line\n;;;"
	svc := New(WithChunkSize(2))

	doc, err := svc.CompileChunked(context.Background(), text)
	if err != nil {
		t.Fatalf("CompileChunked: %v", err)
	}

	if !hasCode(doc.Issues, CodeUnclosedBlock) {
		t.Error("missing UNCLOSED_BLOCK for split block")
	}
	if !hasCode(doc.Issues, CodeUnmatchedBlockEnd) {
		t.Error("missing UNMATCHED_BLOCK_END for split block")
	}
}

func TestServiceCompileChunked_EmptyInput(t *testing.T) {
	t.Parallel()

	svc := New()
	if _, err := svc.CompileChunked(context.Background(), ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("CompileChunked(\"\") error = %v, want ErrEmptyInput", err)
	}
}

func TestServiceOptions(t *testing.T) {
	t.Parallel()

	t.Run("custom ruleset", func(t *testing.T) {
		t.Parallel()

		rules, err := NewRuleset(RulesetSpec{
			Keywords:      []string{"bold", "h1"},
			HeadingLevels: map[string]int{"h1": 1},
		})
		if err != nil {
			t.Fatalf("NewRuleset: %v", err)
		}
		svc := New(WithRuleset(rules))

		doc, err := svc.Compile(context.Background(), ";;;bold;;;\n;;;太字;;;")
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if n := countCode(doc.Issues, CodeUnknownKeyword); n != 1 {
			t.Errorf("UNKNOWN_KEYWORD count = %d, want 1 (太字 only)", n)
		}
	})

	t.Run("rules accessor", func(t *testing.T) {
		t.Parallel()

		svc := New()
		if svc.Rules() == nil || !svc.Rules().IsLegal("太字") {
			t.Error("Rules() did not expose the built-in ruleset")
		}
	})

	t.Run("nil ruleset panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("WithRuleset(nil) did not panic")
			}
		}()
		WithRuleset(nil)
	})

	t.Run("non-positive timeout panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("WithTaskTimeout(0) did not panic")
			}
		}()
		WithTaskTimeout(0)
	})

	t.Run("timeout and logger options plumb through", func(t *testing.T) {
		t.Parallel()

		svc := New(
			WithChunkSize(2),
			WithMaxWorkers(2),
			WithTaskTimeout(5*time.Second),
			WithLogger(func(string, ...any) {}),
		)
		if _, err := svc.CompileChunked(context.Background(), sampleDocument); err != nil {
			t.Fatalf("CompileChunked: %v", err)
		}
	})
}
