//go:build bench

package sanmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// benchDocument builds a document with n sections of heading, prose and
// quoted blocks.
func benchDocument(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, ";;;見出し1;;; Section %d ;;;\n", i)
		fmt.Fprintf(&sb, "prose line for section %d\n", i)
		fmt.Fprintf(&sb, ";;;引用\nquoted line %d\n;;;\n", i)
		fmt.Fprintf(&sb, "- ;;;太字;;; item %d\n", i)
	}
	return sb.String()
}

// BenchmarkCompile benchmarks the sequential pipeline.
func BenchmarkCompile(b *testing.B) {
	sizes := []struct {
		name     string
		sections int
	}{
		{"small_20", 20},
		{"medium_200", 200},
		{"large_2000", 2000},
	}

	for _, s := range sizes {
		b.Run(s.name, func(b *testing.B) {
			text := benchDocument(s.sections)
			svc := New()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				doc, err := svc.Compile(context.Background(), text)
				if err != nil {
					b.Fatal(err)
				}
				_ = doc
			}
		})
	}
}

// BenchmarkCompileChunked benchmarks the parallel pipeline at several
// worker counts.
func BenchmarkCompileChunked(b *testing.B) {
	text := benchDocument(2000)

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			svc := New(WithMaxWorkers(workers), WithChunkSize(500))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				doc, err := svc.CompileChunked(context.Background(), text)
				if err != nil {
					b.Fatal(err)
				}
				_ = doc
			}
		})
	}
}

// BenchmarkTokenize benchmarks the raw tokenizer without TOC work.
func BenchmarkTokenize(b *testing.B) {
	lines := strings.Split(benchDocument(500), "\n")
	tok := NewTokenizer(nil)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		blocks, headings, issues := tok.Tokenize(lines)
		_, _, _ = blocks, headings, issues
	}
}
