// Package sanmark compiles the san-markup language (blocks delimited by a
// ;;; marker line) into a validated document model.
//
// # Quick Start
//
// Create a service and compile a document:
//
//	svc := sanmark.New()
//	doc, err := svc.Compile(ctx, text)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, issue := range doc.Issues {
//	    fmt.Println(issue)
//	}
//
// Compile never fails on malformed markup. Syntax and structure problems are
// collected into doc.Issues while the parser keeps going, so callers always
// receive a best-effort Document (doc.Blocks plus doc.TOC). The returned
// error is reserved for unrecoverable conditions such as empty input or a
// cancelled context.
//
// # Compilation Pipeline
//
// The pipeline has three stages:
//
//  1. Block tokenizing: a line-by-line state machine recognizes block
//     start/end markers, self-closing single-line blocks, and list-item
//     shorthand, and splits compound keywords (太字+文字色 color=#ff0000).
//  2. Keyword and syntax validation: keyword legality, attribute syntax,
//     duplicates and conflicts, structural errors (unclosed blocks, stray
//     end markers).
//  3. TOC building and validation: heading blocks become a hierarchical
//     table of contents, validated as a whole tree once the full document
//     has been scanned.
//
// # Scaling to Large Inputs
//
// For batch work over large documents, partition the input into chunks and
// run a transform across a bounded worker pool:
//
//	chunks := sanmark.PartitionAdaptive(lines, 0)
//	exec := sanmark.NewExecutor[sanmark.Document]()
//	results := exec.RunOrdered(ctx, chunks, transform)
//
// RunUnordered streams results as chunks complete; RunOrdered buffers and
// re-emits them in ascending chunk order. Failures are isolated per chunk:
// one failing transform never aborts the run.
//
// # Configuration
//
// The language itself (legal keywords, heading levels, attribute-eligible
// keyword sets, color format, TOC jump threshold) is an immutable Ruleset.
// DefaultRuleset provides the built-in language; pass a custom one with:
//
//	svc := sanmark.New(sanmark.WithRuleset(rules))
//
// Rulesets are never mutated after construction, so a single Ruleset may be
// shared by any number of concurrent compilations.
package sanmark
