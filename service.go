package sanmark

import (
	"context"
	"strings"
	"time"
)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	maxWorkers  int
	chunkSize   int
	taskTimeout time.Duration
	logf        func(format string, args ...any)
}

// Option configures a Service.
type Option func(*Service)

// WithRuleset replaces the built-in language. Panics on nil (programmer
// error): a Service without rules cannot classify anything.
func WithRuleset(rules *Ruleset) Option {
	if rules == nil {
		panic("sanmark: " + ErrNilRuleset.Error())
	}
	return func(s *Service) {
		s.rules = rules
	}
}

// WithMaxWorkers bounds the worker pool used by CompileChunked. Zero
// selects the available parallelism.
func WithMaxWorkers(n int) Option {
	return func(s *Service) {
		s.cfg.maxWorkers = n
	}
}

// WithChunkSize fixes the chunk size for CompileChunked instead of the
// adaptive default.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		s.cfg.chunkSize = n
	}
}

// WithTaskTimeout bounds each per-chunk transform in CompileChunked.
func WithTaskTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("sanmark: WithTaskTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.taskTimeout = d
	}
}

// WithLogger installs a logger for diagnostics the library would
// otherwise swallow (per-chunk failures, pool sizing). The library is
// silent without one.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(s *Service) {
		s.cfg.logf = logf
	}
}

// Service orchestrates the markup compilation pipeline: tokenize,
// validate keywords and structure, build and validate the TOC.
//
// A Service holds only static configuration; both Compile and
// CompileChunked are pure functions of their inputs plus that
// configuration, so one Service may be shared by concurrent callers.
type Service struct {
	cfg       serviceConfig
	rules     *Ruleset
	tokenizer *Tokenizer
}

// New creates a Service with the built-in language. Use options to
// customize behavior (e.g. WithRuleset, WithMaxWorkers).
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rules == nil {
		s.rules = DefaultRuleset()
	}
	s.tokenizer = NewTokenizer(s.rules)
	return s
}

// Rules returns the service's immutable ruleset.
func (s *Service) Rules() *Ruleset {
	return s.rules
}

// Compile runs the full pipeline over text in a single sequential scan
// and returns the best-effort Document. Markup problems land in
// Document.Issues, never in the error; the error is reserved for empty
// input and context cancellation.
func (s *Service) Compile(ctx context.Context, text string) (*Document, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := strings.Split(NormalizeLineEndings(text), "\n")
	blocks, headings, issues := s.tokenizer.Tokenize(lines)

	toc := BuildTOC(headings)
	issues = append(issues, ValidateTOC(toc, s.rules)...)

	return &Document{Blocks: blocks, TOC: toc, Issues: issues}, nil
}

// chunkParse is the per-chunk payload CompileChunked merges.
type chunkParse struct {
	blocks   []Block
	headings []Heading
	issues   []ValidationIssue
}

// CompileChunked runs the same pipeline with the input partitioned into
// chunks processed on a bounded worker pool. Chunks are tokenized
// independently, so a block spanning a chunk boundary is reported as
// unclosed in one chunk and unmatched in the next; that trade-off is
// what buys parallel throughput on large inputs. Use Compile when exact
// boundary semantics matter more than speed.
//
// Chunk results are merged in ascending chunk order, so blocks, TOC and
// issues come back in document order regardless of completion order. A
// failed chunk is logged and dropped; the rest of the document still
// compiles.
func (s *Service) CompileChunked(ctx context.Context, text string) (*Document, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := strings.Split(NormalizeLineEndings(text), "\n")

	var chunks []Chunk
	if s.cfg.chunkSize > 0 {
		chunks = Partition(lines, s.cfg.chunkSize)
	} else {
		chunks = PartitionAdaptive(lines, 0)
	}

	exec := NewExecutor[chunkParse](
		WithWorkers(s.cfg.maxWorkers),
		WithExecTaskTimeout(s.cfg.taskTimeout),
		WithExecLogger(s.cfg.logf),
	)
	results := exec.RunOrdered(ctx, chunks, func(ctx context.Context, c Chunk) ([]chunkParse, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks, headings, issues := s.tokenizer.TokenizeChunk(c)
		return []chunkParse{{blocks: blocks, headings: headings, issues: issues}}, nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &Document{}
	var headings []Heading
	for _, r := range results {
		for _, p := range r.Values {
			doc.Blocks = append(doc.Blocks, p.blocks...)
			headings = append(headings, p.headings...)
			doc.Issues = append(doc.Issues, p.issues...)
		}
	}

	// Results arrive in chunk order, which is document order, so issue
	// and block sequences line up with the sequential path.
	doc.TOC = BuildTOC(headings)
	doc.Issues = append(doc.Issues, ValidateTOC(doc.TOC, s.rules)...)

	return doc, nil
}
