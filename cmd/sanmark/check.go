package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	sanmark "github.com/ymitsu/sanmark"
	"github.com/ymitsu/sanmark/internal/config"
	"github.com/ymitsu/sanmark/internal/hints"
)

// Sentinel errors for the check command.
var (
	ErrNoInput          = errors.New("no input file given")
	ErrReadInput        = errors.New("failed to read input file")
	ErrInvalidExtension = errors.New("file must have .san or .sanm extension")
	ErrUnknownFormat    = errors.New("unknown report format")
	ErrInvalidTimeout   = errors.New("invalid timeout")
	ErrIssuesFound      = errors.New("document has validation errors")
)

// reportFormats lists the supported --format values.
var reportFormats = []string{"text", "yaml"}

// runCheck compiles every input file and prints a report per file.
// It returns ErrIssuesFound if any file has errors (or warnings under
// --strict), so the CLI exits non-zero without aborting the remaining
// files.
func runCheck(stdout, stderr io.Writer, flags *checkFlags, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w\n\nusage: sanmark check [flags] <file.san>", ErrNoInput)
	}

	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, stderr, flags.verbose)
	if err != nil {
		return err
	}

	format := cfg.Check.Format
	if format == "" {
		format = "text"
	}
	switch format {
	case "text", "yaml":
	default:
		return fmt.Errorf("%w: %q%s", ErrUnknownFormat, format, hints.ForUnknownFormat(reportFormats))
	}

	failed := false
	for _, path := range inputs {
		doc, err := checkFile(svc, cfg, path, flags.verbose, stderr)
		if err != nil {
			return err
		}

		rep := buildReport(path, doc, flags.quiet)
		if format == "yaml" {
			err = printYAMLReport(stdout, rep)
		} else {
			err = printTextReport(stdout, rep)
		}
		if err != nil {
			return err
		}

		if doc.ErrorCount() > 0 {
			failed = true
		}
		if cfg.Check.Strict && doc.WarningCount() > 0 {
			failed = true
		}
	}

	if failed {
		if cfg.Check.Strict {
			return fmt.Errorf("%w%s", ErrIssuesFound, hints.ForStrictMode())
		}
		return ErrIssuesFound
	}
	return nil
}

// resolveConfig loads the config file (if any) and overlays explicit
// flag values on top of it.
func resolveConfig(flags *checkFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.config != "" {
		loaded, err := config.LoadConfig(flags.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchedPaths(flags.config)))
			}
			return nil, err
		}
		cfg = loaded
	}

	// Explicit flags win over config file values.
	if flags.set["workers"] {
		cfg.Check.Workers = flags.workers
	}
	if flags.set["chunk-size"] {
		cfg.Check.ChunkSize = flags.chunkSize
	}
	if flags.set["format"] {
		cfg.Check.Format = flags.format
	}
	if flags.set["strict"] {
		cfg.Check.Strict = flags.strict
	}
	if flags.set["timeout"] {
		cfg.Check.Timeout = flags.timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildService assembles the sanmark Service from the resolved config.
func buildService(cfg *config.Config, stderr io.Writer, verbose bool) (*sanmark.Service, error) {
	opts := []sanmark.Option{
		sanmark.WithMaxWorkers(cfg.Check.Workers),
		sanmark.WithChunkSize(cfg.Check.ChunkSize),
	}

	if !cfg.Rules.Empty() {
		rules, err := sanmark.NewRuleset(sanmark.RulesetSpec{
			Keywords:      cfg.Rules.Keywords,
			HeadingLevels: cfg.Rules.Headings,
			ColorEligible: cfg.Rules.ColorEligible,
			AltEligible:   cfg.Rules.AltEligible,
			MaxLevelJump:  cfg.Rules.MaxLevelJump,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, sanmark.WithRuleset(rules))
	}

	if cfg.Check.Timeout != "" {
		d, err := time.ParseDuration(cfg.Check.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q%s", ErrInvalidTimeout, cfg.Check.Timeout, hints.ForTimeout())
		}
		opts = append(opts, sanmark.WithTaskTimeout(d))
	}

	if verbose {
		opts = append(opts, sanmark.WithLogger(func(format string, args ...any) {
			fmt.Fprintf(stderr, format+"\n", args...)
		}))
	}

	return sanmark.New(opts...), nil
}

// checkFile reads and compiles one input file. Parallel chunked
// compilation kicks in when the user asked for explicit workers or a
// chunk size; the default is the exact sequential scan.
func checkFile(svc *sanmark.Service, cfg *config.Config, path string, verbose bool, stderr io.Writer) (*sanmark.Document, error) {
	if err := validateInputExtension(path); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- input path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	start := time.Now()
	var doc *sanmark.Document
	if cfg.Check.Workers > 1 || cfg.Check.ChunkSize > 0 {
		doc, err = svc.CompileChunked(context.Background(), string(content))
	} else {
		doc, err = svc.Compile(context.Background(), string(content))
	}
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(stderr, "%s: %d blocks, %d issues in %s\n",
			path, len(doc.Blocks), len(doc.Issues), time.Since(start).Round(time.Millisecond))
	}
	return doc, nil
}

// validateInputExtension checks that the file has a .san or .sanm
// extension.
func validateInputExtension(path string) error {
	switch filepath.Ext(path) {
	case ".san", ".sanm":
		return nil
	}
	return fmt.Errorf("%w: got %q%s", ErrInvalidExtension, filepath.Ext(path), hints.ForInputExtension())
}
