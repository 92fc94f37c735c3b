package main

import (
	"errors"
	"os"

	sanmark "github.com/ymitsu/sanmark"
	"github.com/ymitsu/sanmark/internal/config"
)

// Exit codes for the sanmark CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Clean document(s)
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or ruleset
	ExitIO      = 3 // File not found, permission denied
	ExitIssues  = 4 // Document compiled but has validation errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Validation failures (exit 4)
	if errors.Is(err, ErrIssuesFound) {
		return ExitIssues
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/ruleset errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, sanmark.ErrEmptyInput) ||
		errors.Is(err, sanmark.ErrNoKeywords) ||
		errors.Is(err, sanmark.ErrInvalidJump) ||
		errors.Is(err, sanmark.ErrUnknownEligible) ||
		errors.Is(err, sanmark.ErrHeadingLevel) ||
		errors.Is(err, sanmark.ErrDuplicateKeyword) {
		return ExitUsage
	}

	return ExitGeneral
}
