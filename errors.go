package sanmark

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput = errors.New("input text cannot be empty")
	ErrNilRuleset = errors.New("ruleset cannot be nil")

	// Ruleset construction errors.
	ErrNoKeywords       = errors.New("ruleset must define at least one keyword")
	ErrInvalidJump      = errors.New("invalid level jump threshold")
	ErrUnknownEligible  = errors.New("attribute-eligible keyword not in legal set")
	ErrHeadingLevel     = errors.New("heading level out of range")
	ErrDuplicateKeyword = errors.New("keyword defined twice")

	// Executor errors.
	ErrNilTransform = errors.New("transform function cannot be nil")
)
