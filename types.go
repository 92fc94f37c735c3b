package sanmark

import "fmt"

// Severity classifies a ValidationIssue.
type Severity int

// Severity levels, most severe first.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Issue codes for structural (tokenizer) problems.
const (
	CodeUnclosedBlock      = "UNCLOSED_BLOCK"
	CodeUnmatchedBlockEnd  = "UNMATCHED_BLOCK_END"
	CodeMultilineSyntax    = "MULTILINE_SYNTAX"
	CodeInvalidBlockMarker = "INVALID_BLOCK_MARKER"
	CodeInlineMarker       = "INLINE_MARKER"
)

// Issue codes for semantic (keyword/attribute) problems.
const (
	CodeUnknownKeyword     = "UNKNOWN_KEYWORD"
	CodeEmptyKeyword       = "EMPTY_KEYWORD"
	CodeDuplicateKeyword   = "DUPLICATE_KEYWORD"
	CodeMultipleHeadings   = "MULTIPLE_HEADINGS"
	CodeUnknownAttribute   = "UNKNOWN_ATTRIBUTE"
	CodeInvalidColorFormat = "INVALID_COLOR_FORMAT"
	CodeInvalidColorUsage  = "INVALID_COLOR_USAGE"
	CodeInvalidAltUsage    = "INVALID_ALT_USAGE"
)

// Issue codes for table-of-contents problems.
const (
	CodeMissingField      = "MISSING_FIELD"
	CodeInvalidLevelType  = "INVALID_LEVEL_TYPE"
	CodeInvalidLevelRange = "INVALID_LEVEL_RANGE"
	CodeDuplicateID       = "DUPLICATE_ID"
	CodeEmptyTitle        = "EMPTY_TITLE"
	CodeLevelJump         = "LEVEL_JUMP"
)

// ValidationIssue is one problem found while compiling a document.
// Issues are accumulated, never raised as errors: a document with issues
// still produces a best-effort parse.
type ValidationIssue struct {
	Line       int    // 1-based line number, 0 if the issue has no anchor
	Severity   Severity
	Code       string
	Message    string
	Suggestion string // optional fix hint, empty if none
}

// String formats the issue as "line N: severity CODE: message".
func (v ValidationIssue) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s %s: %s", v.Line, v.Severity, v.Code, v.Message)
	}
	return fmt.Sprintf("%s %s: %s", v.Severity, v.Code, v.Message)
}

// Attribute is a name=value suffix carried by a keyword, such as
// color=#ff0000 or alt=diagram.
type Attribute struct {
	Name  string
	Value string
}

// Keyword is one base keyword from a marker payload, optionally qualified
// by an attribute.
type Keyword struct {
	Name      string
	Attribute *Attribute // nil when the keyword carries no attribute
}

// Block is one delimited region of markup. A Block is immutable once
// Closed is set; ContentLines only holds lines between a recognized start
// marker and its matching end marker.
type Block struct {
	StartLine    int // 1-based line of the opening marker
	Keywords     []Keyword
	Attributes   map[string]string // merged attribute values by name
	ContentLines []string
	Closed       bool
}

// TOCEntry is one node of the table of contents tree.
type TOCEntry struct {
	Title    string
	Level    int // 1..6
	ID       string
	Children []*TOCEntry
}

// Document is the result of compiling one markup text.
type Document struct {
	Blocks []Block
	TOC    []*TOCEntry
	Issues []ValidationIssue
}

// ErrorCount returns how many issues have SeverityError.
func (d *Document) ErrorCount() int {
	n := 0
	for _, issue := range d.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns how many issues have SeverityWarning.
func (d *Document) WarningCount() int {
	n := 0
	for _, issue := range d.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
