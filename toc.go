package sanmark

import (
	"fmt"
	"strings"
	"unicode"
)

// BuildTOC nests headings (in document order) into a table-of-contents
// tree. An entry adopts every immediately-following entry whose level is
// greater than its own, until an entry of equal or lesser level appears.
// Nesting follows heading levels only, never textual indentation.
func BuildTOC(headings []Heading) []*TOCEntry {
	var roots []*TOCEntry
	var stack []*TOCEntry // open ancestors, strictly increasing level

	for _, h := range headings {
		entry := &TOCEntry{
			Title: h.Title,
			Level: h.Level,
			ID:    slugify(h.Title),
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, entry)
	}

	return roots
}

// ValidateTOC checks a whole table-of-contents tree. It needs the global
// view (ID uniqueness spans the entire tree), so it runs once after the
// tree is complete rather than per heading.
//
// Five independent checks run over every entry on every call: required
// fields, level range, global ID uniqueness, non-blank titles, and
// hierarchy jumps. None of them short-circuits the others.
func ValidateTOC(entries []*TOCEntry, rules *Ruleset) []ValidationIssue {
	if rules == nil {
		rules = DefaultRuleset()
	}
	v := &tocValidator{
		rules: rules,
		ids:   make(map[string]bool),
	}
	v.walk(entries, 0)
	return v.issues
}

// tocValidator accumulates issues across the recursive walk. The ids set
// is shared by the whole tree so duplicates are caught across branches.
type tocValidator struct {
	rules  *Ruleset
	ids    map[string]bool
	issues []ValidationIssue
}

func (v *tocValidator) add(sev Severity, code, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// walk validates one sibling list. parentLevel is 0 for the root list;
// root entries are compared against their preceding sibling instead,
// which catches jumps in flat entry lists handed in by callers that
// never ran BuildTOC.
func (v *tocValidator) walk(entries []*TOCEntry, parentLevel int) {
	prev := parentLevel
	for _, e := range entries {
		if e == nil {
			continue
		}

		// (1) Required fields: independent errors, no short-circuit.
		if e.Title == "" {
			v.add(SeverityError, CodeMissingField, "entry is missing a title")
		}
		if e.Level == 0 {
			v.add(SeverityError, CodeMissingField, "entry %q is missing a level", e.Title)
		}
		if e.ID == "" {
			v.add(SeverityError, CodeMissingField, "entry %q is missing an id", e.Title)
		}

		// (2) Level range. The typed model cannot hold a non-integer
		// level, so INVALID_LEVEL_TYPE never fires here; the constant is
		// kept for consumers that extend the taxonomy.
		if e.Level != 0 && (e.Level < MinHeadingLevel || e.Level > MaxHeadingLevel) {
			v.add(SeverityError, CodeInvalidLevelRange,
				"entry %q has level %d, must be between %d and %d",
				e.Title, e.Level, MinHeadingLevel, MaxHeadingLevel)
		}

		// (3) Global ID uniqueness, one accumulating set for the tree.
		if e.ID != "" {
			if v.ids[e.ID] {
				v.add(SeverityError, CodeDuplicateID, "duplicate id %q", e.ID)
			}
			v.ids[e.ID] = true
		}

		// (4) Non-blank title. A present-but-whitespace title is a
		// different defect from a missing one.
		if e.Title != "" && strings.TrimSpace(e.Title) == "" {
			v.add(SeverityError, CodeEmptyTitle, "entry has a blank title")
		}

		// (5) Hierarchy jump against the reference level.
		ref := parentLevel
		if parentLevel == 0 {
			ref = prev
		}
		if ref > 0 && e.Level > ref+v.rules.MaxLevelJump() {
			v.add(SeverityError, CodeLevelJump,
				"entry %q jumps from level %d to level %d", e.Title, ref, e.Level)
		}

		v.walk(e.Children, e.Level)
		if e.Level > 0 {
			prev = e.Level
		}
	}
}

// slugify derives a stable entry ID from a title: lowercase, whitespace
// collapsed to hyphens, punctuation dropped. Unicode letters and digits
// survive, so Japanese titles keep their characters.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
