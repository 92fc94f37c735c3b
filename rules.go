package sanmark

import (
	"fmt"
	"regexp"
)

// Marker is the punctuation run that opens and closes a block. The
// fullwidth variant is accepted everywhere the ASCII form is and the two
// are treated as equivalent.
const (
	Marker          = ";;;"
	MarkerFullwidth = "；；；"
)

// Compound keyword separators (ASCII and fullwidth plus).
const (
	compoundSep          = "+"
	compoundSepFullwidth = "＋"
)

// Attribute kinds recognized in marker payloads.
const (
	AttrColor = "color"
	AttrAlt   = "alt"
)

// TOC level bounds.
const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 6
)

// defaultMaxLevelJump allows a child heading to exceed its parent by one
// level. A larger threshold tolerates skipped levels.
const defaultMaxLevelJump = 1

// colorPattern requires "#" followed by exactly six hex digits.
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// RulesetSpec describes a markup language for NewRuleset. The zero value
// of optional fields selects defaults.
type RulesetSpec struct {
	Keywords      []string       // legal base keywords (required)
	HeadingLevels map[string]int // heading keyword -> TOC level 1..6
	ColorEligible []string       // keywords that may carry color=
	AltEligible   []string       // keywords that may carry alt=
	MaxLevelJump  int            // TOC jump threshold (0 = default 1)
}

// Ruleset is the immutable configuration shared by the tokenizer, the
// keyword validator, and the TOC validator. Construct one with NewRuleset
// or DefaultRuleset and never mutate it; a single Ruleset is safe for
// concurrent use.
type Ruleset struct {
	keywords      map[string]struct{}
	headingLevels map[string]int
	colorEligible map[string]struct{}
	altEligible   map[string]struct{}
	maxLevelJump  int
}

// DefaultRuleset returns the built-in san-markup language.
func DefaultRuleset() *Ruleset {
	rules, err := NewRuleset(RulesetSpec{
		Keywords: []string{
			"太字", "斜体", "下線", "取り消し線", "コード", "引用", "注釈",
			"見出し1", "見出し2", "見出し3", "見出し4", "見出し5", "見出し6",
			"文字色", "背景色", "画像",
		},
		HeadingLevels: map[string]int{
			"見出し1": 1, "見出し2": 2, "見出し3": 3,
			"見出し4": 4, "見出し5": 5, "見出し6": 6,
		},
		ColorEligible: []string{"文字色", "背景色"},
		AltEligible:   []string{"画像"},
	})
	if err != nil {
		// The built-in language is validated by tests; failing here is a
		// programmer error, not a runtime condition.
		panic("sanmark: invalid built-in ruleset: " + err.Error())
	}
	return rules
}

// NewRuleset validates spec and builds an immutable Ruleset.
func NewRuleset(spec RulesetSpec) (*Ruleset, error) {
	if len(spec.Keywords) == 0 {
		return nil, ErrNoKeywords
	}
	if spec.MaxLevelJump < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidJump, spec.MaxLevelJump)
	}

	r := &Ruleset{
		keywords:      make(map[string]struct{}, len(spec.Keywords)),
		headingLevels: make(map[string]int, len(spec.HeadingLevels)),
		colorEligible: make(map[string]struct{}, len(spec.ColorEligible)),
		altEligible:   make(map[string]struct{}, len(spec.AltEligible)),
		maxLevelJump:  spec.MaxLevelJump,
	}
	if r.maxLevelJump == 0 {
		r.maxLevelJump = defaultMaxLevelJump
	}

	for _, kw := range spec.Keywords {
		if _, dup := r.keywords[kw]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKeyword, kw)
		}
		r.keywords[kw] = struct{}{}
	}

	for kw, level := range spec.HeadingLevels {
		if _, ok := r.keywords[kw]; !ok {
			return nil, fmt.Errorf("%w: heading %q", ErrUnknownEligible, kw)
		}
		if level < MinHeadingLevel || level > MaxHeadingLevel {
			return nil, fmt.Errorf("%w: %q -> %d", ErrHeadingLevel, kw, level)
		}
		r.headingLevels[kw] = level
	}

	for _, kw := range spec.ColorEligible {
		if _, ok := r.keywords[kw]; !ok {
			return nil, fmt.Errorf("%w: color-eligible %q", ErrUnknownEligible, kw)
		}
		r.colorEligible[kw] = struct{}{}
	}

	for _, kw := range spec.AltEligible {
		if _, ok := r.keywords[kw]; !ok {
			return nil, fmt.Errorf("%w: alt-eligible %q", ErrUnknownEligible, kw)
		}
		r.altEligible[kw] = struct{}{}
	}

	return r, nil
}

// IsLegal reports whether name is in the legal keyword set.
func (r *Ruleset) IsLegal(name string) bool {
	_, ok := r.keywords[name]
	return ok
}

// HeadingLevel returns the TOC level for a heading keyword, or false if
// the keyword is not a heading.
func (r *Ruleset) HeadingLevel(name string) (int, bool) {
	level, ok := r.headingLevels[name]
	return level, ok
}

// IsColorEligible reports whether name may carry a color attribute.
func (r *Ruleset) IsColorEligible(name string) bool {
	_, ok := r.colorEligible[name]
	return ok
}

// IsAltEligible reports whether name may carry an alt attribute.
func (r *Ruleset) IsAltEligible(name string) bool {
	_, ok := r.altEligible[name]
	return ok
}

// MaxLevelJump returns the TOC hierarchy jump threshold.
func (r *Ruleset) MaxLevelJump() int {
	return r.maxLevelJump
}

// ValidColor reports whether value matches the required color format
// ("#" plus exactly six hex digits).
func (r *Ruleset) ValidColor(value string) bool {
	return colorPattern.MatchString(value)
}
