package sanmark

import (
	"fmt"
	"regexp"
	"strings"
)

// Precompiled patterns for line classification.
var (
	// CRLF and lone CR normalization, applied before any scanning.
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// List-item shorthand: "- ;;;keyword(s);;; text". Applies a keyword
	// set to a single list item without opening a multi-line block.
	listShorthandPattern = regexp.MustCompile(`^-\s+;;;(.*?);;;\s*(.*)$`)
)

// Heading is one heading discovered during tokenization, in document
// order. The TOC builder consumes these.
type Heading struct {
	Level int
	Title string
	Line  int // 1-based line of the heading block's opening marker
}

// openBlock is the IN_BLOCK tokenizer state: the block currently being
// scanned. A nil *openBlock means OUTSIDE_BLOCK.
type openBlock struct {
	startLine int
	keywords  []Keyword
	attrs     map[string]string
	content   []string
}

// Tokenizer scans raw lines into Blocks and validates keyword and block
// syntax as it goes. Issues are accumulated, never returned as errors,
// so a malformed document still yields a best-effort Block sequence.
//
// A Tokenizer holds no state between calls; the same instance may be
// shared by concurrent goroutines.
type Tokenizer struct {
	rules *Ruleset
}

// NewTokenizer creates a Tokenizer. A nil ruleset selects the built-in
// language.
func NewTokenizer(rules *Ruleset) *Tokenizer {
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Tokenizer{rules: rules}
}

// Tokenize scans lines (numbered from 1) and returns the recognized
// blocks, the headings discovered in document order, and all issues.
func (t *Tokenizer) Tokenize(lines []string) ([]Block, []Heading, []ValidationIssue) {
	return t.tokenize(lines, 1)
}

// TokenizeChunk scans one chunk, numbering lines from the chunk's
// absolute start line so issue anchors refer to the original document.
func (t *Tokenizer) TokenizeChunk(c Chunk) ([]Block, []Heading, []ValidationIssue) {
	return t.tokenize(c.Lines, c.StartLine)
}

func (t *Tokenizer) tokenize(lines []string, firstLine int) ([]Block, []Heading, []ValidationIssue) {
	var (
		blocks   []Block
		headings []Heading
		issues   []ValidationIssue
		open     *openBlock
	)

	finalize := func(closed bool) {
		b := Block{
			StartLine:    open.startLine,
			Keywords:     open.keywords,
			Attributes:   open.attrs,
			ContentLines: open.content,
			Closed:       closed,
		}
		blocks = append(blocks, b)
		if h, ok := t.headingOf(b); ok {
			headings = append(headings, h)
		}
		open = nil
	}

	for i, raw := range lines {
		lineNo := firstLine + i
		norm := normalizeMarkers(strings.TrimLeft(raw, " \t　"))

		if open == nil {
			blk, opened, iss := t.scanOutside(norm, lineNo)
			issues = append(issues, iss...)
			if blk != nil {
				blocks = append(blocks, *blk)
				if h, ok := t.headingOf(*blk); ok {
					headings = append(headings, h)
				}
			}
			open = opened
			continue
		}

		// IN_BLOCK
		if !strings.HasPrefix(norm, Marker) {
			open.content = append(open.content, raw)
			continue
		}
		payload := norm[len(Marker):]
		switch {
		case payload == "":
			// Bare marker closes the block.
			finalize(true)
		case strings.TrimSpace(payload) == "":
			issues = append(issues, ValidationIssue{
				Line:     lineNo,
				Severity: SeverityError,
				Code:     CodeInvalidBlockMarker,
				Message:  "block marker followed only by whitespace",
			})
			open.content = append(open.content, raw)
		default:
			// A raw marker line with a payload cannot appear inside a
			// block; suggest merging it into the opening marker.
			issues = append(issues, ValidationIssue{
				Line:       lineNo,
				Severity:   SeverityError,
				Code:       CodeMultilineSyntax,
				Message:    "block marker with keywords inside an open block",
				Suggestion: t.mergeSuggestion(open.keywords, payload),
			})
		}
	}

	if open != nil {
		issues = append(issues, ValidationIssue{
			Line:     open.startLine,
			Severity: SeverityError,
			Code:     CodeUnclosedBlock,
			Message:  fmt.Sprintf("block opened at line %d is never closed", open.startLine),
		})
		finalize(false)
	}

	return blocks, headings, issues
}

// scanOutside classifies one line in the OUTSIDE_BLOCK state. It returns
// a completed block (self-closing or list shorthand), a new open block
// (multi-line start), or neither, plus any issues.
func (t *Tokenizer) scanOutside(norm string, lineNo int) (*Block, *openBlock, []ValidationIssue) {
	if !strings.HasPrefix(norm, Marker) {
		return t.scanMidline(norm, lineNo)
	}

	payload := norm[len(Marker):]
	switch {
	case payload == "":
		return nil, nil, []ValidationIssue{{
			Line:     lineNo,
			Severity: SeverityError,
			Code:     CodeUnmatchedBlockEnd,
			Message:  "block end marker without a matching block start",
		}}
	case strings.TrimSpace(payload) == "":
		return nil, nil, []ValidationIssue{{
			Line:     lineNo,
			Severity: SeverityError,
			Code:     CodeInvalidBlockMarker,
			Message:  "block marker followed only by whitespace",
		}}
	case strings.HasSuffix(payload, Marker):
		blk, iss := t.selfClosing(payload[:len(payload)-len(Marker)], lineNo)
		return blk, nil, iss
	default:
		// Multi-line block start: the payload holds the keywords.
		keywords, attrs, iss := t.parseKeywords(payload, lineNo)
		return nil, &openBlock{
			startLine: lineNo,
			keywords:  keywords,
			attrs:     attrs,
		}, iss
	}
}

// selfClosing handles the same-line marker...marker construct. The inner
// text is either keywords, keywords plus inline content separated by
// another marker, or a standalone image reference (e.g. name.png).
//
// Whether a payload containing the marker substring is content or a
// nested marker stays a line-level heuristic here; see the package
// documentation for the accepted forms.
func (t *Tokenizer) selfClosing(inner string, lineNo int) (*Block, []ValidationIssue) {
	if idx := strings.Index(inner, Marker); idx >= 0 {
		// ;;;keywords;;; inline content ;;;
		keywords, attrs, iss := t.parseKeywords(inner[:idx], lineNo)
		b := &Block{
			StartLine:  lineNo,
			Keywords:   keywords,
			Attributes: attrs,
			Closed:     true,
		}
		if content := strings.TrimSpace(inner[idx+len(Marker):]); content != "" {
			b.ContentLines = []string{content}
		}
		return b, iss
	}

	if isImageReference(inner) && !t.rules.IsLegal(inner) {
		return &Block{
			StartLine:  lineNo,
			Attributes: map[string]string{"src": strings.TrimSpace(inner)},
			Closed:     true,
		}, nil
	}

	keywords, attrs, iss := t.parseKeywords(inner, lineNo)
	return &Block{
		StartLine:  lineNo,
		Keywords:   keywords,
		Attributes: attrs,
		Closed:     true,
	}, iss
}

// scanMidline handles lines that contain a marker somewhere other than
// the line start: the list-item shorthand is recognized, anything else
// is flagged as an inline marker.
func (t *Tokenizer) scanMidline(norm string, lineNo int) (*Block, *openBlock, []ValidationIssue) {
	if !strings.Contains(norm, Marker) {
		return nil, nil, nil // plain text outside any block
	}

	if m := listShorthandPattern.FindStringSubmatch(norm); m != nil {
		keywords, attrs, iss := t.parseKeywords(m[1], lineNo)
		b := &Block{
			StartLine:  lineNo,
			Keywords:   keywords,
			Attributes: attrs,
			Closed:     true,
		}
		if m[2] != "" {
			b.ContentLines = []string{m[2]}
		}
		return b, nil, iss
	}

	return nil, nil, []ValidationIssue{{
		Line:     lineNo,
		Severity: SeverityWarning,
		Code:     CodeInlineMarker,
		Message:  "block marker appears mid-line; markers must start a line or use the list-item shorthand",
	}}
}

// parseKeywords splits a marker payload into compound keywords and runs
// every keyword and attribute check. All checks are independent and
// cumulative: one bad keyword never suppresses diagnostics for the rest.
func (t *Tokenizer) parseKeywords(payload string, lineNo int) ([]Keyword, map[string]string, []ValidationIssue) {
	var issues []ValidationIssue
	add := func(sev Severity, code, format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Line:     lineNo,
			Severity: sev,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		add(SeverityError, CodeEmptyKeyword, "block marker has no keywords")
		return nil, nil, issues
	}

	var (
		keywords []Keyword
		attrs    map[string]string
		counts   = make(map[string]int)
		headings int
	)

	normalized := strings.ReplaceAll(payload, compoundSepFullwidth, compoundSep)
	for _, seg := range strings.Split(normalized, compoundSep) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			add(SeverityError, CodeEmptyKeyword, "empty keyword in compound set")
			continue
		}

		name := seg
		if i := strings.IndexAny(seg, " \t"); i >= 0 {
			name = seg[:i]
		}
		kw := Keyword{Name: name}

		recognized := false
		if rest := strings.TrimSpace(seg[len(name):]); rest != "" {
			eq := strings.Index(rest, "=")
			if eq <= 0 {
				add(SeverityError, CodeUnknownAttribute, "%q is not a name=value attribute", rest)
			} else {
				attrName, value := rest[:eq], rest[eq+1:]
				switch attrName {
				case AttrColor:
					recognized = true
					if !t.rules.ValidColor(value) {
						add(SeverityError, CodeInvalidColorFormat,
							"color value %q must be # followed by exactly 6 hex digits", value)
					}
					if !t.rules.IsColorEligible(name) {
						add(SeverityError, CodeInvalidColorUsage,
							"keyword %q cannot carry a color attribute", name)
					}
				case AttrAlt:
					recognized = true
					value = strings.TrimSpace(value)
					if !t.rules.IsAltEligible(name) {
						add(SeverityError, CodeInvalidAltUsage,
							"keyword %q cannot carry an alt attribute", name)
					}
				default:
					add(SeverityError, CodeUnknownAttribute, "unknown attribute %q", attrName)
				}
				kw.Attribute = &Attribute{Name: attrName, Value: value}
				if attrs == nil {
					attrs = make(map[string]string)
				}
				attrs[attrName] = value
			}
		}

		// A recognized attribute form is legal even when the base keyword
		// is outside the plain legal set; eligibility was checked above.
		if !recognized && !t.rules.IsLegal(name) {
			add(SeverityError, CodeUnknownKeyword, "unknown keyword %q", name)
		}

		counts[name]++
		if _, ok := t.rules.HeadingLevel(name); ok {
			headings++
		}
		keywords = append(keywords, kw)
	}

	reported := make(map[string]bool)
	for _, kw := range keywords {
		if counts[kw.Name] > 1 && !reported[kw.Name] {
			reported[kw.Name] = true
			issues = append(issues, ValidationIssue{
				Line:     lineNo,
				Severity: SeverityWarning,
				Code:     CodeDuplicateKeyword,
				Message:  fmt.Sprintf("keyword %q appears %d times in one compound set", kw.Name, counts[kw.Name]),
			})
		}
	}

	if headings > 1 {
		add(SeverityError, CodeMultipleHeadings, "%d heading keywords in one compound set; a block may carry at most one", headings)
	}

	return keywords, attrs, issues
}

// headingOf extracts heading information from a finalized block, if the
// block carries a heading keyword. The entry title is the joined block
// content.
func (t *Tokenizer) headingOf(b Block) (Heading, bool) {
	for _, kw := range b.Keywords {
		if level, ok := t.rules.HeadingLevel(kw.Name); ok {
			return Heading{
				Level: level,
				Title: strings.TrimSpace(strings.Join(b.ContentLines, " ")),
				Line:  b.StartLine,
			}, true
		}
	}
	return Heading{}, false
}

// mergeSuggestion builds the fix hint for MULTILINE_SYNTAX: the open
// block's keywords and the nested marker's keywords combined into one
// compound marker line.
func (t *Tokenizer) mergeSuggestion(open []Keyword, nestedPayload string) string {
	names := make([]string, 0, len(open)+1)
	for _, kw := range open {
		names = append(names, kw.Name)
	}
	nested := strings.ReplaceAll(strings.TrimSpace(nestedPayload), compoundSepFullwidth, compoundSep)
	nested = strings.TrimSuffix(nested, Marker)
	for _, seg := range strings.Split(nested, compoundSep) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if i := strings.IndexAny(seg, " \t"); i >= 0 {
			seg = seg[:i]
		}
		names = append(names, seg)
	}
	return fmt.Sprintf("combine the markers into one line: %s%s", Marker, strings.Join(names, compoundSep))
}

// normalizeMarkers maps the fullwidth marker variant onto the ASCII one
// so both forms are treated as equivalent everywhere.
func normalizeMarkers(line string) string {
	if !strings.Contains(line, MarkerFullwidth) {
		return line
	}
	return strings.ReplaceAll(line, MarkerFullwidth, Marker)
}

// isImageReference reports whether a self-closing payload looks like a
// standalone file reference (name.png) rather than a keyword set.
func isImageReference(payload string) bool {
	payload = strings.TrimSpace(payload)
	if payload == "" || strings.ContainsAny(payload, " \t+＋=") {
		return false
	}
	dot := strings.LastIndexByte(payload, '.')
	return dot > 0 && dot < len(payload)-1
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(text string) string {
	return crlfOrCR.ReplaceAllString(text, "\n")
}
