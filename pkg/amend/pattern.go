package amend

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// ReplaceOptions adjusts how pattern replacement behaves. The zero value
// means: regular expression, case sensitive, whole body, quiet.
type ReplaceOptions struct {
	// Fixed treats the pattern as a literal string instead of a
	// regular expression. The replacement is then literal too.
	Fixed bool

	// IgnoreCase matches without regard to letter case. Combined with
	// Fixed it uses Unicode case folding, not just ASCII.
	IgnoreCase bool

	// OnlyAtCursor confines the replacement to the block the cursor
	// is on. The cursor must sit on a block, not a sentinel.
	OnlyAtCursor bool

	// Warn logs a warning when the pattern matched nothing.
	Warn bool
}

// matchSpan is one replacement to apply: the byte range [start, end) of
// the paragraph text and the string that takes its place.
type matchSpan struct {
	start, end int
	repl       string
}

// textMatcher computes replacement spans on a snapshot of paragraph
// text. Spans are non-overlapping and in text order.
type textMatcher interface {
	spans(text string) []matchSpan
}

// compileMatcher builds the matcher the options ask for. An empty
// pattern matches nothing in every mode.
func compileMatcher(pattern, replacement string, opts ReplaceOptions) (textMatcher, error) {
	if pattern == "" {
		return &literalMatcher{}, nil
	}
	if opts.Fixed {
		if opts.IgnoreCase {
			m := search.New(language.Und, search.IgnoreCase)
			return &foldingMatcher{pat: m.CompileString(pattern), repl: replacement}, nil
		}
		return &literalMatcher{pattern: pattern, repl: replacement}, nil
	}
	expr := pattern
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &regexMatcher{re: re, repl: replacement}, nil
}

// regexMatcher matches with a compiled regular expression. The
// replacement may reference capture groups ($1, ${name}).
type regexMatcher struct {
	re   *regexp.Regexp
	repl string
}

func (m *regexMatcher) spans(text string) []matchSpan {
	var out []matchSpan
	for _, idx := range m.re.FindAllStringSubmatchIndex(text, -1) {
		if idx[1] == idx[0] {
			// Zero-width matches would splice nothing and loop
			// forever on reapplication; skip them.
			continue
		}
		repl := string(m.re.ExpandString(nil, m.repl, text, idx))
		out = append(out, matchSpan{start: idx[0], end: idx[1], repl: repl})
	}
	return out
}

// literalMatcher matches a fixed string byte for byte.
type literalMatcher struct {
	pattern, repl string
}

func (m *literalMatcher) spans(text string) []matchSpan {
	if m.pattern == "" {
		return nil
	}
	var out []matchSpan
	off := 0
	for {
		i := strings.Index(text[off:], m.pattern)
		if i < 0 {
			return out
		}
		start := off + i
		end := start + len(m.pattern)
		out = append(out, matchSpan{start: start, end: end, repl: m.repl})
		off = end
	}
}

// foldingMatcher matches a fixed string under Unicode case folding, so
// "STRASSE" finds "straße". Matched ranges can differ in length from
// the pattern.
type foldingMatcher struct {
	pat  *search.Pattern
	repl string
}

func (m *foldingMatcher) spans(text string) []matchSpan {
	var out []matchSpan
	off := 0
	for off < len(text) {
		start, end := m.pat.IndexString(text[off:])
		if start < 0 || end == start {
			return out
		}
		out = append(out, matchSpan{start: off + start, end: off + end, repl: m.repl})
		off += end
	}
	return out
}

// ReplaceAllText replaces every match of pattern in the document body
// and returns how many replacements were applied. Matches may span run
// boundaries; each replacement becomes a single run carrying the
// formatting of the first run the match covered. With OnlyAtCursor set,
// only the cursor's block is touched.
//
// A pattern that matches nothing is not an error unless strict mode is
// configured; with Warn set it is logged.
func (d *Document) ReplaceAllText(pattern, replacement string, opts ReplaceOptions) (int, error) {
	m, err := compileMatcher(pattern, replacement, opts)
	if err != nil {
		return 0, err
	}

	part := d.Body()
	scope := "body"
	var paras []*wml.Paragraph
	if opts.OnlyAtCursor {
		block, err := d.cursor.Current()
		if err != nil {
			return 0, err
		}
		part = d.cursor.Part()
		paras = blockParagraphs(block)
		scope = "cursor block"
	} else {
		paras = part.Paragraphs()
	}

	n := replaceInPart(part, paras, m)
	return d.finishReplace(pattern, scope, n, opts)
}

// HeadersReplaceAllText applies the replacement to every header part.
// The cursor option does not apply here.
func (d *Document) HeadersReplaceAllText(pattern, replacement string, opts ReplaceOptions) (int, error) {
	m, err := compileMatcher(pattern, replacement, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, part := range d.Headers() {
		n += replaceInPart(part, part.Paragraphs(), m)
	}
	return d.finishReplace(pattern, "headers", n, opts)
}

// FootersReplaceAllText applies the replacement to every footer part.
// The cursor option does not apply here.
func (d *Document) FootersReplaceAllText(pattern, replacement string, opts ReplaceOptions) (int, error) {
	m, err := compileMatcher(pattern, replacement, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, part := range d.Footers() {
		n += replaceInPart(part, part.Paragraphs(), m)
	}
	return d.finishReplace(pattern, "footers", n, opts)
}

// ReplaceAllTextEverywhere applies the replacement to the body, all
// headers and all footers in one sweep.
func (d *Document) ReplaceAllTextEverywhere(pattern, replacement string, opts ReplaceOptions) (int, error) {
	m, err := compileMatcher(pattern, replacement, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, part := range d.parts {
		n += replaceInPart(part, part.Paragraphs(), m)
	}
	return d.finishReplace(pattern, "document", n, opts)
}

// replaceInPart runs the matcher over the given paragraphs and marks the
// part dirty when anything changed.
func replaceInPart(part *Part, paras []*wml.Paragraph, m textMatcher) int {
	total := 0
	for _, para := range paras {
		applied, skipped := replaceInParagraph(para, m)
		total += applied
		if skipped > 0 {
			GetLogger().Debug("skipped %d match(es) crossing a hyperlink boundary in %s", skipped, part.Name)
		}
	}
	if total > 0 {
		part.markDirty()
	}
	return total
}

// replaceInParagraph computes all spans on a snapshot of the paragraph
// text, then applies them right to left so the offsets of pending spans
// stay valid while earlier text is untouched.
func replaceInParagraph(para *wml.Paragraph, m textMatcher) (applied, skipped int) {
	text := newRunIndex(para).Text()
	spans := m.spans(text)
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if spliceRange(para, s.start, s.end, s.repl) {
			applied++
		} else {
			skipped++
		}
	}
	return applied, skipped
}

// finishReplace turns a zero match count into a warning or, in strict
// mode, an error.
func (d *Document) finishReplace(pattern, scope string, n int, opts ReplaceOptions) (int, error) {
	if n > 0 {
		return n, nil
	}
	if GetGlobalConfig().StrictMode {
		return 0, NewPatternNoMatchError(pattern, scope)
	}
	if opts.Warn {
		GetLogger().Warn("pattern %q matched nothing in %s", pattern, scope)
	}
	return 0, nil
}
