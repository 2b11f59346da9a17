// Package textcodec converts styled card text to and from the single string
// stored in a flat tabular cell.
//
// Styled text is a sequence of runs. Each run carries a style (plain, bold,
// italic or bold+italic), an optional hyperlink and an optional citation
// flag. Icon tokens live inside run text in colon form (":military:") and are
// written to storage in bracket form ("[military]").
package textcodec

import (
	"regexp"
	"strings"
)

// Style is a bit set of emphasis flags.
type Style uint8

const (
	Plain      Style = 0
	Bold       Style = 1 << 0
	Italic     Style = 1 << 1
	BoldItalic       = Bold | Italic
)

// String returns a short name for the style, used in test failure output.
func (s Style) String() string {
	switch s {
	case Plain:
		return "plain"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold+italic"
	default:
		return "invalid"
	}
}

// Run is a contiguous span of text sharing one annotation.
type Run struct {
	Text  string
	Style Style
	Link  string
	Cite  bool
}

// annotated reports whether the run needs any markup when encoded.
func (r Run) annotated() bool {
	return r.Style != Plain || r.Link != "" || r.Cite
}

func (r Run) sameAnnotation(o Run) bool {
	return r.Style == o.Style && r.Link == o.Link && r.Cite == o.Cite
}

// Text is a styled text value.
type Text []Run

// FromString returns s as a single plain run.
func FromString(s string) Text {
	if s == "" {
		return nil
	}
	return Normalize(Text{{Text: s}})
}

// PlainString renders t without any markup. Citations are shown the way an
// author types them: ` - Name`.
func (t Text) PlainString() string {
	var b strings.Builder
	for _, r := range t {
		if r.Cite {
			b.WriteString(" - ")
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (t Text) String() string {
	return t.PlainString()
}

// IsEmpty reports whether t contains no text.
func (t Text) IsEmpty() bool {
	for _, r := range t {
		if r.Text != "" {
			return false
		}
	}
	return true
}

var (
	// `"` then whitespace then a dash or tilde, then a name up to the end of the line.
	citeMarkerRe  = regexp.MustCompile(`"[ \t]+[-~][ \t]*([^\n]*[^\s])`)
	colonIconRe   = regexp.MustCompile(`:([a-z][a-z0-9_]*):`)
	bracketIconRe = regexp.MustCompile(`\[([a-z][a-z0-9_]*)\]`)
)

// Normalize returns the canonical form of t. Every styled value has exactly
// one canonical form and Decode(Encode(t)) == Normalize(t).
//
// Canonical text has no empty runs, icon tokens in colon form, annotated runs
// that neither span a newline nor start or end with whitespace, citation
// markers typed into plain runs lifted into citation runs, and no two adjacent
// runs with the same annotation.
func Normalize(t Text) Text {
	var out Text
	for _, r := range t {
		if r.Text == "" {
			continue
		}
		r.Text = bracketIconRe.ReplaceAllString(r.Text, ":$1:")
		if !r.annotated() {
			out = append(out, r)
			continue
		}
		out = append(out, splitAnnotated(r)...)
	}
	out = merge(out)

	lifted := make(Text, 0, len(out))
	for _, r := range out {
		if r.annotated() {
			lifted = append(lifted, r)
			continue
		}
		lifted = append(lifted, liftCitations(r.Text)...)
	}
	return merge(lifted)
}

// splitAnnotated keeps the markup on the non-whitespace core of each line
// and moves surrounding whitespace and newlines into plain runs.
func splitAnnotated(r Run) Text {
	var out Text
	lines := strings.SplitAfter(r.Text, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		core := strings.TrimSpace(line)
		if core == "" {
			out = append(out, Run{Text: line})
			continue
		}
		start := strings.Index(line, core)
		if start > 0 {
			out = append(out, Run{Text: line[:start]})
		}
		annotated := r
		annotated.Text = core
		out = append(out, annotated)
		if tail := line[start+len(core):]; tail != "" {
			out = append(out, Run{Text: tail})
		}
	}
	return out
}

func liftCitations(s string) Text {
	matches := citeMarkerRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return Text{{Text: s}}
	}
	var out Text
	pos := 0
	for _, m := range matches {
		// keep the closing quote, drop the whitespace and dash
		out = append(out, Run{Text: s[pos : m[0]+1]})
		out = append(out, Run{Text: s[m[2]:m[3]], Cite: true})
		pos = m[1]
	}
	if pos < len(s) {
		out = append(out, Run{Text: s[pos:]})
	}
	return out
}

func merge(t Text) Text {
	var out Text
	for _, r := range t {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].sameAnnotation(r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}
