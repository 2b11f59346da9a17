package textcodec

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// CodecError reports markup that could not be decoded. Decode recovers from
// it by keeping the whole cell as plain text.
type CodecError struct {
	Offset int
	Reason string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("textcodec: %s at offset %d", e.Reason, e.Offset)
}

// Encode writes t as a single storage string.
func Encode(t Text) string {
	var b strings.Builder
	for _, r := range Normalize(t) {
		text := textEscaper.Replace(colonIconRe.ReplaceAllString(r.Text, "[$1]"))
		if !r.annotated() {
			b.WriteString(text)
			continue
		}
		open, closing := tagsFor(r)
		b.WriteString(open)
		b.WriteString(text)
		b.WriteString(closing)
	}
	return b.String()
}

// tagsFor returns the markup around an annotated run. The link is always
// outermost, then the citation, then emphasis.
func tagsFor(r Run) (string, string) {
	var open, closing []string
	if r.Link != "" {
		open = append(open, `<a href="`+html.EscapeString(r.Link)+`">`)
		closing = append(closing, "</a>")
	}
	if r.Cite {
		open = append(open, "<cite>")
		closing = append(closing, "</cite>")
	}
	switch r.Style {
	case BoldItalic:
		open = append(open, "<i>")
		closing = append(closing, "</i>")
	case Bold:
		open = append(open, "<b>")
		closing = append(closing, "</b>")
	case Italic:
		open = append(open, "<em>")
		closing = append(closing, "</em>")
	}
	for i, j := 0, len(closing)-1; i < j; i, j = i+1, j-1 {
		closing[i], closing[j] = closing[j], closing[i]
	}
	return strings.Join(open, ""), strings.Join(closing, "")
}

var tagRe = regexp.MustCompile(`</(b|i|em|cite|a)>|<(b|i|em|cite)>|<a href="([^"]*)">`)

// Run text is escaped so a literal "<b>" typed into a card never reads back
// as markup. Only the two entities written here are decoded, so stray
// ampersands in hand-edited cells stay as typed.
var (
	textEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;")
	textUnescaper = strings.NewReplacer("&lt;", "<", "&amp;", "&")
)

type frame struct {
	tag  string
	href string
}

// Decode parses a storage string. It never fails: malformed markup is kept
// literally as plain text.
func Decode(s string) Text {
	t, err := DecodeStrict(s)
	if err != nil {
		return FromString(s)
	}
	return t
}

// DecodeStrict parses a storage string and reports unbalanced markup as a
// *CodecError.
func DecodeStrict(s string) (Text, error) {
	var (
		out   Text
		stack []frame
		pos   int
	)
	for _, m := range tagRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > pos {
			out = append(out, runFor(s[pos:m[0]], stack))
		}
		switch {
		case m[2] >= 0:
			tag := s[m[2]:m[3]]
			if len(stack) == 0 || stack[len(stack)-1].tag != tag {
				return nil, &CodecError{Offset: m[0], Reason: "unexpected </" + tag + ">"}
			}
			stack = stack[:len(stack)-1]
		case m[4] >= 0:
			stack = append(stack, frame{tag: s[m[4]:m[5]]})
		default:
			for _, f := range stack {
				if f.tag == "a" {
					return nil, &CodecError{Offset: m[0], Reason: "nested link"}
				}
			}
			stack = append(stack, frame{tag: "a", href: html.UnescapeString(s[m[6]:m[7]])})
		}
		pos = m[1]
	}
	if len(stack) > 0 {
		return nil, &CodecError{Offset: len(s), Reason: "unclosed <" + stack[len(stack)-1].tag + ">"}
	}
	if pos < len(s) {
		out = append(out, runFor(s[pos:], nil))
	}
	return Normalize(out), nil
}

func runFor(text string, stack []frame) Run {
	r := Run{Text: textUnescaper.Replace(text)}
	for _, f := range stack {
		switch f.tag {
		case "b":
			r.Style |= Bold
		case "i":
			r.Style |= BoldItalic
		case "em":
			r.Style |= Italic
		case "cite":
			r.Cite = true
		case "a":
			r.Link = f.href
		}
	}
	return r
}

// Markdown renders t for GitHub-flavored markdown bodies.
func Markdown(t Text) string {
	var b strings.Builder
	for _, r := range Normalize(t) {
		text := r.Text
		switch r.Style {
		case BoldItalic:
			text = "***" + text + "***"
		case Bold:
			text = "**" + text + "**"
		case Italic:
			text = "_" + text + "_"
		}
		if r.Cite {
			text = " — _" + text + "_"
		}
		if r.Link != "" {
			text = "[" + text + "](" + r.Link + ")"
		}
		b.WriteString(text)
	}
	return strings.ReplaceAll(b.String(), "\n", "  \n")
}
