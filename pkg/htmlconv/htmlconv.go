// Package htmlconv converges arbitrary feed HTML into the subset of tags
// Telegram accepts for parse mode HTML, and truncates over-long fragments
// without leaving tags open.
package htmlconv

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// MaxMessageChars keeps rendered fragments safely below Telegram's 4096
// character message limit, leaving room for the surrounding message lines.
const MaxMessageChars = 4000

const ellipsis = "…"

// allowedTagAttrs lists the tags Telegram renders and the attributes kept on
// each of them. Everything else is unwrapped.
var allowedTagAttrs = map[string][]string{
	"b": {}, "strong": {}, "i": {}, "em": {},
	"u": {}, "ins": {}, "s": {}, "strike": {}, "del": {},
	"span": {"class"}, "tg-spoiler": {},
	"a": {"href"}, "tg-emoji": {"emoji-id"},
	"code": {"class"}, "pre": {},
	"blockquote": {"expandable"},
}

var langClass = regexp.MustCompile(`^language-[\w+-]+$`)

// ToTelegramHTML converts raw HTML into a Telegram-sendable string. Empty or
// whitespace-only input yields "". Fragments longer than limit characters are
// truncated with a trailing ellipsis; limit <= 0 uses MaxMessageChars.
func ToTelegramHTML(raw string, limit int) string {
	if limit <= 0 {
		limit = MaxMessageChars
	}
	clean := sanitize(raw)
	if clean == "" {
		return ""
	}
	return truncate(clean, limit)
}

func sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := xhtml.Parse(strings.NewReader(raw))
	if err != nil {
		// Unparseable markup is delivered as plain escaped text.
		return strings.TrimSpace(html.EscapeString(raw))
	}

	s := &sanitizer{imgNo: 1, vidNo: 1}
	if body := findBody(doc); body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			s.render(c)
		}
	}
	return strings.TrimSpace(s.b.String())
}

type sanitizer struct {
	b     strings.Builder
	imgNo int
	vidNo int
}

func (s *sanitizer) render(n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		s.b.WriteString(html.EscapeString(n.Data))
		return
	case xhtml.ElementNode:
		// handled below
	default:
		return
	}

	switch n.Data {
	case "script", "style":
		return

	case "h1", "h2", "h3", "h4", "h5", "h6":
		s.b.WriteString("<b>")
		s.renderChildren(n)
		s.b.WriteString("</b>")

	case "ul", "ol":
		var lines []string
		idx := 1
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xhtml.ElementNode || c.Data != "li" {
				continue
			}
			text := html.EscapeString(textContent(c))
			if n.Data == "ul" {
				lines = append(lines, "• "+text)
			} else {
				lines = append(lines, fmt.Sprintf("%d. %s", idx, text))
				idx++
			}
		}
		s.b.WriteString(strings.Join(lines, "\n"))

	case "img":
		if src := attrValue(n, "src"); src != "" {
			fmt.Fprintf(&s.b, `<a href="%s">[图片 %d]</a>`, html.EscapeString(src), s.imgNo)
			s.imgNo++
		}

	case "br":
		s.b.WriteString("\n")

	case "p", "div":
		if n.Data == "div" && hasClass(n, "embedded_video_wrapper") {
			if src := iframeSrc(n); src != "" {
				fmt.Fprintf(&s.b, `<a href="%s">[观看视频 %d]</a>`, html.EscapeString(src), s.vidNo)
				s.vidNo++
			}
			return
		}
		if n.Parent != nil && n.Parent.Data == "blockquote" {
			s.b.WriteString("\n")
		}
		s.renderChildren(n)

	case "table":
		var rows []string
		elementChildren(n, "tr")(func(tr *xhtml.Node) bool {
			var cells []string
			for _, cell := range childElements(tr, "td", "th") {
				text := html.EscapeString(textContent(cell))
				if cell.Data == "th" {
					text = "<b>" + text + "</b>"
				}
				cells = append(cells, text)
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
			return true
		})
		s.b.WriteString(strings.Join(rows, "\n"))

	default:
		allowed, ok := allowedTagAttrs[n.Data]
		if !ok {
			s.renderChildren(n)
			return
		}
		if n.Data == "span" && attrValue(n, "class") != "tg-spoiler" {
			s.renderChildren(n)
			return
		}
		s.b.WriteString("<" + n.Data + renderAttrs(n, allowed))
		s.b.WriteString(">")
		s.renderChildren(n)
		s.b.WriteString("</" + n.Data + ">")
	}
}

func (s *sanitizer) renderChildren(n *xhtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.render(c)
	}
}

func renderAttrs(n *xhtml.Node, allowed []string) string {
	var b strings.Builder
	for _, name := range allowed {
		val := attrValue(n, name)
		switch {
		case name == "expandable":
			// boolean attribute, emitted bare
			if hasAttr(n, name) {
				b.WriteString(" expandable")
			}
		case name == "class" && n.Data == "code":
			var valid []string
			for _, cls := range strings.Fields(val) {
				if langClass.MatchString(cls) {
					valid = append(valid, cls)
				}
			}
			if len(valid) > 0 {
				fmt.Fprintf(&b, ` class="%s"`, html.EscapeString(strings.Join(valid, " ")))
			}
		case val != "" || hasAttr(n, name):
			fmt.Fprintf(&b, ` %s="%s"`, name, html.EscapeString(val))
		}
	}
	return b.String()
}

// truncate limits s to at most limit characters, slicing text only: a start
// tag that does not fit ends the output early. Still-open tags are closed
// after the ellipsis so the fragment stays well-formed.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	t := &truncator{limit: limit}
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for !t.done {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		raw := string(z.Raw())
		switch tt {
		case xhtml.TextToken:
			t.addText(raw)
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			t.addTag(raw, string(name))
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			t.closeTag(raw, string(name))
		case xhtml.SelfClosingTagToken:
			t.addWhole(raw)
		}
	}
	if !t.done {
		t.finish()
	}
	return t.b.String()
}

type truncator struct {
	limit int
	n     int
	b     strings.Builder
	stack []string
	done  bool
}

func (t *truncator) addText(s string) {
	if t.done {
		return
	}
	runes := []rune(s)
	remain := t.limit - 1 - t.n
	if len(runes) > remain {
		if remain > 0 {
			t.b.WriteString(string(runes[:remain]))
			t.n += remain
		}
		t.finish()
		return
	}
	t.b.WriteString(s)
	t.n += len(runes)
}

func (t *truncator) addWhole(raw string) {
	if t.done {
		return
	}
	need := utf8.RuneCountInString(raw)
	if t.n+need > t.limit-1 {
		t.finish()
		return
	}
	t.b.WriteString(raw)
	t.n += need
}

func (t *truncator) addTag(raw, name string) {
	before := t.done
	t.addWhole(raw)
	if !before && !t.done {
		t.stack = append(t.stack, name)
	}
}

func (t *truncator) closeTag(raw, name string) {
	if t.done {
		return
	}
	need := utf8.RuneCountInString(raw)
	if t.n+need > t.limit-1 {
		// The tag stays on the stack so finish closes it.
		t.finish()
		return
	}
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == name {
			t.stack = append(t.stack[:i], t.stack[i+1:]...)
			break
		}
	}
	t.b.WriteString(raw)
	t.n += need
}

func (t *truncator) finish() {
	t.b.WriteString(ellipsis)
	t.n++
	for i := len(t.stack) - 1; i >= 0; i-- {
		t.b.WriteString("</" + t.stack[i] + ">")
	}
	t.done = true
}

// node helpers

func findBody(doc *xhtml.Node) *xhtml.Node {
	var body *xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if body != nil {
			return
		}
		if n.Type == xhtml.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

func attrValue(n *xhtml.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *xhtml.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func hasClass(n *xhtml.Node, class string) bool {
	for _, cls := range strings.Fields(attrValue(n, "class")) {
		if cls == class {
			return true
		}
	}
	return false
}

func iframeSrc(n *xhtml.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode && c.Data == "iframe" {
			if src := attrValue(c, "src"); src != "" {
				return src
			}
		}
		if src := iframeSrc(c); src != "" {
			return src
		}
	}
	return ""
}

func textContent(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func childElements(n *xhtml.Node, names ...string) []*xhtml.Node {
	var out []*xhtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xhtml.ElementNode {
			continue
		}
		for _, name := range names {
			if c.Data == name {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// elementChildren iterates direct and tbody-nested children named name; the
// HTML parser inserts tbody inside table elements.
func elementChildren(n *xhtml.Node, name string) func(func(*xhtml.Node) bool) {
	return func(yield func(*xhtml.Node) bool) {
		var walk func(*xhtml.Node) bool
		walk = func(p *xhtml.Node) bool {
			for c := p.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != xhtml.ElementNode {
					continue
				}
				if c.Data == name {
					if !yield(c) {
						return false
					}
					continue
				}
				if c.Data == "thead" || c.Data == "tbody" || c.Data == "tfoot" {
					if !walk(c) {
						return false
					}
				}
			}
			return true
		}
		walk(n)
	}
}
