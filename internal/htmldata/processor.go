package htmldata

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richcast/internal/view"
)

// voidElements render without a closing tag and accept no children.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {},
	"hr": {}, "img": {}, "input": {}, "link": {}, "meta": {},
	"source": {}, "track": {}, "wbr": {},
}

// Processor converts between markup strings and view fragments.
type Processor struct {
	writer *view.Writer
}

// NewProcessor creates a processor.
func NewProcessor() *Processor {
	return &Processor{writer: view.NewWriter()}
}

// ToView parses an HTML fragment into a view document fragment.
// Comments, processing instructions and doctype nodes are skipped.
func (p *Processor) ToView(markup string) (*view.DocumentFragment, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("htmldata: parse: %w", err)
	}
	fragment := view.NewDocumentFragment()
	for _, n := range nodes {
		if vn := p.toViewNode(n); vn != nil {
			if _, err := p.writer.Append(fragment, vn); err != nil {
				return nil, err
			}
		}
	}
	return fragment, nil
}

// toViewNode converts one parsed node and its subtree; nil means the
// node carries no content worth keeping.
func (p *Processor) toViewNode(n *html.Node) view.Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return p.writer.CreateText(n.Data)
	case html.ElementNode:
		e := p.writer.CreateElement(n.Data, nil)
		for _, a := range n.Attr {
			p.applyAttribute(e, a.Key, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := p.toViewNode(c); child != nil {
				if _, err := p.writer.Append(e, child); err != nil {
					continue
				}
			}
		}
		return e
	default:
		return nil
	}
}

// applyAttribute routes class and style into their dedicated
// collections and stores everything else as a plain attribute.
func (p *Processor) applyAttribute(e *view.Element, key, value string) {
	switch key {
	case "class":
		for _, c := range strings.Fields(value) {
			p.writer.AddClass(e, c)
		}
	case "style":
		for name, v := range parseStyle(value) {
			p.writer.SetStyle(e, name, v)
		}
	default:
		p.writer.SetAttribute(e, key, value)
	}
}

// parseStyle splits an inline style declaration into property pairs.
// Malformed segments are dropped.
func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

// ToData serializes a view fragment back to markup.
func (p *Processor) ToData(fragment *view.DocumentFragment) string {
	var b strings.Builder
	for _, child := range fragment.Children() {
		writeNode(&b, child)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n view.Node) {
	switch t := n.(type) {
	case *view.Text:
		b.WriteString(html.EscapeString(t.Data()))
	case *view.Element:
		writeElement(b, t)
	}
}

func writeElement(b *strings.Builder, e *view.Element) {
	b.WriteByte('<')
	b.WriteString(e.Name())
	if classes := e.Classes(); len(classes) > 0 {
		fmt.Fprintf(b, ` class="%s"`, html.EscapeString(strings.Join(classes, " ")))
	}
	if styles := e.StyleNames(); len(styles) > 0 {
		pairs := make([]string, 0, len(styles))
		for _, name := range styles {
			v, _ := e.Style(name)
			pairs = append(pairs, name+":"+v)
		}
		fmt.Fprintf(b, ` style="%s"`, html.EscapeString(strings.Join(pairs, ";")))
	}
	for _, k := range e.AttributeKeys() {
		v, _ := e.Attribute(k)
		fmt.Fprintf(b, ` %s="%s"`, k, html.EscapeString(v))
	}
	if _, void := voidElements[e.Name()]; void && e.IsEmpty() {
		b.WriteString(">")
		return
	}
	b.WriteByte('>')
	for _, child := range e.Children() {
		writeNode(b, child)
	}
	b.WriteString("</")
	b.WriteString(e.Name())
	b.WriteByte('>')
}
