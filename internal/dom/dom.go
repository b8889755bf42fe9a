// Package dom builds HTML fragments as templ components.
//
// Pages are assembled from these primitives instead of generated templ code
// so that the whole site renders from plain Go. Text and attribute values are
// always escaped; only Raw inserts markup verbatim.
package dom

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// Node is anything that renders HTML.
type Node = templ.Component

// Attr is one attribute. A boolean attribute has an empty value and Bool set.
type Attr struct {
	Key   string
	Value string
	Bool  bool
}

// A builds an attribute.
func A(key, value string) Attr { return Attr{Key: key, Value: value} }

// Flag builds a boolean attribute such as "controls".
func Flag(key string) Attr { return Attr{Key: key, Bool: true} }

// Class builds a class attribute.
func Class(value string) Attr { return A("class", value) }

// ID builds an id attribute.
func ID(value string) Attr { return A("id", value) }

// Href builds an href attribute.
func Href(value string) Attr { return A("href", value) }

// Src builds a src attribute.
func Src(value string) Attr { return A("src", value) }

// Attrs is a convenience for maps of attributes; keys are sorted on output.
func Attrs(m map[string]string) []Attr {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Attr, len(keys))
	for i, k := range keys {
		out[i] = A(k, m[k])
	}
	return out
}

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func writeOpen(w io.Writer, tag string, attrs []Attr) error {
	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	for _, a := range attrs {
		if a.Bool {
			if _, err := io.WriteString(w, " "+a.Key); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, " "+a.Key+`="`+templ.EscapeString(a.Value)+`"`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">")
	return err
}

// El builds an element.
func El(tag string, attrs []Attr, children ...Node) Node {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeOpen(w, tag, attrs); err != nil {
			return err
		}
		if voidElements[tag] {
			return nil
		}
		for _, c := range children {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

// Text is escaped character data.
func Text(s string) Node {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

// Raw inserts trusted markup verbatim.
func Raw(html string) Node {
	return templ.Raw(html)
}

// Group renders nodes one after another.
func Group(nodes ...Node) Node {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if err := n.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// If renders n only when cond holds.
func If(cond bool, n Node) Node {
	if cond {
		return n
	}
	return nil
}

// Map renders one node per item.
func Map[T any](items []T, f func(T) Node) Node {
	nodes := make([]Node, len(items))
	for i, it := range items {
		nodes[i] = f(it)
	}
	return Group(nodes...)
}

// Doctype writes the HTML5 doctype.
func Doctype() Node {
	return Raw("<!DOCTYPE html>")
}

// Render renders n to a string.
func Render(ctx context.Context, n Node) (string, error) {
	var buf bytes.Buffer
	if n == nil {
		return "", nil
	}
	if err := n.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MustRender renders nodes that cannot fail, such as ones built only from
// El, Text and Raw.
func MustRender(n Node) string {
	s, err := Render(context.Background(), n)
	if err != nil {
		panic(err)
	}
	return s
}
