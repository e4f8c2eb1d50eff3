// Package svg holds a small retained SVG element tree that can be mutated in
// place between frames and encoded on demand.
package svg

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespace is the SVG XML namespace.
const Namespace = "http://www.w3.org/2000/svg"

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the SVG tree. Attribute order is preserved.
type Element struct {
	Tag      string
	Text     string
	Children []*Element

	attrs  []Attr
	parent *Element
}

// New creates a detached element.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// Root creates an <svg> element carrying the namespace.
func Root(width, height float64) *Element {
	return New("svg").
		Set("xmlns", Namespace).
		SetFloat("width", width).
		SetFloat("height", height)
}

// Set assigns an attribute, replacing an existing value.
func (e *Element) Set(name, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value

			return e
		}
	}

	e.attrs = append(e.attrs, Attr{Name: name, Value: value})

	return e
}

// SetFloat assigns a numeric attribute using compact formatting.
func (e *Element) SetFloat(name string, v float64) *Element {
	return e.Set(name, Num(v))
}

// Get returns an attribute value.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// Attrs returns a copy of the attributes.
func (e *Element) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)

	return out
}

// Append adds children at the end and returns the receiver.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		c.Detach()
		c.parent = e
		e.Children = append(e.Children, c)
	}

	return e
}

// AppendNew creates a child with tag, appends it and returns the child.
func (e *Element) AppendNew(tag string) *Element {
	child := New(tag)
	e.Append(child)

	return child
}

// Parent returns the containing element, or nil.
func (e *Element) Parent() *Element { return e.parent }

// Detach removes the element from its parent.
func (e *Element) Detach() {
	if e.parent == nil {
		return
	}

	siblings := e.parent.Children
	for i, c := range siblings {
		if c == e {
			e.parent.Children = append(siblings[:i:i], siblings[i+1:]...)

			break
		}
	}

	e.parent = nil
}

// Find returns the first descendant (depth-first) whose id attribute matches.
func (e *Element) Find(id string) *Element {
	if v, ok := e.Get("id"); ok && v == id {
		return e
	}

	for _, c := range e.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}

	return nil
}

// Encode writes the element tree as XML.
func (e *Element) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	err := e.encode(bw, 0)
	if err != nil {
		return err
	}

	err = bw.Flush()
	if err != nil {
		return fmt.Errorf("flush svg: %w", err)
	}

	return nil
}

// String encodes the element tree.
func (e *Element) String() string {
	var sb strings.Builder

	_ = e.Encode(&sb)

	return sb.String()
}

func (e *Element) encode(w *bufio.Writer, depth int) error {
	indent := strings.Repeat("  ", depth)

	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.Tag)

	for _, a := range e.attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)

		err := xml.EscapeText(w, []byte(a.Value))
		if err != nil {
			return fmt.Errorf("escape %s: %w", a.Name, err)
		}

		w.WriteByte('"')
	}

	if len(e.Children) == 0 && e.Text == "" {
		_, err := w.WriteString("/>\n")

		return err
	}

	w.WriteByte('>')

	if e.Text != "" {
		err := xml.EscapeText(w, []byte(e.Text))
		if err != nil {
			return fmt.Errorf("escape text: %w", err)
		}
	}

	if len(e.Children) > 0 {
		w.WriteByte('\n')

		for _, c := range e.Children {
			err := c.encode(w, depth+1)
			if err != nil {
				return err
			}
		}

		w.WriteString(indent)
	}

	w.WriteString("</")
	w.WriteString(e.Tag)
	_, err := w.WriteString(">\n")

	return err
}

// Num formats a coordinate with at most three decimals and no trailing zeros.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")

	if s == "-0" || s == "" {
		return "0"
	}

	return s
}
