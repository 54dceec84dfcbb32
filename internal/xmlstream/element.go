// Package xmlstream scans gigabyte-scale XML documents one element at a
// time. A Scanner walks the token stream and materializes exactly one
// top-level element subtree at a time; callers hand each subtree back via
// Release so its nodes recycle instead of churning the heap.
package xmlstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Attr is one attribute on an element.
type Attr struct {
	Name  string
	Value string
}

// Element is a raw XML subtree: one entity element with its children.
// Values returned by Scanner.Next are only valid until Release.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// Attr returns the value of a named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given tag, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TrimText returns the element's own text with surrounding whitespace
// removed.
func (e *Element) TrimText() string {
	return strings.TrimSpace(e.Text)
}

// ChildText returns the trimmed text of the first child with the given
// tag, or nil when the child is absent or empty.
func (e *Element) ChildText(name string) *string {
	c := e.Child(name)
	if c == nil {
		return nil
	}
	if t := c.TrimText(); t != "" {
		return &t
	}
	return nil
}

// WriteTo renders the subtree as XML. Empty elements render self-closed.
func (e *Element) WriteTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "<%s", e.Name); err != nil {
		return err
	}
	for _, a := range e.Attrs {
		if _, err := io.WriteString(w, " "+a.Name+`="`); err != nil {
			return err
		}
		if err := escapeTo(w, a.Value); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `"`); err != nil {
			return err
		}
	}
	if e.Text == "" && len(e.Children) == 0 {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if err := escapeTo(w, e.Text); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+e.Name+">")
	return err
}

func escapeTo(w io.Writer, s string) error {
	if s == "" {
		return nil
	}
	return xml.EscapeText(w, []byte(s))
}
