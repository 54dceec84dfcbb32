// Package parser maps raw dump elements onto typed records.
//
// Each entity kind has one mapping function that makes a single pass over
// the element's children, dispatching on tag name. Nested collections are
// handled by bounded helpers that single-pass their own subtree the same
// way; nothing rescans. An optional strict.Scan rides along and is fed
// from the dispatch default branches, so detecting unmapped content costs
// nothing when it is off.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

// Parser turns elements of one entity kind into records.
type Parser struct {
	kind model.Kind
}

// New returns a Parser for the given entity kind.
func New(kind model.Kind) *Parser {
	return &Parser{kind: kind}
}

// Kind returns the entity kind this parser handles.
func (p *Parser) Kind() model.Kind { return p.kind }

// Parse maps one element onto a record. Errors are element-level (a
// required field missing or malformed) and leave sibling elements
// unaffected; the caller decides whether to skip or abort.
func (p *Parser) Parse(el *xmlstream.Element, sc *strict.Scan) (model.Record, error) {
	var (
		rec model.Record
		err error
	)
	switch p.kind {
	case model.KindArtist:
		rec, err = parseArtist(el, sc)
	case model.KindLabel:
		rec, err = parseLabel(el, sc)
	case model.KindMaster:
		rec, err = parseMaster(el, sc)
	case model.KindRelease:
		rec, err = parseRelease(el, sc)
	default:
		return nil, dgerr.New(dgerr.Parse, "no parser for kind %v", p.kind)
	}
	if err != nil {
		return nil, dgerr.Wrap(dgerr.Parse, err, "map %s element", p.kind)
	}
	return rec, nil
}

// text returns the element's trimmed text as an optional string.
func text(e *xmlstream.Element) *string {
	if t := e.TrimText(); t != "" {
		return &t
	}
	return nil
}

// attrText returns a named attribute as an optional string.
func attrText(e *xmlstream.Element, name string) *string {
	if v, ok := e.Attr(name); ok && v != "" {
		return &v
	}
	return nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// boolFlag reads the dumps' boolean attribute encodings: "1" and any
// casing of "true" are true, everything else is false.
func boolFlag(s string) bool {
	return s == "1" || strings.EqualFold(s, "true")
}

// optInt parses an optional integer field, empty meaning absent.
func optInt(s *string, field string) (*int64, error) {
	if s == nil {
		return nil, nil
	}
	n, err := parseInt(*s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &n, nil
}

// stringList collects the text of every itemTag child, in order. Anything
// else in the container is unmapped.
func stringList(c *xmlstream.Element, itemTag, prefix string, sc *strict.Scan) []string {
	out := []string{}
	itemPrefix := prefix + "/" + itemTag
	for _, item := range c.Children {
		if item.Name != itemTag {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		if t := item.TrimText(); t != "" {
			out = append(out, t)
		}
		if sc.Active() {
			sc.UnknownAttrs(itemPrefix, item)
			flagChildren(sc, itemPrefix, item)
		}
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out
}

// flagChildren marks every child of a leaf-like element as unmapped.
func flagChildren(sc *strict.Scan, prefix string, e *xmlstream.Element) {
	for _, c := range e.Children {
		sc.UnknownTag(prefix, c.Name)
	}
}
