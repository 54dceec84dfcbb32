package parser

import (
	"errors"
	"fmt"

	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func parseLabel(el *xmlstream.Element, sc *strict.Scan) (*model.Label, error) {
	l := model.NewLabel()
	var (
		seenID bool
		err    error
	)
	// Older dumps carry the id as an attribute, newer ones as a child.
	if raw, ok := el.Attr("id"); ok && raw != "" {
		l.ID, err = parseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("id attribute: %w", err)
		}
		seenID = true
	}
	for _, c := range el.Children {
		switch c.Name {
		case "id":
			if seenID {
				continue
			}
			l.ID, err = parseInt(c.TrimText())
			if err != nil {
				return nil, fmt.Errorf("id: %w", err)
			}
			seenID = true
		case "name":
			l.Name = text(c)
		case "contactinfo":
			l.ContactInfo = text(c)
		case "profile":
			l.Profile = text(c)
		case "data_quality":
			l.DataQuality = text(c)
		case "urls":
			l.URLs = stringList(c, "url", "urls", sc)
		case "sublabels":
			l.Sublabels, err = labelRefs(c, "sublabels", sc)
			if err != nil {
				return nil, err
			}
		case "parentLabel":
			if sc.Active() {
				sc.UnknownAttrs("parentLabel", c, "id")
				flagChildren(sc, "parentLabel", c)
			}
			ref, refErr := labelRef(c)
			if refErr != nil {
				return nil, fmt.Errorf("parentLabel: %w", refErr)
			}
			l.ParentLabel = ref
		default:
			sc.UnknownTag("", c.Name)
		}
	}
	// Name may sit directly in the element body on bare label forms.
	if l.Name == nil {
		l.Name = text(el)
	}
	sc.UnknownAttrs("", el, "id")
	if !seenID {
		return nil, errors.New("missing id")
	}
	return l, nil
}

// labelRef reads an element of the form <tag id="...">Name</tag>. Both
// parts are required; nil is returned when either is missing.
func labelRef(e *xmlstream.Element) (*model.LabelRef, error) {
	rawID, ok := e.Attr("id")
	name := e.TrimText()
	if !ok || rawID == "" || name == "" {
		return nil, nil
	}
	id, err := parseInt(rawID)
	if err != nil {
		return nil, err
	}
	return &model.LabelRef{ID: id, Name: name}, nil
}

func labelRefs(c *xmlstream.Element, prefix string, sc *strict.Scan) ([]model.LabelRef, error) {
	out := []model.LabelRef{}
	itemPrefix := prefix + "/label"
	for _, item := range c.Children {
		if item.Name != "label" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		if sc.Active() {
			sc.UnknownAttrs(itemPrefix, item, "id")
			flagChildren(sc, itemPrefix, item)
		}
		ref, err := labelRef(item)
		if err != nil {
			return nil, fmt.Errorf("%s id: %w", prefix, err)
		}
		if ref != nil {
			out = append(out, *ref)
		}
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}
