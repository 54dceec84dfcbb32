package parser

import (
	"errors"
	"fmt"

	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func parseArtist(el *xmlstream.Element, sc *strict.Scan) (*model.Artist, error) {
	a := model.NewArtist()
	var (
		seenID bool
		err    error
	)
	for _, c := range el.Children {
		switch c.Name {
		case "id":
			a.ID, err = parseInt(c.TrimText())
			if err != nil {
				return nil, fmt.Errorf("id: %w", err)
			}
			seenID = true
		case "name":
			a.Name = text(c)
		case "realname":
			a.RealName = text(c)
		case "profile":
			a.Profile = text(c)
		case "data_quality":
			a.DataQuality = text(c)
		case "urls":
			a.URLs = stringList(c, "url", "urls", sc)
		case "namevariations":
			a.NameVariations = stringList(c, "name", "namevariations", sc)
		case "aliases":
			a.Aliases, err = artistRefs(c, "aliases", sc)
		case "members":
			a.Members, err = artistRefs(c, "members", sc)
		case "groups":
			a.Groups, err = artistRefs(c, "groups", sc)
		default:
			sc.UnknownTag("", c.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	sc.UnknownAttrs("", el)
	sc.StrayText("", el)
	if !seenID {
		return nil, errors.New("missing id")
	}
	return a, nil
}

// artistRefs reads a container of <name id="...">Name</name> references.
// Items missing the id or the name are skipped, matching the dumps' habit
// of carrying empty placeholder tags.
func artistRefs(c *xmlstream.Element, prefix string, sc *strict.Scan) ([]model.ArtistRef, error) {
	out := []model.ArtistRef{}
	itemPrefix := prefix + "/name"
	for _, item := range c.Children {
		if item.Name != "name" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		if sc.Active() {
			sc.UnknownAttrs(itemPrefix, item, "id")
			flagChildren(sc, itemPrefix, item)
		}
		rawID, ok := item.Attr("id")
		name := item.TrimText()
		if !ok || rawID == "" || name == "" {
			continue
		}
		id, err := parseInt(rawID)
		if err != nil {
			return nil, fmt.Errorf("%s id: %w", prefix, err)
		}
		out = append(out, model.ArtistRef{ID: id, Name: name})
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}
