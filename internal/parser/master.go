package parser

import (
	"errors"

	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func parseMaster(el *xmlstream.Element, sc *strict.Scan) (*model.MasterRelease, error) {
	m := model.NewMasterRelease()
	var err error
	for _, c := range el.Children {
		switch c.Name {
		case "main_release":
			m.MainRelease, err = optInt(text(c), "main_release")
		case "title":
			m.Title = text(c)
		case "year":
			m.Year, err = optInt(text(c), "year")
		case "notes":
			m.Notes = text(c)
		case "data_quality":
			m.DataQuality = text(c)
		case "artists":
			m.Artists, err = creditArtists(c, "artists", sc)
		case "genres":
			m.Genres = stringList(c, "genre", "genres", sc)
		case "styles":
			m.Styles = stringList(c, "style", "styles", sc)
		case "videos":
			m.Videos, err = videos(c, "videos", sc)
		default:
			sc.UnknownTag("", c.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	rawID, ok := el.Attr("id")
	if !ok {
		return nil, errors.New("missing id")
	}
	m.ID, err = parseInt(rawID)
	if err != nil {
		return nil, err
	}
	sc.UnknownAttrs("", el, "id")
	sc.StrayText("", el)
	return m, nil
}
