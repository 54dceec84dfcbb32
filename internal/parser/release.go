package parser

import (
	"errors"

	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func parseRelease(el *xmlstream.Element, sc *strict.Scan) (*model.Release, error) {
	r := model.NewRelease()
	var err error
	for _, c := range el.Children {
		switch c.Name {
		case "title":
			r.Title = text(c)
		case "country":
			r.Country = text(c)
		case "released":
			r.Released = text(c)
		case "notes":
			r.Notes = text(c)
		case "data_quality":
			r.DataQuality = text(c)
		case "master_id":
			r.MasterID, err = optInt(text(c), "master_id")
			if v := attrText(c, "is_main_release"); v != nil {
				main := boolFlag(*v)
				r.IsMainRelease = &main
			}
			sc.UnknownAttrs("master_id", c, "is_main_release")
		case "artists":
			r.Artists, err = creditArtists(c, "artists", sc)
		case "extraartists":
			r.ExtraArtists, err = extraArtists(c, "extraartists", sc)
		case "labels":
			r.Labels, err = releaseLabels(c, sc)
		case "formats":
			r.Formats = formats(c, sc)
		case "genres":
			r.Genres = stringList(c, "genre", "genres", sc)
		case "styles":
			r.Styles = stringList(c, "style", "styles", sc)
		case "companies":
			r.Companies, err = companies(c, sc)
		case "identifiers":
			r.Identifiers = identifiers(c, sc)
		case "videos":
			r.Videos, err = videos(c, "videos", sc)
		case "series":
			r.Series, err = seriesList(c, sc)
		case "tracklist":
			r.Tracklist, err = tracklist(c, sc)
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
	r.ID, err = parseInt(rawID)
	if err != nil {
		return nil, err
	}
	r.Status = attrText(el, "status")
	sc.UnknownAttrs("", el, "id", "status")
	sc.StrayText("", el)
	return r, nil
}

func releaseLabels(c *xmlstream.Element, sc *strict.Scan) ([]model.ReleaseLabel, error) {
	out := []model.ReleaseLabel{}
	for _, item := range c.Children {
		if item.Name != "label" {
			sc.UnknownTag("labels", item.Name)
			continue
		}
		if sc.Active() {
			sc.UnknownAttrs("labels/label", item, "id", "catno", "name")
			flagChildren(sc, "labels/label", item)
		}
		rl := model.ReleaseLabel{
			CatalogNumber: attrText(item, "catno"),
			Name:          attrText(item, "name"),
		}
		var err error
		rl.ID, err = optInt(attrText(item, "id"), "labels id")
		if err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	sc.UnknownAttrs("labels", c)
	sc.StrayText("labels", c)
	return out, nil
}

func formats(c *xmlstream.Element, sc *strict.Scan) []model.Format {
	out := []model.Format{}
	for _, item := range c.Children {
		if item.Name != "format" {
			sc.UnknownTag("formats", item.Name)
			continue
		}
		sc.UnknownAttrs("formats/format", item, "name", "qty", "text")
		f := model.Format{
			Name:         attrText(item, "name"),
			Quantity:     attrText(item, "qty"),
			Text:         attrText(item, "text"),
			Descriptions: []string{},
		}
		for _, fc := range item.Children {
			if fc.Name != "descriptions" {
				sc.UnknownTag("formats/format", fc.Name)
				continue
			}
			f.Descriptions = stringList(fc, "description", "formats/format/descriptions", sc)
		}
		out = append(out, f)
	}
	sc.UnknownAttrs("formats", c)
	sc.StrayText("formats", c)
	return out
}

func companies(c *xmlstream.Element, sc *strict.Scan) ([]model.Company, error) {
	out := []model.Company{}
	for _, item := range c.Children {
		if item.Name != "company" {
			sc.UnknownTag("companies", item.Name)
			continue
		}
		sc.UnknownAttrs("companies/company", item)
		var (
			co  model.Company
			err error
		)
		for _, f := range item.Children {
			switch f.Name {
			case "id":
				co.ID, err = optInt(text(f), "companies id")
			case "name":
				co.Name = text(f)
			case "catno":
				co.CatalogNumber = text(f)
			case "entity_type":
				co.EntityType, err = optInt(text(f), "companies entity_type")
			case "entity_type_name":
				co.EntityTypeName = text(f)
			case "resource_url":
				co.ResourceURL = text(f)
			default:
				sc.UnknownTag("companies/company", f.Name)
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, co)
	}
	sc.UnknownAttrs("companies", c)
	sc.StrayText("companies", c)
	return out, nil
}

func identifiers(c *xmlstream.Element, sc *strict.Scan) []model.Identifier {
	out := []model.Identifier{}
	for _, item := range c.Children {
		if item.Name != "identifier" {
			sc.UnknownTag("identifiers", item.Name)
			continue
		}
		if sc.Active() {
			sc.UnknownAttrs("identifiers/identifier", item, "type", "value", "description")
			flagChildren(sc, "identifiers/identifier", item)
		}
		out = append(out, model.Identifier{
			Type:        attrText(item, "type"),
			Description: attrText(item, "description"),
			Value:       attrText(item, "value"),
		})
	}
	sc.UnknownAttrs("identifiers", c)
	sc.StrayText("identifiers", c)
	return out
}

func seriesList(c *xmlstream.Element, sc *strict.Scan) ([]model.Series, error) {
	out := []model.Series{}
	for _, item := range c.Children {
		if item.Name != "series" {
			sc.UnknownTag("series", item.Name)
			continue
		}
		if sc.Active() {
			sc.UnknownAttrs("series/series", item, "id", "catno", "name")
			flagChildren(sc, "series/series", item)
		}
		s := model.Series{
			CatalogNumber: attrText(item, "catno"),
			Name:          attrText(item, "name"),
		}
		var err error
		s.ID, err = optInt(attrText(item, "id"), "series id")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sc.UnknownAttrs("series", c)
	sc.StrayText("series", c)
	return out, nil
}

func tracklist(c *xmlstream.Element, sc *strict.Scan) ([]model.Track, error) {
	out := []model.Track{}
	for _, item := range c.Children {
		if item.Name != "track" {
			sc.UnknownTag("tracklist", item.Name)
			continue
		}
		t, err := track(item, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	sc.UnknownAttrs("tracklist", c)
	sc.StrayText("tracklist", c)
	return out, nil
}

func track(item *xmlstream.Element, sc *strict.Scan) (*model.Track, error) {
	const prefix = "tracklist/track"
	sc.UnknownAttrs(prefix, item)
	t := model.NewTrack()
	var err error
	for _, f := range item.Children {
		switch f.Name {
		case "position":
			t.Position = text(f)
		case "title":
			t.Title = text(f)
		case "duration":
			t.Duration = text(f)
		case "artists":
			t.Artists, err = creditArtists(f, prefix+"/artists", sc)
		case "extraartists":
			t.ExtraArtists, err = extraArtists(f, prefix+"/extraartists", sc)
		case "sub_tracks":
			t.SubTracks, err = subTracks(f, sc)
		default:
			sc.UnknownTag(prefix, f.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// subTracks reads the movements of an index track. Sub-tracks carry the
// same fields as tracks but never nest further.
func subTracks(c *xmlstream.Element, sc *strict.Scan) ([]model.SubTrack, error) {
	const prefix = "tracklist/track/sub_tracks"
	out := []model.SubTrack{}
	for _, item := range c.Children {
		if item.Name != "track" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		sc.UnknownAttrs(prefix+"/track", item)
		st := model.NewSubTrack()
		var err error
		for _, f := range item.Children {
			switch f.Name {
			case "position":
				st.Position = text(f)
			case "title":
				st.Title = text(f)
			case "duration":
				st.Duration = text(f)
			case "artists":
				st.Artists, err = creditArtists(f, prefix+"/track/artists", sc)
			case "extraartists":
				st.ExtraArtists, err = extraArtists(f, prefix+"/track/extraartists", sc)
			default:
				sc.UnknownTag(prefix+"/track", f.Name)
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, *st)
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}
