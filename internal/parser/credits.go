package parser

import (
	"fmt"

	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

// Credit and video collections appear on masters, releases and tracks
// with identical shapes, so the helpers live here.

// creditArtists reads an <artists> container of artist credits. Items
// without an id and a name are placeholders and are skipped.
func creditArtists(c *xmlstream.Element, prefix string, sc *strict.Scan) ([]model.CreditArtist, error) {
	out := []model.CreditArtist{}
	itemPrefix := prefix + "/artist"
	for _, item := range c.Children {
		if item.Name != "artist" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		sc.UnknownAttrs(itemPrefix, item)
		var (
			ca      model.CreditArtist
			rawID   *string
			hasName bool
		)
		for _, f := range item.Children {
			switch f.Name {
			case "id":
				rawID = text(f)
			case "name":
				if n := text(f); n != nil {
					ca.Name = *n
					hasName = true
				}
			case "anv":
				ca.ArtistNameVariation = text(f)
			case "join":
				ca.Join = text(f)
			default:
				sc.UnknownTag(itemPrefix, f.Name)
			}
		}
		if rawID == nil || !hasName {
			continue
		}
		id, err := parseInt(*rawID)
		if err != nil {
			return nil, fmt.Errorf("%s id: %w", prefix, err)
		}
		ca.ID = id
		out = append(out, ca)
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}

// extraArtists reads an <extraartists> container of role credits.
func extraArtists(c *xmlstream.Element, prefix string, sc *strict.Scan) ([]model.ExtraArtist, error) {
	out := []model.ExtraArtist{}
	itemPrefix := prefix + "/artist"
	for _, item := range c.Children {
		if item.Name != "artist" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		sc.UnknownAttrs(itemPrefix, item)
		var (
			ea      model.ExtraArtist
			rawID   *string
			hasName bool
		)
		for _, f := range item.Children {
			switch f.Name {
			case "id":
				rawID = text(f)
			case "name":
				if n := text(f); n != nil {
					ea.Name = *n
					hasName = true
				}
			case "anv":
				ea.ArtistNameVariation = text(f)
			case "role":
				ea.Role = text(f)
			case "tracks":
				ea.Tracks = text(f)
			default:
				sc.UnknownTag(itemPrefix, f.Name)
			}
		}
		if rawID == nil || !hasName {
			continue
		}
		id, err := parseInt(*rawID)
		if err != nil {
			return nil, fmt.Errorf("%s id: %w", prefix, err)
		}
		ea.ID = id
		out = append(out, ea)
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}

// videos reads a <videos> container. The src and duration attributes are
// required; items without them are skipped, a non-numeric duration is an
// element error.
func videos(c *xmlstream.Element, prefix string, sc *strict.Scan) ([]model.Video, error) {
	out := []model.Video{}
	itemPrefix := prefix + "/video"
	for _, item := range c.Children {
		if item.Name != "video" {
			sc.UnknownTag(prefix, item.Name)
			continue
		}
		sc.UnknownAttrs(itemPrefix, item, "src", "duration", "embed")
		var v model.Video
		for _, f := range item.Children {
			switch f.Name {
			case "title":
				v.Title = text(f)
			case "description":
				v.Description = text(f)
			default:
				sc.UnknownTag(itemPrefix, f.Name)
			}
		}
		src, _ := item.Attr("src")
		rawDur, hasDur := item.Attr("duration")
		if src == "" || !hasDur || rawDur == "" {
			continue
		}
		dur, err := parseInt(rawDur)
		if err != nil {
			return nil, fmt.Errorf("%s duration: %w", prefix, err)
		}
		embed, _ := item.Attr("embed")
		v.Src = src
		v.Duration = dur
		v.Embed = boolFlag(embed)
		out = append(out, v)
	}
	sc.UnknownAttrs(prefix, c)
	sc.StrayText(prefix, c)
	return out, nil
}
