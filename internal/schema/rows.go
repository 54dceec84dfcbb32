package schema

import (
	json "github.com/goccy/go-json"

	"github.com/jmfontaine/dgkit/internal/model"
)

// AppendRows decomposes one record into rows appended to dst, keyed by
// table name. Row values align with the column order of Tables for the
// record's kind. Optional fields stay pointers; drivers bind nil as
// NULL.
func AppendRows(dst map[string][][]any, rec model.Record) {
	switch r := rec.(type) {
	case *model.Artist:
		appendArtist(dst, r)
	case *model.Label:
		appendLabel(dst, r)
	case *model.MasterRelease:
		appendMaster(dst, r)
	case *model.Release:
		appendRelease(dst, r)
	}
}

func add(dst map[string][][]any, table string, row []any) {
	dst[table] = append(dst[table], row)
}

// jsonList renders a string list as a JSON text value, NULL when empty.
func jsonList(items []string) any {
	if len(items) == 0 {
		return nil
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func appendArtist(dst map[string][][]any, a *model.Artist) {
	add(dst, "artist", []any{
		a.ID, a.DataQuality, a.Name, a.Profile, a.RealName,
		jsonList(a.NameVariations), jsonList(a.URLs),
	})
	for _, ref := range a.Aliases {
		add(dst, "artist_alias", []any{a.ID, ref.ID, ref.Name})
	}
	for _, ref := range a.Groups {
		add(dst, "artist_group", []any{a.ID, ref.ID, ref.Name})
	}
	for _, ref := range a.Members {
		add(dst, "artist_member", []any{a.ID, ref.ID, ref.Name})
	}
}

func appendLabel(dst map[string][][]any, l *model.Label) {
	var parentID, parentName any
	if l.ParentLabel != nil {
		parentID, parentName = l.ParentLabel.ID, l.ParentLabel.Name
	}
	add(dst, "label", []any{
		l.ID, l.ContactInfo, l.DataQuality, l.Name, l.Profile,
		parentID, parentName, jsonList(l.URLs),
	})
	for _, ref := range l.Sublabels {
		add(dst, "label_sublabel", []any{l.ID, ref.ID, ref.Name})
	}
}

func appendMaster(dst map[string][][]any, m *model.MasterRelease) {
	add(dst, "masterrelease", []any{
		m.ID, m.DataQuality, m.MainRelease, m.Notes, m.Title, m.Year,
		jsonList(m.Genres), jsonList(m.Styles),
	})
	for _, ca := range m.Artists {
		add(dst, "masterrelease_artist", []any{m.ID, ca.ID, ca.ArtistNameVariation, ca.Join, ca.Name})
	}
	for _, v := range m.Videos {
		add(dst, "masterrelease_video", []any{m.ID, v.Description, v.Duration, v.Embed, v.Src, v.Title})
	}
}

func appendRelease(dst map[string][][]any, r *model.Release) {
	add(dst, "release", []any{
		r.ID, r.Country, r.DataQuality, r.IsMainRelease, r.MasterID,
		r.Notes, r.Released, r.Status, r.Title,
		jsonList(r.Genres), jsonList(r.Styles),
	})
	for _, ca := range r.Artists {
		add(dst, "release_artist", []any{r.ID, ca.ID, ca.ArtistNameVariation, ca.Join, ca.Name})
	}
	for _, co := range r.Companies {
		add(dst, "release_company", []any{r.ID, co.ID, co.CatalogNumber, co.EntityType, co.EntityTypeName, co.Name, co.ResourceURL})
	}
	for _, ea := range r.ExtraArtists {
		add(dst, "release_extra_artist", []any{r.ID, ea.ID, ea.ArtistNameVariation, ea.Name, ea.Role, ea.Tracks})
	}
	for _, f := range r.Formats {
		add(dst, "release_format", []any{r.ID, jsonList(f.Descriptions), f.Name, f.Quantity, f.Text})
	}
	for _, ident := range r.Identifiers {
		add(dst, "release_identifier", []any{r.ID, ident.Description, ident.Type, ident.Value})
	}
	for _, rl := range r.Labels {
		add(dst, "release_label", []any{r.ID, rl.ID, rl.CatalogNumber, rl.Name})
	}
	for _, s := range r.Series {
		add(dst, "release_series", []any{r.ID, s.ID, s.CatalogNumber, s.Name})
	}
	seq := int64(0)
	for _, tr := range r.Tracklist {
		seq++
		parent := seq
		add(dst, "release_track", []any{r.ID, seq, nil, tr.Duration, tr.Position, tr.Title})
		appendTrackCredits(dst, r.ID, seq, tr.Artists, tr.ExtraArtists)
		for _, st := range tr.SubTracks {
			seq++
			add(dst, "release_track", []any{r.ID, seq, parent, st.Duration, st.Position, st.Title})
			appendTrackCredits(dst, r.ID, seq, st.Artists, st.ExtraArtists)
		}
	}
	for _, v := range r.Videos {
		add(dst, "release_video", []any{r.ID, v.Description, v.Duration, v.Embed, v.Src, v.Title})
	}
}

func appendTrackCredits(dst map[string][][]any, releaseID, seq int64, artists []model.CreditArtist, extra []model.ExtraArtist) {
	for _, ca := range artists {
		add(dst, "release_track_artist", []any{releaseID, seq, ca.ID, ca.ArtistNameVariation, ca.Join, ca.Name})
	}
	for _, ea := range extra {
		add(dst, "release_track_extra_artist", []any{releaseID, seq, ea.ID, ea.ArtistNameVariation, ea.Name, ea.Role, ea.Tracks})
	}
}
