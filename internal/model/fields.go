package model

// Named field access and redaction for the four record kinds. Filters
// address top-level scalar fields by their serialized names; redaction
// clears optional fields on a copy and never mutates the input record.

func strVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intVal(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolVal(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func (a *Artist) Field(name string) (any, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "name":
		return strVal(a.Name), true
	case "real_name":
		return strVal(a.RealName), true
	case "profile":
		return strVal(a.Profile), true
	case "data_quality":
		return strVal(a.DataQuality), true
	}
	return nil, false
}

func (a *Artist) WithUnset(fields []string) (Record, bool) {
	out := *a
	touched := false
	for _, f := range fields {
		switch f {
		case "name":
			out.Name = nil
		case "real_name":
			out.RealName = nil
		case "profile":
			out.Profile = nil
		case "data_quality":
			out.DataQuality = nil
		case "aliases":
			out.Aliases = nil
		case "groups":
			out.Groups = nil
		case "members":
			out.Members = nil
		case "name_variations":
			out.NameVariations = nil
		case "urls":
			out.URLs = nil
		default:
			continue
		}
		touched = true
	}
	return &out, touched
}

func (l *Label) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "name":
		return strVal(l.Name), true
	case "contact_info":
		return strVal(l.ContactInfo), true
	case "profile":
		return strVal(l.Profile), true
	case "data_quality":
		return strVal(l.DataQuality), true
	}
	return nil, false
}

func (l *Label) WithUnset(fields []string) (Record, bool) {
	out := *l
	touched := false
	for _, f := range fields {
		switch f {
		case "name":
			out.Name = nil
		case "contact_info":
			out.ContactInfo = nil
		case "profile":
			out.Profile = nil
		case "data_quality":
			out.DataQuality = nil
		case "parent_label":
			out.ParentLabel = nil
		case "sublabels":
			out.Sublabels = nil
		case "urls":
			out.URLs = nil
		default:
			continue
		}
		touched = true
	}
	return &out, touched
}

func (m *MasterRelease) Field(name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "title":
		return strVal(m.Title), true
	case "main_release":
		return intVal(m.MainRelease), true
	case "year":
		return intVal(m.Year), true
	case "notes":
		return strVal(m.Notes), true
	case "data_quality":
		return strVal(m.DataQuality), true
	}
	return nil, false
}

func (m *MasterRelease) WithUnset(fields []string) (Record, bool) {
	out := *m
	touched := false
	for _, f := range fields {
		switch f {
		case "title":
			out.Title = nil
		case "main_release":
			out.MainRelease = nil
		case "year":
			out.Year = nil
		case "notes":
			out.Notes = nil
		case "data_quality":
			out.DataQuality = nil
		case "artists":
			out.Artists = nil
		case "genres":
			out.Genres = nil
		case "styles":
			out.Styles = nil
		case "videos":
			out.Videos = nil
		default:
			continue
		}
		touched = true
	}
	return &out, touched
}

func (r *Release) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "title":
		return strVal(r.Title), true
	case "status":
		return strVal(r.Status), true
	case "country":
		return strVal(r.Country), true
	case "released":
		return strVal(r.Released), true
	case "notes":
		return strVal(r.Notes), true
	case "master_id":
		return intVal(r.MasterID), true
	case "is_main_release":
		return boolVal(r.IsMainRelease), true
	case "data_quality":
		return strVal(r.DataQuality), true
	}
	return nil, false
}

func (r *Release) WithUnset(fields []string) (Record, bool) {
	out := *r
	touched := false
	for _, f := range fields {
		switch f {
		case "title":
			out.Title = nil
		case "status":
			out.Status = nil
		case "country":
			out.Country = nil
		case "released":
			out.Released = nil
		case "notes":
			out.Notes = nil
		case "master_id":
			out.MasterID = nil
		case "is_main_release":
			out.IsMainRelease = nil
		case "data_quality":
			out.DataQuality = nil
		case "artists":
			out.Artists = nil
		case "companies":
			out.Companies = nil
		case "extra_artists":
			out.ExtraArtists = nil
		case "formats":
			out.Formats = nil
		case "genres":
			out.Genres = nil
		case "identifiers":
			out.Identifiers = nil
		case "labels":
			out.Labels = nil
		case "series":
			out.Series = nil
		case "styles":
			out.Styles = nil
		case "tracklist":
			out.Tracklist = nil
		case "videos":
			out.Videos = nil
		default:
			continue
		}
		touched = true
	}
	return &out, touched
}
