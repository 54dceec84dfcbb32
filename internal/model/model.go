// Package model defines the typed records produced from Discogs data dumps.
//
// Four top-level entity kinds exist: Artist, Label, MasterRelease and
// Release. Each is a value record identified by an integer id, owning zero
// or more ordered nested collections. Optional scalars are pointers so that
// "absent" survives serialization as null instead of an empty string.
package model

// ArtistRef points at another artist (aliases, members, groups).
type ArtistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LabelRef points at another label (sublabels, parent label).
type LabelRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreditArtist is an artist credit on a release, master or track.
type CreditArtist struct {
	ID                  int64   `json:"id"`
	ArtistNameVariation *string `json:"artist_name_variation"`
	Join                *string `json:"join"`
	Name                string  `json:"name"`
}

// ExtraArtist is a production or performance credit with a role.
type ExtraArtist struct {
	ID                  int64   `json:"id"`
	ArtistNameVariation *string `json:"artist_name_variation"`
	Name                string  `json:"name"`
	Role                *string `json:"role"`
	Tracks              *string `json:"tracks"`
}

// ReleaseLabel is a label credit on a release.
type ReleaseLabel struct {
	ID            *int64  `json:"id"`
	CatalogNumber *string `json:"catalog_number"`
	Name          *string `json:"name"`
}

// Format describes one physical format of a release.
type Format struct {
	Name *string `json:"name"`
	// Quantity stays a string: some dump values exceed any integer type
	// (see release 8262262) and the field is never used arithmetically.
	Quantity     *string  `json:"quantity"`
	Text         *string  `json:"text"`
	Descriptions []string `json:"descriptions"`
}

// SubTrack is a movement or section within a track.
type SubTrack struct {
	Duration     *string        `json:"duration"`
	Position     *string        `json:"position"`
	Title        *string        `json:"title"`
	Artists      []CreditArtist `json:"artists"`
	ExtraArtists []ExtraArtist  `json:"extra_artists"`
}

// Track is one tracklist entry on a release.
type Track struct {
	Duration     *string        `json:"duration"`
	Position     *string        `json:"position"`
	Title        *string        `json:"title"`
	Artists      []CreditArtist `json:"artists"`
	ExtraArtists []ExtraArtist  `json:"extra_artists"`
	SubTracks    []SubTrack     `json:"sub_tracks"`
}

// Identifier is a barcode, matrix number or similar release identifier.
type Identifier struct {
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Value       *string `json:"value"`
}

// Company is a company credit on a release (pressing plant, distributor...).
type Company struct {
	ID             *int64  `json:"id"`
	CatalogNumber  *string `json:"catalog_number"`
	EntityType     *int64  `json:"entity_type"`
	EntityTypeName *string `json:"entity_type_name"`
	Name           *string `json:"name"`
	ResourceURL    *string `json:"resource_url"`
}

// Series is a series a release belongs to.
type Series struct {
	ID            *int64  `json:"id"`
	CatalogNumber *string `json:"catalog_number"`
	Name          *string `json:"name"`
}

// Video is a video attached to a release or master release.
type Video struct {
	Description *string `json:"description"`
	Duration    int64   `json:"duration"`
	Embed       bool    `json:"embed"`
	Src         string  `json:"src"`
	Title       *string `json:"title"`
}

// Artist is one artist entity from an artists dump.
type Artist struct {
	ID             int64       `json:"id"`
	DataQuality    *string     `json:"data_quality"`
	Name           *string     `json:"name"`
	Profile        *string     `json:"profile"`
	RealName       *string     `json:"real_name"`
	Aliases        []ArtistRef `json:"aliases"`
	Groups         []ArtistRef `json:"groups"`
	Members        []ArtistRef `json:"members"`
	NameVariations []string    `json:"name_variations"`
	URLs           []string    `json:"urls"`
}

// Label is one label entity from a labels dump.
type Label struct {
	ID          int64      `json:"id"`
	ContactInfo *string    `json:"contact_info"`
	DataQuality *string    `json:"data_quality"`
	Name        *string    `json:"name"`
	Profile     *string    `json:"profile"`
	ParentLabel *LabelRef  `json:"parent_label"`
	Sublabels   []LabelRef `json:"sublabels"`
	URLs        []string   `json:"urls"`
}

// MasterRelease is one master entity from a masters dump.
type MasterRelease struct {
	ID          int64          `json:"id"`
	DataQuality *string        `json:"data_quality"`
	MainRelease *int64         `json:"main_release"`
	Notes       *string        `json:"notes"`
	Title       *string        `json:"title"`
	Year        *int64         `json:"year"`
	Artists     []CreditArtist `json:"artists"`
	Genres      []string       `json:"genres"`
	Styles      []string       `json:"styles"`
	Videos      []Video        `json:"videos"`
}

// Release is one release entity from a releases dump.
type Release struct {
	ID            int64          `json:"id"`
	Country       *string        `json:"country"`
	DataQuality   *string        `json:"data_quality"`
	IsMainRelease *bool          `json:"is_main_release"`
	MasterID      *int64         `json:"master_id"`
	Notes         *string        `json:"notes"`
	Released      *string        `json:"released"`
	Status        *string        `json:"status"`
	Title         *string        `json:"title"`
	Artists       []CreditArtist `json:"artists"`
	Companies     []Company      `json:"companies"`
	ExtraArtists  []ExtraArtist  `json:"extra_artists"`
	Formats       []Format       `json:"formats"`
	Genres        []string       `json:"genres"`
	Identifiers   []Identifier   `json:"identifiers"`
	Labels        []ReleaseLabel `json:"labels"`
	Series        []Series       `json:"series"`
	Styles        []string       `json:"styles"`
	Tracklist     []Track        `json:"tracklist"`
	Videos        []Video        `json:"videos"`
}

// Records serialize absent collections as [] rather than null: a parsed
// entity always owns its collections, present in the source or not. The
// constructors below initialize them; only redaction resets one to nil.

func NewArtist() *Artist {
	return &Artist{
		Aliases:        []ArtistRef{},
		Groups:         []ArtistRef{},
		Members:        []ArtistRef{},
		NameVariations: []string{},
		URLs:           []string{},
	}
}

func NewLabel() *Label {
	return &Label{
		Sublabels: []LabelRef{},
		URLs:      []string{},
	}
}

func NewMasterRelease() *MasterRelease {
	return &MasterRelease{
		Artists: []CreditArtist{},
		Genres:  []string{},
		Styles:  []string{},
		Videos:  []Video{},
	}
}

func NewRelease() *Release {
	return &Release{
		Artists:      []CreditArtist{},
		Companies:    []Company{},
		ExtraArtists: []ExtraArtist{},
		Formats:      []Format{},
		Genres:       []string{},
		Identifiers:  []Identifier{},
		Labels:       []ReleaseLabel{},
		Series:       []Series{},
		Styles:       []string{},
		Tracklist:    []Track{},
		Videos:       []Video{},
	}
}

func NewTrack() *Track {
	return &Track{
		Artists:      []CreditArtist{},
		ExtraArtists: []ExtraArtist{},
		SubTracks:    []SubTrack{},
	}
}

func NewSubTrack() *SubTrack {
	return &SubTrack{
		Artists:      []CreditArtist{},
		ExtraArtists: []ExtraArtist{},
	}
}

// Record is the closed set of top-level entity records. Exactly four types
// implement it: *Artist, *Label, *MasterRelease and *Release.
type Record interface {
	// Kind reports which entity kind the record is.
	Kind() Kind
	// RecordID returns the entity id.
	RecordID() int64
	// Field returns the value of a named top-level scalar field. Pointer
	// fields dereference to their value or nil. The second result is false
	// for names that do not address a scalar field of this kind.
	Field(name string) (any, bool)
	// WithUnset returns a copy with the named optional fields cleared.
	// Unknown names and required fields are ignored. The second result
	// reports whether any named field exists on this kind.
	WithUnset(fields []string) (Record, bool)
}

func (a *Artist) Kind() Kind { return KindArtist }

func (a *Artist) RecordID() int64 { return a.ID }

func (l *Label) Kind() Kind { return KindLabel }

func (l *Label) RecordID() int64 { return l.ID }

func (m *MasterRelease) Kind() Kind { return KindMaster }

func (m *MasterRelease) RecordID() int64 { return m.ID }

func (r *Release) Kind() Kind { return KindRelease }

func (r *Release) RecordID() int64 { return r.ID }
