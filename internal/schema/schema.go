// Package schema defines the relational layout for dump records and
// decomposes records into rows.
//
// Every entity kind maps to one parent table named after the kind and a
// fixed set of child tables named <parent>_<collection>, one row per
// collection item, ordered as in the source. Plain string lists
// (urls, genres, styles, format descriptions) stay on their row as JSON
// text columns; record-shaped collections get child tables. Tracks get
// a per-release sequence number spanning tracks and sub-tracks in
// document order, so credits can reference their track without relying
// on the dump's position strings, which repeat and go missing.
//
// The table set is closed: adding a model field without a schema column
// is a compile-time conflict surfaced by the decomposition tests.
package schema

import "github.com/jmfontaine/dgkit/internal/model"

// Type is the abstract column type, rendered per dialect.
type Type uint8

const (
	Int Type = iota
	Text
	Bool
)

// Column describes one table column.
type Column struct {
	Name       string
	Type       Type
	PrimaryKey bool
	NotNull    bool
}

// Table describes one table of the relational layout.
type Table struct {
	Name    string
	Columns []Column
}

// Index describes a secondary index, created only after a load finishes
// cleanly.
type Index struct {
	Name    string
	Table   string
	Columns []string
}

var artistTables = []Table{
	{Name: "artist", Columns: []Column{
		{Name: "id", Type: Int, PrimaryKey: true},
		{Name: "data_quality", Type: Text},
		{Name: "name", Type: Text},
		{Name: "profile", Type: Text},
		{Name: "real_name", Type: Text},
		{Name: "name_variations", Type: Text},
		{Name: "urls", Type: Text},
	}},
	{Name: "artist_alias", Columns: []Column{
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "alias_id", Type: Int, NotNull: true},
		{Name: "name", Type: Text, NotNull: true},
	}},
	{Name: "artist_group", Columns: []Column{
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "group_id", Type: Int, NotNull: true},
		{Name: "name", Type: Text, NotNull: true},
	}},
	{Name: "artist_member", Columns: []Column{
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "member_id", Type: Int, NotNull: true},
		{Name: "name", Type: Text, NotNull: true},
	}},
}

var labelTables = []Table{
	{Name: "label", Columns: []Column{
		{Name: "id", Type: Int, PrimaryKey: true},
		{Name: "contact_info", Type: Text},
		{Name: "data_quality", Type: Text},
		{Name: "name", Type: Text},
		{Name: "profile", Type: Text},
		{Name: "parent_label_id", Type: Int},
		{Name: "parent_label_name", Type: Text},
		{Name: "urls", Type: Text},
	}},
	{Name: "label_sublabel", Columns: []Column{
		{Name: "label_id", Type: Int, NotNull: true},
		{Name: "sublabel_id", Type: Int, NotNull: true},
		{Name: "name", Type: Text, NotNull: true},
	}},
}

var masterTables = []Table{
	{Name: "masterrelease", Columns: []Column{
		{Name: "id", Type: Int, PrimaryKey: true},
		{Name: "data_quality", Type: Text},
		{Name: "main_release", Type: Int},
		{Name: "notes", Type: Text},
		{Name: "title", Type: Text},
		{Name: "year", Type: Int},
		{Name: "genres", Type: Text},
		{Name: "styles", Type: Text},
	}},
	{Name: "masterrelease_artist", Columns: []Column{
		{Name: "masterrelease_id", Type: Int, NotNull: true},
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "artist_name_variation", Type: Text},
		{Name: "join", Type: Text},
		{Name: "name", Type: Text, NotNull: true},
	}},
	{Name: "masterrelease_video", Columns: []Column{
		{Name: "masterrelease_id", Type: Int, NotNull: true},
		{Name: "description", Type: Text},
		{Name: "duration", Type: Int, NotNull: true},
		{Name: "embed", Type: Bool, NotNull: true},
		{Name: "src", Type: Text, NotNull: true},
		{Name: "title", Type: Text},
	}},
}

var releaseTables = []Table{
	{Name: "release", Columns: []Column{
		{Name: "id", Type: Int, PrimaryKey: true},
		{Name: "country", Type: Text},
		{Name: "data_quality", Type: Text},
		{Name: "is_main_release", Type: Bool},
		{Name: "master_id", Type: Int},
		{Name: "notes", Type: Text},
		{Name: "released", Type: Text},
		{Name: "status", Type: Text},
		{Name: "title", Type: Text},
		{Name: "genres", Type: Text},
		{Name: "styles", Type: Text},
	}},
	{Name: "release_artist", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "artist_name_variation", Type: Text},
		{Name: "join", Type: Text},
		{Name: "name", Type: Text, NotNull: true},
	}},
	{Name: "release_company", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "company_id", Type: Int},
		{Name: "catalog_number", Type: Text},
		{Name: "entity_type", Type: Int},
		{Name: "entity_type_name", Type: Text},
		{Name: "name", Type: Text},
		{Name: "resource_url", Type: Text},
	}},
	{Name: "release_extra_artist", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "artist_name_variation", Type: Text},
		{Name: "name", Type: Text, NotNull: true},
		{Name: "role", Type: Text},
		{Name: "tracks", Type: Text},
	}},
	{Name: "release_format", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "descriptions", Type: Text},
		{Name: "name", Type: Text},
		{Name: "quantity", Type: Text},
		{Name: "text", Type: Text},
	}},
	{Name: "release_identifier", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "description", Type: Text},
		{Name: "type", Type: Text},
		{Name: "value", Type: Text},
	}},
	{Name: "release_label", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "label_id", Type: Int},
		{Name: "catalog_number", Type: Text},
		{Name: "name", Type: Text},
	}},
	{Name: "release_series", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "series_id", Type: Int},
		{Name: "catalog_number", Type: Text},
		{Name: "name", Type: Text},
	}},
	{Name: "release_track", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "sequence", Type: Int, NotNull: true},
		{Name: "parent_sequence", Type: Int},
		{Name: "duration", Type: Text},
		{Name: "position", Type: Text},
		{Name: "title", Type: Text},
	}},
	{Name: "release_track_artist", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "track_sequence", Type: Int, NotNull: true},
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "artist_name_variation", Type: Text},
		{Name: "join", Type: Text},
		{Name: "name", Type: Text, NotNull: true},
	}},
	{Name: "release_track_extra_artist", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "track_sequence", Type: Int, NotNull: true},
		{Name: "artist_id", Type: Int, NotNull: true},
		{Name: "artist_name_variation", Type: Text},
		{Name: "name", Type: Text, NotNull: true},
		{Name: "role", Type: Text},
		{Name: "tracks", Type: Text},
	}},
	{Name: "release_video", Columns: []Column{
		{Name: "release_id", Type: Int, NotNull: true},
		{Name: "description", Type: Text},
		{Name: "duration", Type: Int, NotNull: true},
		{Name: "embed", Type: Bool, NotNull: true},
		{Name: "src", Type: Text, NotNull: true},
		{Name: "title", Type: Text},
	}},
}

// Tables returns the table set for a kind, parent table first. Children
// follow in name order; writers create and flush in this order so
// parents land before their rows' children.
func Tables(kind model.Kind) []Table {
	switch kind {
	case model.KindArtist:
		return artistTables
	case model.KindLabel:
		return labelTables
	case model.KindMaster:
		return masterTables
	case model.KindRelease:
		return releaseTables
	}
	return nil
}

// Indices returns the deferred secondary indices for a kind: one per
// child table on its parent reference. Parent tables rely on their
// inline primary key.
func Indices(kind model.Kind) []Index {
	tables := Tables(kind)
	if len(tables) == 0 {
		return nil
	}
	parent := tables[0]
	var out []Index
	for _, t := range tables[1:] {
		out = append(out, Index{
			Name:    "idx_" + t.Name + "_" + parent.Name + "_id",
			Table:   t.Name,
			Columns: []string{parent.Name + "_id"},
		})
	}
	return out
}
