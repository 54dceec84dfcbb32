package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jmfontaine/dgkit/internal/model"
)

func str(s string) *string { return &s }

// TestTablesClosedSet verifies the layout invariants: the parent table
// leads and is named after the kind, every child is prefixed with the
// parent name and keyed by a leading non-null parent reference.
func TestTablesClosedSet(t *testing.T) {
	kinds := []model.Kind{model.KindArtist, model.KindLabel, model.KindMaster, model.KindRelease}
	for _, kind := range kinds {
		tables := Tables(kind)
		if len(tables) == 0 {
			t.Fatalf("Tables(%v) is empty", kind)
		}
		parent := tables[0]
		if parent.Name != kind.Table() {
			t.Fatalf("parent table = %q; want %q", parent.Name, kind.Table())
		}
		if c := parent.Columns[0]; c.Name != "id" || !c.PrimaryKey {
			t.Fatalf("%s leading column = %+v; want id primary key", parent.Name, c)
		}
		for _, child := range tables[1:] {
			if !strings.HasPrefix(child.Name, parent.Name+"_") {
				t.Errorf("child table %q not prefixed with %q", child.Name, parent.Name)
			}
			fk := child.Columns[0]
			if fk.Name != parent.Name+"_id" || !fk.NotNull {
				t.Errorf("%s leading column = %+v; want non-null %s_id", child.Name, fk, parent.Name)
			}
		}
	}
}

// TestAppendRowsArtist checks scalar layout, JSON list columns and
// reference child rows.
func TestAppendRowsArtist(t *testing.T) {
	a := &model.Artist{
		ID:             28,
		Name:           str("Coldcut"),
		URLs:           []string{"http://a", "http://b"},
		NameVariations: nil,
		Aliases:        []model.ArtistRef{{ID: 61407, Name: "Hex"}},
		Members:        []model.ArtistRef{{ID: 103, Name: "Jon"}, {ID: 104, Name: "Matt"}},
	}

	rows := make(map[string][][]any)
	AppendRows(rows, a)

	main := rows["artist"]
	if len(main) != 1 {
		t.Fatalf("artist rows = %d; want 1", len(main))
	}
	row := main[0]
	if row[0] != int64(28) {
		t.Fatalf("id = %v; want 28", row[0])
	}
	if row[5] != nil {
		t.Fatalf("name_variations = %v; want NULL for empty list", row[5])
	}
	if row[6] != `["http://a","http://b"]` {
		t.Fatalf("urls = %v; want JSON array", row[6])
	}

	wantAlias := [][]any{{int64(28), int64(61407), "Hex"}}
	if !reflect.DeepEqual(rows["artist_alias"], wantAlias) {
		t.Fatalf("artist_alias = %v; want %v", rows["artist_alias"], wantAlias)
	}
	if len(rows["artist_member"]) != 2 {
		t.Fatalf("artist_member rows = %d; want 2", len(rows["artist_member"]))
	}
	if len(rows["artist_group"]) != 0 {
		t.Fatalf("artist_group rows = %d; want 0", len(rows["artist_group"]))
	}
}

// TestAppendRowsLabelParent flattens the parent label reference onto the
// label row.
func TestAppendRowsLabelParent(t *testing.T) {
	l := &model.Label{
		ID:          1,
		Name:        str("Planet E"),
		ParentLabel: &model.LabelRef{ID: 1175, Name: "Planet E Communications"},
	}
	rows := make(map[string][][]any)
	AppendRows(rows, l)

	row := rows["label"][0]
	if row[5] != int64(1175) || row[6] != "Planet E Communications" {
		t.Fatalf("parent columns = %v, %v; want 1175, name", row[5], row[6])
	}

	bare := &model.Label{ID: 2}
	rows2 := make(map[string][][]any)
	AppendRows(rows2, bare)
	row2 := rows2["label"][0]
	if row2[5] != nil || row2[6] != nil {
		t.Fatalf("parent columns = %v, %v; want NULLs", row2[5], row2[6])
	}
}

/*
TestAppendRowsReleaseTracks verifies the track numbering scheme:

  - sequence runs over tracks and sub-tracks in document order,
  - sub-tracks carry their parent track's sequence,
  - per-track credits reference the owning sequence.
*/
func TestAppendRowsReleaseTracks(t *testing.T) {
	r := &model.Release{
		ID: 2,
		Tracklist: []model.Track{
			{Position: str("A1"), Title: str("One")},
			{
				Title:   str("Medley"),
				Artists: []model.CreditArtist{{ID: 7, Name: "G"}},
				SubTracks: []model.SubTrack{
					{Position: str("B1"), ExtraArtists: []model.ExtraArtist{{ID: 9, Name: "E", Role: str("Written-By")}}},
					{Position: str("B2")},
				},
			},
			{Position: str("C1")},
		},
	}

	rows := make(map[string][][]any)
	AppendRows(rows, r)

	tracks := rows["release_track"]
	if len(tracks) != 5 {
		t.Fatalf("release_track rows = %d; want 5", len(tracks))
	}
	type key struct {
		seq    int64
		parent any
	}
	var got []key
	for _, row := range tracks {
		got = append(got, key{row[1].(int64), row[2]})
	}
	want := []key{
		{1, nil},
		{2, nil},
		{3, int64(2)},
		{4, int64(2)},
		{5, nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequences = %v; want %v", got, want)
	}

	credits := rows["release_track_artist"]
	if len(credits) != 1 || credits[0][1] != int64(2) {
		t.Fatalf("release_track_artist = %v; want one row on sequence 2", credits)
	}
	extras := rows["release_track_extra_artist"]
	if len(extras) != 1 || extras[0][1] != int64(3) {
		t.Fatalf("release_track_extra_artist = %v; want one row on sequence 3", extras)
	}
}

// TestCreateTableSQL pins the rendered DDL for both dialects, including
// identifier quoting for keyword-colliding column names.
func TestCreateTableSQL(t *testing.T) {
	alias := artistTables[1]
	gotSQLite := CreateTableSQL(alias, SQLite)
	wantSQLite := `CREATE TABLE "artist_alias" ("artist_id" INTEGER NOT NULL, "alias_id" INTEGER NOT NULL, "name" TEXT NOT NULL)`
	if gotSQLite != wantSQLite {
		t.Fatalf("sqlite DDL = %s; want %s", gotSQLite, wantSQLite)
	}
	gotPG := CreateTableSQL(alias, Postgres)
	wantPG := `CREATE TABLE "artist_alias" ("artist_id" BIGINT NOT NULL, "alias_id" BIGINT NOT NULL, "name" TEXT NOT NULL)`
	if gotPG != wantPG {
		t.Fatalf("postgres DDL = %s; want %s", gotPG, wantPG)
	}

	var masterArtist Table
	for _, tbl := range masterTables {
		if tbl.Name == "masterrelease_artist" {
			masterArtist = tbl
		}
	}
	ddl := CreateTableSQL(masterArtist, Postgres)
	if !strings.Contains(ddl, `"join" TEXT`) {
		t.Fatalf("DDL does not quote the join column: %s", ddl)
	}

	// The parent key is deferred: the create statement itself only
	// carries NOT NULL, never an inline PRIMARY KEY.
	parent := artistTables[0]
	if got := CreateTableSQL(parent, SQLite); !strings.Contains(got, `"id" INTEGER NOT NULL`) || strings.Contains(got, "PRIMARY KEY") {
		t.Fatalf("parent DDL should defer the key: %s", got)
	}
}

// TestPrimaryKeySQL renders the deferred key build per dialect and
// stays empty for child tables.
func TestPrimaryKeySQL(t *testing.T) {
	parent := artistTables[0]
	if got, want := PrimaryKeySQL(parent, Postgres), `ALTER TABLE "artist" ADD PRIMARY KEY ("id")`; got != want {
		t.Fatalf("postgres key = %s; want %s", got, want)
	}
	if got, want := PrimaryKeySQL(parent, SQLite), `CREATE UNIQUE INDEX "uidx_artist_id" ON "artist" ("id")`; got != want {
		t.Fatalf("sqlite key = %s; want %s", got, want)
	}
	if got := PrimaryKeySQL(artistTables[1], SQLite); got != "" {
		t.Fatalf("child table got a key: %s", got)
	}
}

// TestInsertSQL pins placeholder inserts used by the batching writer.
func TestInsertSQL(t *testing.T) {
	var releaseLabel Table
	for _, tbl := range releaseTables {
		if tbl.Name == "release_label" {
			releaseLabel = tbl
		}
	}
	got := InsertSQL(releaseLabel)
	want := `INSERT INTO "release_label" ("release_id", "label_id", "catalog_number", "name") VALUES (?, ?, ?, ?)`
	if got != want {
		t.Fatalf("InsertSQL = %s; want %s", got, want)
	}
}

// TestIndices builds one fk index per child table and none for parents.
func TestIndices(t *testing.T) {
	indices := Indices(model.KindArtist)
	if len(indices) != len(artistTables)-1 {
		t.Fatalf("indices = %d; want %d", len(indices), len(artistTables)-1)
	}
	first := indices[0]
	if first.Name != "idx_artist_alias_artist_id" || first.Table != "artist_alias" {
		t.Fatalf("first index = %+v", first)
	}
	if got := CreateIndexSQL(first); got != `CREATE INDEX "idx_artist_alias_artist_id" ON "artist_alias" ("artist_id")` {
		t.Fatalf("CreateIndexSQL = %s", got)
	}
}

// TestDropTableSQL cascades only on Postgres.
func TestDropTableSQL(t *testing.T) {
	parent := releaseTables[0]
	if got := DropTableSQL(parent, SQLite); got != `DROP TABLE IF EXISTS "release"` {
		t.Fatalf("sqlite drop = %s", got)
	}
	if got := DropTableSQL(parent, Postgres); got != `DROP TABLE IF EXISTS "release" CASCADE` {
		t.Fatalf("postgres drop = %s", got)
	}
}
