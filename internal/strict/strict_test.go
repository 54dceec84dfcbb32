package strict

import (
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func element(t *testing.T, doc, tag string) *xmlstream.Element {
	t.Helper()
	s := xmlstream.NewScanner(strings.NewReader(doc), xmlstream.ScanConfig{Tag: tag})
	e, err := s.Next(context.Background())
	if err != nil && err != io.EOF {
		t.Fatalf("scan: %v", err)
	}
	if e == nil {
		t.Fatalf("no %s element in %q", tag, doc)
	}
	return e
}

// TestScanPaths: unmapped tags, attributes and stray text produce the
// expected relative paths, sorted.
func TestScanPaths(t *testing.T) {
	t.Parallel()

	e := element(t, `<artist id="9"><id>1</id><extra>x</extra></artist>`, "artist")

	sc := NewScan(ModeWarn)
	sc.UnknownTag("", "extra")
	sc.UnknownAttrs("", e, "nothing")
	sc.UnknownTag("aliases", "weird")

	want := []string{"@id", "aliases/weird", "extra"}
	if got := sc.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}

	sc.Reset()
	if got := sc.Paths(); got != nil {
		t.Errorf("paths after reset = %v", got)
	}
}

// TestStrayText only fires on leaf elements with non-whitespace text.
func TestStrayText(t *testing.T) {
	t.Parallel()

	sc := NewScan(ModeWarn)

	leaf := element(t, `<note>something</note>`, "note")
	sc.StrayText("", leaf)
	if got := sc.Paths(); len(got) != 1 || got[0] != "#text" {
		t.Errorf("leaf paths = %v", got)
	}

	sc.Reset()
	branch := element(t, "<wrap>\n  <x/>\n</wrap>", "wrap")
	sc.StrayText("", branch)
	if got := sc.Paths(); got != nil {
		t.Errorf("whitespace-only parent flagged: %v", got)
	}
}

// TestNilScan: every probe on a nil scan is a no-op, which is how
// non-strict runs avoid the cost.
func TestNilScan(t *testing.T) {
	t.Parallel()

	sc := NewScan(ModeOff)
	if sc != nil {
		t.Fatal("ModeOff should yield a nil scan")
	}
	e := element(t, `<artist id="1"/>`, "artist")
	sc.UnknownTag("", "x")
	sc.UnknownAttrs("", e)
	sc.StrayText("", e)
	if got := sc.Paths(); got != nil {
		t.Errorf("nil scan produced paths: %v", got)
	}
}

// TestCollectorDedup: repeated findings aggregate into one entry carrying
// the first offending id and a count, while the total keeps counting.
func TestCollectorDedup(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Record("artist", 1, []string{"extra"})
	c.Record("artist", 2, []string{"extra"})
	c.Record("artist", 3, []string{"extra", "@id"})
	c.Record("label", 4, []string{"extra"})

	if got := c.Total(); got != 5 {
		t.Errorf("total = %d, want 5", got)
	}
	entries := c.Entries()
	if len(entries) != 3 {
		t.Fatalf("unique entries = %d, want 3", len(entries))
	}
	first := entries[0]
	if first.Entity != "artist" || first.Path != "extra" || first.FirstID != 1 || first.Count != 3 {
		t.Errorf("first entry = %+v", first)
	}

	warnings := c.Warnings()
	if len(warnings) != 3 {
		t.Fatalf("warnings = %v", warnings)
	}
	if !strings.Contains(warnings[0], "artist id=1") || !strings.Contains(warnings[0], "seen 3 times") {
		t.Errorf("warning rendering = %q", warnings[0])
	}
}
