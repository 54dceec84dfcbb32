package sampler

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/source"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// scanIDs reopens a sample and collects the id children of its entity
// elements, proving the output is itself a readable dump.
func scanIDs(t *testing.T, path, tag string) []string {
	t.Helper()
	src, err := source.Open(path, source.Options{})
	if err != nil {
		t.Fatalf("reopen sample: %v", err)
	}
	defer src.Close()
	sc := xmlstream.NewScanner(src, xmlstream.ScanConfig{Tag: tag})
	var ids []string
	for {
		e, err := sc.Next(context.Background())
		if err == io.EOF {
			return ids
		}
		if err != nil {
			t.Fatalf("scan sample: %v", err)
		}
		if id := e.ChildText("id"); id != nil {
			ids = append(ids, *id)
		}
		xmlstream.Release(e)
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"dumps/discogs_20250101_artists.xml.gz", "dumps/discogs_20250101_artists_sample_100.xml.gz"},
		{"discogs_20250101_labels.xml", "discogs_20250101_labels_sample_100.xml"},
	}
	for _, tc := range cases {
		if got := OutputPath(tc.in, 100); got != filepath.FromSlash(tc.want) {
			t.Errorf("OutputPath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

/*
TestExtract samples two artists out of three and verifies:

  - the output is gzip and scans as a dump of the same kind,
  - elements keep their content and order,
  - escaping survives the XML round trip.
*/
func TestExtract(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "discogs_20250101_artists.xml.gz")
	writeGzip(t, in, `<?xml version="1.0" encoding="UTF-8"?>
<artists>
  <artist><id>1</id><name>Persuader, The</name></artist>
  <artist><id>2</id><name>Mr. James Barth &amp; A.D.</name></artist>
  <artist><id>3</id><name>Josh Wink</name></artist>
</artists>`)

	out := OutputPath(in, 2)
	n, err := Extract(context.Background(), in, out, 2, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n != 2 {
		t.Fatalf("extracted %d elements; want 2", n)
	}

	ids := scanIDs(t, out, "artist")
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("sample ids = %v; want [1 2]", ids)
	}

	src, err := source.Open(out, source.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !bytes.Contains(raw, []byte("Mr. James Barth &amp; A.D.")) {
		t.Fatalf("escaping lost in sample: %s", raw)
	}
}

// TestExtractShortSource stops at the end of a source shorter than the
// requested size, without error.
func TestExtractShortSource(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "discogs_20250101_labels.xml.gz")
	writeGzip(t, in, `<labels><label id="7">Svek</label></labels>`)

	out := filepath.Join(dir, "sample.xml.gz")
	n, err := Extract(context.Background(), in, out, 10, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n != 1 {
		t.Fatalf("extracted %d elements; want 1", n)
	}
}

// TestExtractSublabelBoundary keeps nested sublabels inside their
// parent element instead of counting them as samples.
func TestExtractSublabelBoundary(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "discogs_20250101_labels.xml.gz")
	writeGzip(t, in, `<labels>
		<label id="1"><name>Planet E</name><sublabels><label id="2">Antidote</label></sublabels></label>
		<label id="3"><name>Warp</name></label>
	</labels>`)

	out := filepath.Join(dir, "sample.xml.gz")
	n, err := Extract(context.Background(), in, out, 2, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n != 2 {
		t.Fatalf("extracted %d elements; want 2", n)
	}

	src, _ := source.Open(out, source.Options{})
	defer src.Close()
	raw, _ := io.ReadAll(src)
	if !bytes.Contains(raw, []byte(`id="3"`)) {
		t.Fatalf("second top-level label missing: %s", raw)
	}
	if bytes.Count(raw, []byte(`id="2"`)) != 1 {
		t.Fatalf("sublabel duplicated or lost: %s", raw)
	}
}

// TestExtractTargetConflict refuses to clobber an existing sample.
func TestExtractTargetConflict(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "discogs_20250101_artists.xml.gz")
	writeGzip(t, in, `<artists><artist><id>1</id></artist></artists>`)
	out := filepath.Join(dir, "taken.xml.gz")
	if err := os.WriteFile(out, []byte("taken"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := Extract(context.Background(), in, out, 1, Options{}); !dgerr.IsKind(err, dgerr.TargetConflict) {
		t.Fatalf("got %v; want target conflict", err)
	}
	if _, err := Extract(context.Background(), in, out, 1, Options{Overwrite: true}); err != nil {
		t.Fatalf("Extract with overwrite: %v", err)
	}
}

// TestExtractBadSize rejects non-positive sample sizes up front.
func TestExtractBadSize(t *testing.T) {
	if _, err := Extract(context.Background(), "in.xml.gz", "out.xml.gz", 0, Options{}); err == nil {
		t.Fatal("Extract accepted n=0")
	}
}
