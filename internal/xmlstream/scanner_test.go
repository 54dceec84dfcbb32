package xmlstream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jmfontaine/dgkit/internal/dgerr"
)

func scanAll(t *testing.T, doc string, cfg ScanConfig) []*Element {
	t.Helper()
	s := NewScanner(strings.NewReader(doc), cfg)
	var out []*Element
	for {
		e, err := s.Next(context.Background())
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, e)
	}
}

// TestScanTopLevel yields each matching top-level element with its
// attributes, children and text intact.
func TestScanTopLevel(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<artists>
  <artist><id>1</id><name>Persuader, The</name></artist>
  <artist><id>2</id><name>Mr. James Barth &amp; A.D.</name></artist>
</artists>`

	elems := scanAll(t, doc, ScanConfig{Tag: "artist"})
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}
	if got := elems[0].ChildText("id"); got == nil || *got != "1" {
		t.Errorf("first id = %v", got)
	}
	if got := elems[1].ChildText("name"); got == nil || *got != "Mr. James Barth & A.D." {
		t.Errorf("second name = %v", got)
	}
}

// TestLabelNesting: with a container check configured, a <label> nested
// inside <sublabels> is never yielded as a top-level element, wherever the
// sublabels container sits.
func TestLabelNesting(t *testing.T) {
	t.Parallel()

	doc := `<labels>
  <label id="1"><name>Planet E</name>
    <sublabels><label id="2">Antidote</label></sublabels>
  </label>
  <sublabels><label id="9">Stray</label></sublabels>
  <label id="3"><name>Warp</name></label>
</labels>`

	elems := scanAll(t, doc, ScanConfig{Tag: "label", Container: "labels"})
	if len(elems) != 2 {
		t.Fatalf("got %d labels, want 2", len(elems))
	}
	id0, _ := elems[0].Attr("id")
	id1, _ := elems[1].Attr("id")
	if id0 != "1" || id1 != "3" {
		t.Errorf("yielded ids %s, %s; want 1, 3", id0, id1)
	}
	// The nested label stays part of its parent's subtree.
	sub := elems[0].Child("sublabels")
	if sub == nil || sub.Child("label") == nil {
		t.Error("nested sublabel missing from parent subtree")
	}
}

// TestNoContainerCheck: without a configured container every occurrence of
// the tag is yielded.
func TestNoContainerCheck(t *testing.T) {
	t.Parallel()

	doc := `<labels><wrapper><label id="7">X</label></wrapper></labels>`
	elems := scanAll(t, doc, ScanConfig{Tag: "label"})
	if len(elems) != 1 {
		t.Fatalf("got %d labels, want 1", len(elems))
	}
}

// TestTruncatedDocument: end of input inside an open element is a parse
// error, after earlier elements were already yielded.
func TestTruncatedDocument(t *testing.T) {
	t.Parallel()

	doc := `<artists><artist><id>1</id></artist><artist><id>2`
	s := NewScanner(strings.NewReader(doc), ScanConfig{Tag: "artist"})

	first, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("first element: %v", err)
	}
	if got := first.ChildText("id"); got == nil || *got != "1" {
		t.Errorf("first id = %v", got)
	}
	Release(first)

	_, err = s.Next(context.Background())
	if err == nil || err == io.EOF {
		t.Fatalf("want parse error, got %v", err)
	}
	if !dgerr.IsKind(err, dgerr.Parse) {
		t.Errorf("error kind = %v, want Parse", dgerr.KindOf(err))
	}
}

type failingReader struct {
	data string
	err  error
	off  int
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.off >= len(f.data) {
		return 0, f.err
	}
	n := copy(p, f.data[f.off:])
	f.off += n
	return n, nil
}

// TestReaderErrorKeepsClassification: an error already classified by the
// reader layer passes through the scanner untouched.
func TestReaderErrorKeepsClassification(t *testing.T) {
	t.Parallel()

	srcErr := dgerr.Wrap(dgerr.Source, errors.New("bad gzip checksum"), "decompress")
	r := &failingReader{data: `<artists><artist><id>1</id></artist>`, err: srcErr}
	s := NewScanner(r, ScanConfig{Tag: "artist"})

	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("first element: %v", err)
	}
	_, err := s.Next(context.Background())
	if !dgerr.IsKind(err, dgerr.Source) {
		t.Errorf("error kind = %v, want Source", dgerr.KindOf(err))
	}
}

// TestCancellation: a canceled context stops the scan.
func TestCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScanner(strings.NewReader("<a><b/></a>"), ScanConfig{Tag: "b"})
	if _, err := s.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestReleaseRecycling: scanning after releasing previous subtrees keeps
// yielding correct values from recycled nodes.
func TestReleaseRecycling(t *testing.T) {
	t.Parallel()

	doc := `<artists>` +
		`<artist><id>1</id><name>A</name></artist>` +
		`<artist><id>2</id><name>B</name></artist>` +
		`<artist><id>3</id><name>C</name></artist>` +
		`</artists>`
	s := NewScanner(strings.NewReader(doc), ScanConfig{Tag: "artist"})

	want := []string{"1", "2", "3"}
	for i := 0; ; i++ {
		e, err := s.Next(context.Background())
		if err == io.EOF {
			if i != len(want) {
				t.Fatalf("yielded %d elements, want %d", i, len(want))
			}
			return
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got := e.ChildText("id"); got == nil || *got != want[i] {
			t.Fatalf("element %d id = %v, want %s", i, got, want[i])
		}
		Release(e)
	}
}

// TestWriteTo renders a subtree back to XML with escaping, using
// self-closing form for empty elements.
func TestWriteTo(t *testing.T) {
	t.Parallel()

	doc := `<labels><label id="1"><name>R &amp; S</name><flag/></label></labels>`
	elems := scanAll(t, doc, ScanConfig{Tag: "label", Container: "labels"})
	if len(elems) != 1 {
		t.Fatalf("got %d labels", len(elems))
	}

	var b strings.Builder
	if err := elems[0].WriteTo(&b); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	want := `<label id="1"><name>R &amp; S</name><flag/></label>`
	if b.String() != want {
		t.Errorf("rendered %q, want %q", b.String(), want)
	}
}
