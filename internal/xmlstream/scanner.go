package xmlstream

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/jmfontaine/dgkit/internal/dgerr"
)

// ScanConfig selects which elements a Scanner yields.
type ScanConfig struct {
	// Tag is the element tag to yield (e.g. "artist").
	Tag string
	// Container, when set, restricts candidates to elements directly
	// enclosed by a container with this tag. Labels need this: a <label>
	// inside <sublabels> is part of its parent record, not a record of
	// its own. Leave empty to accept every occurrence of Tag.
	Container string
}

// Scanner walks an XML token stream and yields one entity subtree per
// Next call. It is not safe for concurrent use.
type Scanner struct {
	dec   *xml.Decoder
	cfg   ScanConfig
	stack []string // open elements outside the current capture
}

// NewScanner returns a Scanner reading from r. The decoder runs in
// non-strict mode and decodes legacy charsets via the HTML index, since
// older dumps are not always clean UTF-8.
func NewScanner(r io.Reader, cfg ScanConfig) *Scanner {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("xmlstream: charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return &Scanner{dec: dec, cfg: cfg}
}

// Next advances to the next matching top-level element and returns its
// subtree. It returns io.EOF at the end of the document. The returned
// element is valid until passed to Release.
func (s *Scanner) Next(ctx context.Context) (*Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, s.classify(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == s.cfg.Tag && s.accepts() {
				return s.capture(t)
			}
			s.stack = append(s.stack, t.Name.Local)
		case xml.EndElement:
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
		}
	}
}

// accepts is the nesting-disambiguation predicate: without a configured
// container every candidate passes; with one, the immediately enclosing
// open element must be that container.
func (s *Scanner) accepts() bool {
	if s.cfg.Container == "" {
		return true
	}
	if len(s.stack) == 0 {
		return false
	}
	return s.stack[len(s.stack)-1] == s.cfg.Container
}

// capture consumes tokens until the start element closes, building the
// subtree from pooled nodes.
func (s *Scanner) capture(start xml.StartElement) (*Element, error) {
	root := newNode(start)
	open := []*Element{root}
	for len(open) > 0 {
		tok, err := s.dec.Token()
		if err != nil {
			Release(root)
			if err == io.EOF {
				return nil, dgerr.New(dgerr.Parse, "unexpected end of document inside <%s>", start.Name.Local)
			}
			return nil, s.classify(err)
		}
		cur := open[len(open)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			child := newNode(t)
			cur.Children = append(cur.Children, child)
			open = append(open, child)
		case xml.CharData:
			// The decoder reuses the CharData buffer, so copy.
			cur.Text += string(t)
		case xml.EndElement:
			open = open[:len(open)-1]
		}
	}
	return root, nil
}

func newNode(start xml.StartElement) *Element {
	e := getElement()
	e.Name = start.Name.Local
	for _, a := range start.Attr {
		e.Attrs = append(e.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}
	return e
}

// classify maps decoder failures onto the error taxonomy: syntax errors
// are parse errors, reader failures keep their source classification, and
// io.EOF passes through untouched as the end-of-stream sentinel.
func (s *Scanner) classify(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return dgerr.Wrap(dgerr.Parse, err, "malformed xml near byte %d", s.dec.InputOffset())
	}
	var de *dgerr.Error
	if errors.As(err, &de) {
		return err
	}
	return dgerr.Wrap(dgerr.Source, err, "read input")
}

// InputOffset reports the decoder's byte offset in the decompressed
// stream.
func (s *Scanner) InputOffset() int64 { return s.dec.InputOffset() }
