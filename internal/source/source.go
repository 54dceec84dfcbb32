// Package source opens dump files for forward streaming reads. Dumps
// arrive gzip-compressed; a plain .xml path passes through, which keeps
// small fixtures convenient. The compressed offset is tracked so
// callers can report progress against the on-disk size.
package source

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"

	"github.com/jmfontaine/dgkit/internal/dgerr"
)

// DefaultChunkSize is the read buffer size in front of the decoder.
const DefaultChunkSize = 1 << 20

// Options configure Open.
type Options struct {
	// ChunkSize is the buffered read size. Zero means DefaultChunkSize.
	ChunkSize int
}

// Source streams decompressed bytes from one dump file.
type Source struct {
	file    *os.File
	path    string
	size    int64
	counter *countingReader
	r       io.Reader
	gz      *gzip.Reader
	closed  bool
}

// Open opens path for sequential reading. Paths ending in .gz are
// decompressed transparently; anything else is read as-is.
func Open(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dgerr.Wrap(dgerr.Source, err, "open %s", path)
	}
	advise(f)

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	s := &Source{file: f, path: path, size: size, counter: &countingReader{r: f}}
	buffered := bufio.NewReaderSize(s.counter, chunk)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			f.Close()
			return nil, dgerr.Wrap(dgerr.Source, err, "read gzip header of %s", path)
		}
		s.gz = gz
		s.r = gz
	} else {
		s.r = buffered
	}
	return s, nil
}

// Read returns decompressed bytes. Corruption deep in the stream shows
// up here, on the read that reaches it, not at Open.
func (s *Source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, dgerr.Wrap(dgerr.Source, err, "read %s", s.path)
	}
	return n, err
}

// BytesRead reports compressed bytes consumed so far. The buffered
// layer reads ahead, so the count can run slightly past the decoder's
// logical position.
func (s *Source) BytesRead() int64 { return s.counter.n.Load() }

// Size is the on-disk size of the file, the denominator for progress.
func (s *Source) Size() int64 { return s.size }

// Path returns the path the source was opened with.
func (s *Source) Path() string { return s.path }

// Close releases the decoder and the file. It is safe to call twice.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.gz != nil {
		err = s.gz.Close()
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}
