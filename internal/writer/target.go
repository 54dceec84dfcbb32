package writer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/jmfontaine/dgkit/internal/dgerr"
)

// DefaultChunkSize is the buffered write size for file targets.
const DefaultChunkSize = 1 << 20

// Compression codecs for flat output.
const (
	CompressNone = ""
	CompressGzip = "gzip"
	CompressZstd = "zstd"
)

// NormalizeCompression canonicalizes a codec name. Short forms match
// the file extensions they produce.
func NormalizeCompression(name string) (string, error) {
	switch name {
	case "", "none":
		return CompressNone, nil
	case "gz", "gzip":
		return CompressGzip, nil
	case "zst", "zstd":
		return CompressZstd, nil
	}
	return "", dgerr.New(dgerr.Writer, "unknown compression %q (none, gzip, zstd)", name)
}

// CompressionExt returns the filename extension for a codec, empty for
// uncompressed output.
func CompressionExt(codec string) string {
	switch codec {
	case CompressGzip:
		return ".gz"
	case CompressZstd:
		return ".zst"
	}
	return ""
}

// EnsureTarget enforces the overwrite policy for a filesystem target:
// an existing path is a conflict unless overwrite is set, in which case
// it is removed so the backend can recreate it.
func EnsureTarget(path string, overwrite bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if !overwrite {
			return dgerr.New(dgerr.TargetConflict, "%s already exists (pass overwrite to replace it)", path)
		}
		if err := os.Remove(path); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "remove %s", path)
		}
	case !os.IsNotExist(err):
		return dgerr.Wrap(dgerr.Writer, err, "stat %s", path)
	}
	return nil
}

// target is a buffered, optionally compressed output file. Close
// drains the codec and the buffer before closing the file and is
// idempotent.
type target struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	codec  io.WriteCloser
	w      io.Writer
	closed bool
}

// openTarget creates the output file under the overwrite policy and
// stacks buffering plus the requested codec on top of it.
func openTarget(path string, cfg Config) (*target, error) {
	codec, err := NormalizeCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	if err := EnsureTarget(path, cfg.Overwrite); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dgerr.Wrap(dgerr.Writer, err, "create output directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, dgerr.Wrap(dgerr.Writer, err, "create %s", path)
	}

	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	t := &target{path: path, file: f, buf: bufio.NewWriterSize(f, chunk)}
	t.w = t.buf
	switch codec {
	case CompressGzip:
		gz := gzip.NewWriter(t.buf)
		t.codec, t.w = gz, gz
	case CompressZstd:
		enc, err := zstd.NewWriter(t.buf)
		if err != nil {
			f.Close()
			return nil, dgerr.Wrap(dgerr.Writer, err, "open zstd encoder for %s", path)
		}
		t.codec, t.w = enc, enc
	}
	return t, nil
}

func (t *target) Write(p []byte) (int, error) { return t.w.Write(p) }

func (t *target) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	var first error
	if t.codec != nil {
		if err := t.codec.Close(); err != nil {
			first = err
		}
	}
	if err := t.buf.Flush(); err != nil && first == nil {
		first = err
	}
	if err := t.file.Close(); err != nil && first == nil {
		first = err
	}
	return dgerr.Wrap(dgerr.Writer, first, "close %s", t.path)
}
