// Package sampler extracts the first elements of a dump into a small,
// valid dump of the same shape. Full dumps are too big to commit or to
// iterate against; a sample keeps the exact element structure of the
// source, so anything that works on the sample works on the dump.
package sampler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/source"
	"github.com/jmfontaine/dgkit/internal/writer"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

// Options configure Extract.
type Options struct {
	// Kind overrides filename-based entity detection.
	Kind string
	// Overwrite replaces an existing output file.
	Overwrite bool
	// ChunkSize is the buffered read size on the input.
	ChunkSize int
}

// OutputPath derives the conventional sample name next to the input:
// discogs_20250101_artists.xml.gz sampled at 100 becomes
// discogs_20250101_artists_sample_100.xml.gz.
func OutputPath(inPath string, n int) string {
	name := filepath.Base(inPath)
	gz := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".xml")
	name = fmt.Sprintf("%s_sample_%d.xml", name, n)
	if gz {
		name += ".gz"
	}
	return filepath.Join(filepath.Dir(inPath), name)
}

// Extract streams the first n entity elements of inPath into a fresh
// dump at outPath: declaration, root container, the elements verbatim.
// Output ending in .gz is recompressed. A source shorter than n is not
// an error; the returned count says how many elements were written.
func Extract(ctx context.Context, inPath, outPath string, n int, opts Options) (int, error) {
	if n <= 0 {
		return 0, dgerr.New(dgerr.Source, "sample size must be > 0, got %d", n)
	}
	kind, err := detectKind(inPath, opts.Kind)
	if err != nil {
		return 0, err
	}

	src, err := source.Open(inPath, source.Options{ChunkSize: opts.ChunkSize})
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if err := writer.EnsureTarget(outPath, opts.Overwrite); err != nil {
		return 0, err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, dgerr.Wrap(dgerr.Writer, err, "create %s", outPath)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	var out io.Writer = buf
	var gz *gzip.Writer
	if strings.HasSuffix(outPath, ".gz") {
		gz = gzip.NewWriter(buf)
		out = gz
	}

	count, err := copyElements(ctx, src, out, kind, n)
	if err != nil {
		return count, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return count, dgerr.Wrap(dgerr.Writer, err, "compress %s", outPath)
		}
	}
	if err := buf.Flush(); err != nil {
		return count, dgerr.Wrap(dgerr.Writer, err, "write %s", outPath)
	}
	if err := f.Close(); err != nil {
		return count, dgerr.Wrap(dgerr.Writer, err, "close %s", outPath)
	}
	return count, nil
}

func detectKind(path, override string) (model.Kind, error) {
	if override != "" {
		k, err := model.ParseKind(override)
		if err != nil {
			return 0, dgerr.Wrap(dgerr.Source, err, "entity kind override")
		}
		return k, nil
	}
	k, err := model.KindFromPath(path)
	if err != nil {
		return 0, dgerr.Wrap(dgerr.Source, err, "detect entity kind")
	}
	return k, nil
}

// copyElements scans up to n entity elements and re-renders them inside
// a fresh root container. Subtrees recycle as soon as they are written.
func copyElements(ctx context.Context, src *source.Source, out io.Writer, kind model.Kind, n int) (int, error) {
	cfg := xmlstream.ScanConfig{Tag: kind.ElementTag()}
	if container, nested := kind.NestedContainer(); nested {
		cfg.Container = container
	}
	sc := xmlstream.NewScanner(src, cfg)

	root := kind.ContainerTag()
	if _, err := fmt.Fprintf(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<%s>", root); err != nil {
		return 0, dgerr.Wrap(dgerr.Writer, err, "write sample header")
	}
	count := 0
	for count < n {
		elem, err := sc.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		werr := elem.WriteTo(out)
		xmlstream.Release(elem)
		if werr != nil {
			return count, dgerr.Wrap(dgerr.Writer, werr, "write sample element")
		}
		count++
	}
	if _, err := fmt.Fprintf(out, "</%s>\n", root); err != nil {
		return count, dgerr.Wrap(dgerr.Writer, err, "write sample footer")
	}
	return count, nil
}
