package writer

import (
	"path/filepath"
	"strings"

	"github.com/jmfontaine/dgkit/internal/dgerr"
)

// stem strips the dump extensions from an input filename.
func stem(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, ".xml")
}

// BuildOutputPath names a flat output file after its input:
// discogs_20250101_artists.xml.gz converted to jsonl with gzip lands
// at <outputDir>/discogs_20250101_artists.jsonl.gz.
func BuildOutputPath(inputPath, format, outputDir, compression string) string {
	return filepath.Join(outputDir, stem(inputPath)+"."+format+CompressionExt(compression))
}

// BuildDatabasePath names an embedded database file after the first
// input, next to the other outputs.
func BuildDatabasePath(paths []string, outputDir string) (string, error) {
	if len(paths) == 0 {
		return "", dgerr.New(dgerr.Writer, "no input files")
	}
	return filepath.Join(outputDir, stem(paths[0])+".db"), nil
}
