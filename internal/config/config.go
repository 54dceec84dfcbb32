// Package config carries the run configuration and a static linter
// over it. A Config is built once, validated, then treated as
// read-only for the rest of the run.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/jmfontaine/dgkit/internal/source"
	"github.com/jmfontaine/dgkit/internal/writer"
)

// Config holds everything a convert or load run needs. Fields tagged
// with env can be overridden from the environment via ApplyEnv; the
// CLI calls that after flag parsing, the library never does.
type Config struct {
	// Kind overrides filename-based entity detection. Empty means
	// detect per file.
	Kind string

	// Format names a registered output format (jsonl, json, console,
	// blackhole, sqlite, postgres).
	Format string

	// DSN is the database target for load runs. Empty derives
	// <first-input-stem>.db next to the inputs.
	DSN string

	// OutputDir receives per-file flat outputs.
	OutputDir string

	// Compression names the flat-output codec: none, gzip or zstd.
	Compression string

	// DropIf holds drop expressions, first match wins.
	DropIf []string

	// Unset holds field names to redact after the drop rules ran.
	Unset []string

	// Strict tracks unvisited source content per element.
	Strict bool

	// FailOnUnhandled aborts on the first parse error or strict
	// finding instead of recording a warning.
	FailOnUnhandled bool

	// Limit caps parsed elements per file. Zero means no cap.
	Limit int

	// BatchSize is the row-buffer flush threshold of database writers.
	BatchSize int `env:"DGKIT_BATCH_SIZE"`

	// ChunkSize is the buffered read/write size in bytes.
	ChunkSize int `env:"DGKIT_CHUNK_SIZE"`

	// Workers is the number of parallel files during convert. Load is
	// always sequential.
	Workers int `env:"DGKIT_WORKERS"`

	// Overwrite replaces existing output files instead of refusing.
	Overwrite bool
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		OutputDir: ".",
		BatchSize: writer.DefaultBatchSize,
		ChunkSize: source.DefaultChunkSize,
		Workers:   1,
	}
}

// ApplyEnv overlays DGKIT_* environment variables onto c. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	return nil
}
