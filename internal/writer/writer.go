// Package writer defines the output contract and the writer factory.
//
// Writers consume filtered records and persist them: flat writers
// serialize each record as a self-contained JSON document, relational
// writers decompose records into normalized tables with batched
// inserts. Backends register themselves with the factory in init;
// importing writer/all (blank import) enables every built-in backend.
package writer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/model"
)

// Writer persists records of one entity kind to one target.
//
// Write may buffer. Finish runs the success-only finalization (final
// flush, deferred indices, statistics refresh, closing delimiters) and
// must only be called when the whole input was consumed without error.
// Close always runs and is idempotent; Close without a prior Finish
// leaves the defined partial state: flushed data persists, indices and
// constraints do not.
type Writer interface {
	Write(ctx context.Context, rec model.Record) error
	Finish(ctx context.Context) error
	Close() error
}

// Config carries everything a backend needs to open a target. Writers
// are kind-agnostic: flat writers serialize whatever record arrives,
// relational writers create each kind's tables when its first record
// shows up, so one open target can absorb inputs of mixed kinds.
type Config struct {
	// Target is a file path or DSN, interpreted by the backend.
	Target string
	// BatchSize is the relational flush threshold in rows.
	BatchSize int
	// ChunkSize is the buffered write size for file targets.
	ChunkSize int
	// Overwrite replaces an existing target instead of refusing.
	Overwrite bool
	// Compression names the flat-output codec: "", "gzip" or "zstd".
	Compression string
}

// DefaultBatchSize is the relational flush threshold when the config
// leaves BatchSize unset. Measured against real dumps: larger batches
// stop paying off around here while memory cost keeps growing.
const DefaultBatchSize = 10000

// Factory opens a writer against cfg.Target.
type Factory func(ctx context.Context, cfg Config) (Writer, error)

var (
	mu         sync.RWMutex
	factories  = map[string]Factory{}
	aggregates = map[string]bool{}
)

// Register makes a backend available under a format name. Backends
// call it from init.
func Register(format string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[format] = fn
}

// RegisterAggregate marks a format as sharing one open writer across
// every input file instead of opening one target per file (console,
// blackhole, relational stores).
func RegisterAggregate(format string) {
	mu.Lock()
	defer mu.Unlock()
	aggregates[format] = true
}

// Aggregates reports whether a format shares one writer across inputs.
func Aggregates(format string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return aggregates[format]
}

// New opens a writer for the given format name.
func New(ctx context.Context, format string, cfg Config) (Writer, error) {
	mu.RLock()
	fn, ok := factories[format]
	mu.RUnlock()
	if !ok {
		return nil, dgerr.New(dgerr.Writer, "unknown output format %q (registered: %s)",
			format, strings.Join(Formats(), ", "))
	}
	return fn(ctx, cfg)
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
