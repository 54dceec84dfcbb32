package writer

import (
	"context"
	"io"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/model"
)

func init() {
	Register("jsonl", func(_ context.Context, cfg Config) (Writer, error) {
		t, err := openTarget(cfg.Target, cfg)
		if err != nil {
			return nil, err
		}
		return &jsonlWriter{t: t, enc: json.NewEncoder(t)}, nil
	})
	Register("json", func(_ context.Context, cfg Config) (Writer, error) {
		t, err := openTarget(cfg.Target, cfg)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(t, "[\n"); err != nil {
			t.Close()
			return nil, dgerr.Wrap(dgerr.Writer, err, "write %s", cfg.Target)
		}
		return &jsonWriter{t: t}, nil
	})
	Register("console", func(context.Context, Config) (Writer, error) {
		return &consoleWriter{out: os.Stdout}, nil
	})
	RegisterAggregate("console")
	Register("blackhole", func(context.Context, Config) (Writer, error) {
		return blackholeWriter{}, nil
	})
	RegisterAggregate("blackhole")
}

// jsonlWriter emits one JSON document per record, newline-terminated.
type jsonlWriter struct {
	t   *target
	enc *json.Encoder
}

func (w *jsonlWriter) Write(_ context.Context, rec model.Record) error {
	return dgerr.Wrap(dgerr.Writer, w.enc.Encode(rec), "write %s", w.t.path)
}

func (w *jsonlWriter) Finish(context.Context) error { return w.t.Close() }

func (w *jsonlWriter) Close() error { return w.t.Close() }

// jsonWriter emits one JSON array spanning the whole input. Records
// stream out as they arrive; the closing bracket lands only in Finish,
// so an aborted run leaves a readable prefix with no terminator.
type jsonWriter struct {
	t       *target
	started bool
}

func (w *jsonWriter) Write(_ context.Context, rec model.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "encode record")
	}
	if w.started {
		b = append([]byte(",\n"), b...)
	}
	w.started = true
	_, err = w.t.Write(b)
	return dgerr.Wrap(dgerr.Writer, err, "write %s", w.t.path)
}

func (w *jsonWriter) Finish(context.Context) error {
	if _, err := io.WriteString(w.t, "\n]\n"); err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "write %s", w.t.path)
	}
	return w.t.Close()
}

func (w *jsonWriter) Close() error { return w.t.Close() }

// consoleWriter renders records to stdout, one JSON document per line.
// One instance serves every input file, so writes serialize.
type consoleWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *consoleWriter) Write(_ context.Context, rec model.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "encode record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.out.Write(append(b, '\n'))
	return dgerr.Wrap(dgerr.Writer, err, "write stdout")
}

func (w *consoleWriter) Finish(context.Context) error { return nil }

func (w *consoleWriter) Close() error { return nil }

// blackholeWriter discards records. Useful for measuring parse and
// filter throughput without output cost.
type blackholeWriter struct{}

func (blackholeWriter) Write(context.Context, model.Record) error { return nil }

func (blackholeWriter) Finish(context.Context) error { return nil }

func (blackholeWriter) Close() error { return nil }
