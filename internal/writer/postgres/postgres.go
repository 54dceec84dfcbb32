// Package postgres loads records into PostgreSQL with pgx v5. Rows are
// buffered per table and shipped in COPY batches to keep round-trips
// off the hot path; indices are created only after a clean finish.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/metrics"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/schema"
	"github.com/jmfontaine/dgkit/internal/writer"
)

func init() {
	writer.Register("postgres", func(ctx context.Context, cfg writer.Config) (writer.Writer, error) {
		return Open(ctx, cfg)
	})
	writer.RegisterAggregate("postgres")
}

// Writer streams decomposed records into a PostgreSQL database. One
// Writer accepts every entity kind; tables for a kind are dropped and
// recreated when its first record arrives.
type Writer struct {
	pool      *pgxpool.Pool
	batchSize int

	tables  map[string]schema.Table
	buffers map[string][][]any
	order   []string
	kinds   []model.Kind
	closed  bool
}

// Open connects to the database named by cfg.Target, which must be a
// pgx-compatible DSN (postgres:// URL or key=value form).
func Open(ctx context.Context, cfg writer.Config) (*Writer, error) {
	pool, err := pgxpool.New(ctx, cfg.Target)
	if err != nil {
		return nil, dgerr.Wrap(dgerr.Writer, err, "connect to postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, dgerr.Wrap(dgerr.Writer, err, "ping postgres")
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = writer.DefaultBatchSize
	}
	return &Writer{
		pool:      pool,
		batchSize: batch,
		tables:    make(map[string]schema.Table),
		buffers:   make(map[string][][]any),
	}, nil
}

// ensureKind replaces the kind's tables on its first record. CASCADE
// clears dependent objects left over from previous loads.
func (w *Writer) ensureKind(ctx context.Context, kind model.Kind) error {
	for _, k := range w.kinds {
		if k == kind {
			return nil
		}
	}
	for _, t := range schema.Tables(kind) {
		if _, err := w.pool.Exec(ctx, schema.DropTableSQL(t, schema.Postgres)); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "drop table %s", t.Name)
		}
		if _, err := w.pool.Exec(ctx, schema.CreateTableSQL(t, schema.Postgres)); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "create table %s", t.Name)
		}
		w.tables[t.Name] = t
		w.order = append(w.order, t.Name)
	}
	w.kinds = append(w.kinds, kind)
	return nil
}

func (w *Writer) Write(ctx context.Context, rec model.Record) error {
	if err := w.ensureKind(ctx, rec.Kind()); err != nil {
		return err
	}
	schema.AppendRows(w.buffers, rec)
	for _, name := range w.order {
		if len(w.buffers[name]) >= w.batchSize {
			if err := w.flushTable(ctx, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) flushTable(ctx context.Context, name string) error {
	rows := w.buffers[name]
	if len(rows) == 0 {
		return nil
	}
	t := w.tables[name]
	_, err := w.pool.CopyFrom(ctx, pgx.Identifier{name}, t.ColumnNames(), pgx.CopyFromRows(rows))
	if err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "copy into %s", name)
	}
	metrics.RecordBatch("postgres", name, len(rows))
	w.buffers[name] = rows[:0]
	return nil
}

func (w *Writer) flushAll(ctx context.Context) error {
	for _, name := range w.order {
		if err := w.flushTable(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Finish flushes pending rows, adds the primary keys, builds the
// deferred indices and refreshes planner statistics per table.
func (w *Writer) Finish(ctx context.Context) error {
	if err := w.flushAll(ctx); err != nil {
		return err
	}
	for _, kind := range w.kinds {
		for _, t := range schema.Tables(kind) {
			if key := schema.PrimaryKeySQL(t, schema.Postgres); key != "" {
				if _, err := w.pool.Exec(ctx, key); err != nil {
					return dgerr.Wrap(dgerr.Writer, err, "add primary key to %s", t.Name)
				}
			}
		}
		for _, idx := range schema.Indices(kind) {
			if _, err := w.pool.Exec(ctx, schema.CreateIndexSQL(idx)); err != nil {
				return dgerr.Wrap(dgerr.Writer, err, "create index %s", idx.Name)
			}
		}
	}
	for _, name := range w.order {
		if _, err := w.pool.Exec(ctx, `ANALYZE "`+name+`"`); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "analyze %s", name)
		}
	}
	return nil
}

// Close releases the pool. Rows still buffered are discarded: without
// a Finish only already-flushed batches survive, and the tables carry
// no keys or indices.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pool.Close()
	return nil
}
