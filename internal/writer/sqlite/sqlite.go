// Package sqlite loads records into a single-file SQLite database
// through database/sql and modernc.org/sqlite. Registration happens in
// init; importing writer/all enables the backend.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/metrics"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/schema"
	"github.com/jmfontaine/dgkit/internal/writer"
)

func init() {
	writer.Register("sqlite", func(ctx context.Context, cfg writer.Config) (writer.Writer, error) {
		return Open(ctx, cfg)
	})
	writer.RegisterAggregate("sqlite")
}

// ParseDSN extracts the database path from a sqlite DSN. Accepted
// forms:
//
//	sqlite:///./relative.db -> ./relative.db
//	sqlite:////abs/path.db  -> /abs/path.db
//	sqlite:///:memory:      -> :memory:
//	plain/path.db           -> plain/path.db
func ParseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok {
		if i := strings.Index(dsn, "://"); i >= 0 {
			return "", dgerr.New(dgerr.Writer, "unsupported scheme %q (want sqlite:// or a plain path)", dsn[:i])
		}
		return dsn, nil
	}
	if rest == "/:memory:" || rest == ":memory:" {
		return ":memory:", nil
	}
	return strings.TrimPrefix(rest, "/"), nil
}

// Writer batches records into a SQLite database. A kind's tables are
// dropped and recreated when its first record arrives; buffered rows
// flush per table in one transaction once the batch size is reached.
type Writer struct {
	db        *sql.DB
	path      string
	batchSize int
	tables    map[string]schema.Table
	buffers   map[string][][]any
	order     []string
	kinds     []model.Kind
	closed    bool
}

// Open connects to the target database and applies the bulk-load
// PRAGMAs. An existing database file is a conflict unless overwrite is
// set.
func Open(ctx context.Context, cfg writer.Config) (*Writer, error) {
	path, err := ParseDSN(cfg.Target)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := writer.EnsureTarget(path, cfg.Overwrite); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, dgerr.Wrap(dgerr.Writer, err, "open %s", path)
	}
	// One connection only: SQLite serializes writers anyway, and the
	// pool must not split :memory: state across connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dgerr.Wrap(dgerr.Writer, err, "open %s", path)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, dgerr.Wrap(dgerr.Writer, err, "apply %s", pragma)
		}
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = writer.DefaultBatchSize
	}
	return &Writer{
		db:        db,
		path:      path,
		batchSize: batch,
		tables:    map[string]schema.Table{},
		buffers:   map[string][][]any{},
	}, nil
}

func (w *Writer) ensureKind(ctx context.Context, kind model.Kind) error {
	tables := schema.Tables(kind)
	if len(tables) == 0 {
		return dgerr.New(dgerr.Writer, "no schema for kind %s", kind)
	}
	if _, ok := w.tables[tables[0].Name]; ok {
		return nil
	}
	for _, t := range tables {
		if _, err := w.db.ExecContext(ctx, schema.DropTableSQL(t, schema.SQLite)); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "drop table %s", t.Name)
		}
		if _, err := w.db.ExecContext(ctx, schema.CreateTableSQL(t, schema.SQLite)); err != nil {
			return dgerr.Wrap(dgerr.Writer, err, "create table %s", t.Name)
		}
		w.tables[t.Name] = t
		w.order = append(w.order, t.Name)
	}
	w.kinds = append(w.kinds, kind)
	return nil
}

// Write decomposes the record into per-table buffers and flushes any
// buffer that crossed the batch size.
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
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "begin %s batch", name)
	}
	stmt, err := tx.PrepareContext(ctx, schema.InsertSQL(w.tables[name]))
	if err != nil {
		tx.Rollback()
		return dgerr.Wrap(dgerr.Writer, err, "prepare %s insert", name)
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			tx.Rollback()
			return dgerr.Wrap(dgerr.Writer, err, "insert into %s", name)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "commit %s batch", name)
	}
	metrics.RecordBatch("sqlite", name, len(rows))
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

// Finish flushes the remainder, builds the deferred keys and indices
// and refreshes planner statistics. Only clean runs reach it; an
// aborted load keeps its flushed rows and never gets keys or indices.
func (w *Writer) Finish(ctx context.Context) error {
	if err := w.flushAll(ctx); err != nil {
		return err
	}
	for _, kind := range w.kinds {
		for _, t := range schema.Tables(kind) {
			key := schema.PrimaryKeySQL(t, schema.SQLite)
			if key == "" {
				continue
			}
			if _, err := w.db.ExecContext(ctx, key); err != nil {
				return dgerr.Wrap(dgerr.Writer, err, "build key for %s", t.Name)
			}
		}
		for _, ix := range schema.Indices(kind) {
			if _, err := w.db.ExecContext(ctx, schema.CreateIndexSQL(ix)); err != nil {
				return dgerr.Wrap(dgerr.Writer, err, "create index %s", ix.Name)
			}
		}
	}
	if _, err := w.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return dgerr.Wrap(dgerr.Writer, err, "analyze %s", w.path)
	}
	return nil
}

// Close releases the connection. Rows still buffered at this point are
// discarded: without a Finish only already-flushed batches survive,
// which is the documented partial state after an abort.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return dgerr.Wrap(dgerr.Writer, w.db.Close(), "close %s", w.path)
}
