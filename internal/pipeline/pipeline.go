// Package pipeline wires source, scanner, parser, filter chain and
// writer into complete convert and load runs. Presentation stays out:
// progress surfaces through callbacks and counts through summary
// totals, the CLI decides what to render.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmfontaine/dgkit/internal/config"
	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/filter"
	"github.com/jmfontaine/dgkit/internal/metrics"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/parser"
	"github.com/jmfontaine/dgkit/internal/source"
	"github.com/jmfontaine/dgkit/internal/strict"
	"github.com/jmfontaine/dgkit/internal/summary"
	"github.com/jmfontaine/dgkit/internal/writer"
	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

// Progress carries optional callbacks. OnBytes fires after every
// element with the compressed offset and size of the current file;
// OnRecord fires per written record with the running total.
type Progress struct {
	OnBytes  func(read, total int64)
	OnRecord func(kind model.Kind, written int64)
}

// Convert streams dump files into a flat format. File formats (jsonl,
// json) write one output per input and may run files in parallel;
// aggregate formats (console, blackhole) share one writer and run
// sequentially.
func Convert(ctx context.Context, cfg config.Config, paths []string, prog Progress) (*summary.Totals, error) {
	chain, err := filter.NewChain(cfg.DropIf, cfg.Unset)
	if err != nil {
		return nil, err
	}
	comp, err := writer.NormalizeCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	valid := existingFiles(paths)
	r := newRun("convert", cfg, chain, prog)
	log.Printf("Processing %d file(s) with format=%s", len(valid), cfg.Format)

	if writer.Aggregates(cfg.Format) {
		w, err := writer.New(ctx, cfg.Format, writer.Config{
			BatchSize: cfg.BatchSize,
			ChunkSize: cfg.ChunkSize,
			Overwrite: cfg.Overwrite,
		})
		if err != nil {
			return r.totals, err
		}
		runErr := r.runFiles(ctx, w, valid)
		err = finishWriter(ctx, w, runErr)
		r.close(err)
		return r.totals, err
	}

	// Zero means sequential, like the other zero-value knobs.
	// SetLimit(0) would block the first Go call forever.
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range valid {
		g.Go(func() error {
			out := writer.BuildOutputPath(path, cfg.Format, cfg.OutputDir, comp)
			w, err := writer.New(gctx, cfg.Format, writer.Config{
				Target:      out,
				ChunkSize:   cfg.ChunkSize,
				Overwrite:   cfg.Overwrite,
				Compression: comp,
			})
			if err != nil {
				return err
			}
			log.Printf("Starting %s -> %s", filepath.Base(path), filepath.Base(out))
			start := time.Now()
			runErr := r.runFile(gctx, w, path)
			runErr = finishWriter(gctx, w, runErr)
			metrics.RecordFile(r.op, filepath.Base(path), runErr, time.Since(start))
			if runErr != nil {
				return runErr
			}
			log.Printf("Finished %s in %.2fs", filepath.Base(path), time.Since(start).Seconds())
			return nil
		})
	}
	err = g.Wait()
	r.close(err)
	return r.totals, err
}

// Load streams dump files into one relational database. All inputs
// share the writer, so files run strictly sequentially; the target
// derives from the first input when cfg.DSN is empty.
func Load(ctx context.Context, cfg config.Config, paths []string, prog Progress) (*summary.Totals, error) {
	chain, err := filter.NewChain(cfg.DropIf, cfg.Unset)
	if err != nil {
		return nil, err
	}
	if cfg.Format != "sqlite" && cfg.Format != "postgres" {
		return nil, dgerr.New(dgerr.Writer, "format %q cannot load a database (want sqlite or postgres)", cfg.Format)
	}

	valid := existingFiles(paths)
	target := cfg.DSN
	if target == "" {
		target, err = writer.BuildDatabasePath(valid, cfg.OutputDir)
		if err != nil {
			return nil, err
		}
	}

	r := newRun("load", cfg, chain, prog)
	log.Printf("Processing %d file(s) with format=%s", len(valid), cfg.Format)

	w, err := writer.New(ctx, cfg.Format, writer.Config{
		Target:    target,
		BatchSize: cfg.BatchSize,
		ChunkSize: cfg.ChunkSize,
		Overwrite: cfg.Overwrite,
	})
	if err != nil {
		return r.totals, err
	}
	runErr := r.runFiles(ctx, w, valid)
	err = finishWriter(ctx, w, runErr)
	r.close(err)
	return r.totals, err
}

// run carries the state shared by every file of one invocation.
type run struct {
	op       string
	cfg      config.Config
	chain    *filter.Chain
	totals   *summary.Totals
	findings *strict.Collector
	prog     Progress
}

func newRun(op string, cfg config.Config, chain *filter.Chain, prog Progress) *run {
	return &run{
		op:       op,
		cfg:      cfg,
		chain:    chain,
		totals:   summary.New(cfg.Strict),
		findings: strict.NewCollector(),
		prog:     prog,
	}
}

func (r *run) mode() strict.Mode {
	switch {
	case r.cfg.Strict && r.cfg.FailOnUnhandled:
		return strict.ModeFail
	case r.cfg.Strict:
		return strict.ModeWarn
	}
	return strict.ModeOff
}

// runFiles processes paths one after another through a shared writer.
func (r *run) runFiles(ctx context.Context, w writer.Writer, paths []string) error {
	for _, path := range paths {
		log.Printf("Starting %s", filepath.Base(path))
		start := time.Now()
		err := r.runFile(ctx, w, path)
		metrics.RecordFile(r.op, filepath.Base(path), err, time.Since(start))
		if err != nil {
			return err
		}
		log.Printf("Finished %s in %.2fs", filepath.Base(path), time.Since(start).Seconds())
	}
	return nil
}

// runFile is the single-pass loop over one dump file: scan, parse,
// filter, write, then the strict check. The element is released as
// soon as the record no longer needs it.
func (r *run) runFile(ctx context.Context, w writer.Writer, path string) error {
	kind, err := r.kindFor(path)
	if err != nil {
		return err
	}
	src, err := source.Open(path, source.Options{ChunkSize: r.cfg.ChunkSize})
	if err != nil {
		return err
	}
	defer src.Close()

	scanCfg := xmlstream.ScanConfig{Tag: kind.ElementTag()}
	if container, nested := kind.NestedContainer(); nested {
		scanCfg.Container = container
	}
	sc := xmlstream.NewScanner(src, scanCfg)
	p := parser.New(kind)
	scan := strict.NewScan(r.mode())

	var n int
	for {
		if r.cfg.Limit > 0 && n >= r.cfg.Limit {
			break
		}
		elem, err := sc.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		n++
		scan.Reset()

		rec, perr := p.Parse(elem, scan)
		if perr != nil {
			if r.cfg.FailOnUnhandled {
				xmlstream.Release(elem)
				return perr
			}
			r.totals.Warn(fmt.Sprintf("Parse error in %s id=%s: %v", kind, elementID(elem), perr))
			xmlstream.Release(elem)
			r.reportBytes(src)
			continue
		}
		xmlstream.Release(elem)

		r.totals.Read.Add(1)
		out, kept, modified := r.chain.Apply(rec)
		if !kept {
			r.totals.Dropped.Add(1)
		} else {
			if modified {
				r.totals.Modified.Add(1)
			}
			if err := w.Write(ctx, out); err != nil {
				return err
			}
			written := r.totals.Written.Add(1)
			if r.prog.OnRecord != nil {
				r.prog.OnRecord(kind, written)
			}
		}

		// Unmapped content is checked after the write: a finding in
		// warn mode must not cost the record.
		if paths := scan.Paths(); len(paths) != 0 {
			id := rec.RecordID()
			joined := strings.Join(paths, ", ")
			if r.cfg.FailOnUnhandled {
				return dgerr.New(dgerr.Validation, "unhandled content: %s", joined).ForEntity(kind.String(), id)
			}
			r.findings.Record(kind.String(), id, paths)
			r.totals.Warn(fmt.Sprintf("Unhandled in %s id=%d: %s", kind, id, joined))
		}
		r.reportBytes(src)
	}
	return nil
}

func (r *run) kindFor(path string) (model.Kind, error) {
	if r.cfg.Kind != "" {
		k, err := model.ParseKind(r.cfg.Kind)
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

func (r *run) reportBytes(src *source.Source) {
	if r.prog.OnBytes != nil {
		r.prog.OnBytes(src.BytesRead(), src.Size())
	}
}

// close logs the run accounting and ships the totals to metrics.
func (r *run) close(runErr error) {
	read := r.totals.Read.Load()
	written := r.totals.Written.Load()
	dropped := r.totals.Dropped.Load()
	log.Printf("%s summary: read=%d written=%d dropped=%d modified=%d unhandled=%d",
		r.op, read, written, dropped, r.totals.Modified.Load(), r.totals.Unhandled())
	if runErr == nil && read != written+dropped {
		log.Printf("count mismatch: read=%d but written+dropped=%d", read, written+dropped)
	}

	if entries := r.findings.Entries(); len(entries) > 0 {
		log.Printf("unhandled content: %d finding(s) across %d distinct path(s)", r.findings.Total(), len(entries))
		show := entries
		if len(show) > 10 {
			show = show[:10]
		}
		for i, e := range show {
			log.Printf("  #%03d: %s %s (first id=%d, count=%d)", i+1, e.Entity, e.Path, e.FirstID, e.Count)
		}
		if rest := len(entries) - len(show); rest > 0 {
			log.Printf("  ... and %d more", rest)
		}
	}

	metrics.RecordRecords(r.op, "read", read)
	metrics.RecordRecords(r.op, "dropped", dropped)
	metrics.RecordRecords(r.op, "modified", r.totals.Modified.Load())
	metrics.RecordRecords(r.op, "written", written)
	metrics.RecordRecords(r.op, "unhandled", r.totals.Unhandled())
}

// finishWriter settles a writer at end of run: Finish only on success,
// Close always.
func finishWriter(ctx context.Context, w writer.Writer, runErr error) error {
	if runErr != nil {
		w.Close()
		return runErr
	}
	if err := w.Finish(ctx); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// existingFiles filters paths down to regular files, matching the
// lenient treatment of missing inputs in batch invocations.
func existingFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}

// elementID digs an id out of a raw element for error messages, before
// any record exists.
func elementID(e *xmlstream.Element) string {
	if s := e.ChildText("id"); s != nil {
		return *s
	}
	if v, ok := e.Attr("id"); ok {
		return v
	}
	return "?"
}
