// Command dgkit converts Discogs data dumps to flat files or loads
// them into relational databases.
//
//	dgkit convert -format jsonl discogs_20250101_artists.xml.gz
//	dgkit load -dsn sqlite:///./discogs.db discogs_20250101_*.xml.gz
//	dgkit sample -n 1000 discogs_20250101_releases.xml.gz
//
// The command is a thin shell over the library: it parses flags,
// validates the configuration, runs the pipeline and renders the
// summary. All behavior lives in the internal packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmfontaine/dgkit/internal/config"
	"github.com/jmfontaine/dgkit/internal/pipeline"
	"github.com/jmfontaine/dgkit/internal/sampler"
	"github.com/jmfontaine/dgkit/internal/summary"

	// register the database backends with the writer factory.
	_ "github.com/jmfontaine/dgkit/internal/writer/all"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "convert":
		runConvert(os.Args[2:])
	case "load":
		runLoad(os.Args[2:])
	case "sample":
		runSample(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "dgkit: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: dgkit <command> [flags] FILE...

Commands:
  convert   stream dumps into jsonl, json, console or blackhole output
  load      stream dumps into a sqlite or postgres database
  sample    extract the first N elements of a dump into a small dump

Run 'dgkit <command> -h' for command flags.
`)
}

// repeatable collects a flag given multiple times.
type repeatable []string

func (r *repeatable) String() string { return strings.Join(*r, ", ") }

func (r *repeatable) Set(v string) error {
	*r = append(*r, v)
	return nil
}

// commonFlags are the flags convert and load share.
func commonFlags(fs *flag.FlagSet, cfg *config.Config, dropIf, unset *repeatable) {
	fs.StringVar(&cfg.Kind, "kind", "", "entity kind override (artist, label, master, release); default detects per file")
	fs.Var(dropIf, "drop-if", "drop records matching this expression (repeatable)")
	fs.Var(unset, "unset", "comma-separated fields to null out (repeatable)")
	fs.BoolVar(&cfg.Strict, "strict", false, "track source content not mapped into records")
	fs.BoolVar(&cfg.FailOnUnhandled, "fail-on-unhandled", false, "abort on the first parse error or unmapped finding (implies -strict)")
	fs.IntVar(&cfg.Limit, "limit", 0, "stop after this many elements per file (0 = no limit)")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "replace existing output targets")
}

// finishConfig applies environment overrides, validates and reports.
// It exits the process on configuration errors, before any input is
// opened.
func finishConfig(cfg *config.Config) {
	if cfg.FailOnUnhandled {
		cfg.Strict = true
	}
	if err := cfg.ApplyEnv(); err != nil {
		fatalf("%v", err)
	}
	issues := cfg.Validate()
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "dgkit: %s\n", iss)
	}
	if config.HasErrors(issues) {
		os.Exit(1)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfg := config.Default()
	var dropIf, unset repeatable
	fs.StringVar(&cfg.Format, "format", "jsonl", "output format: jsonl, json, console or blackhole")
	fs.StringVar(&cfg.Compression, "compress", "", "output compression: none, gzip or zstd")
	fs.StringVar(&cfg.OutputDir, "output", ".", "directory for converted files")
	fs.IntVar(&cfg.Workers, "workers", 1, "number of files converted in parallel")
	quiet := fs.Bool("quiet", false, "suppress progress and summary output")
	commonFlags(fs, &cfg, &dropIf, &unset)
	fs.Parse(args)
	cfg.DropIf, cfg.Unset = dropIf, unset
	finishConfig(&cfg)
	if fs.NArg() == 0 {
		fatalf("convert: no input files")
	}

	run(*quiet, func(ctx context.Context, prog pipeline.Progress) (*summary.Totals, error) {
		return pipeline.Convert(ctx, cfg, fs.Args(), prog)
	})
}

func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	cfg := config.Default()
	var dropIf, unset repeatable
	fs.StringVar(&cfg.Format, "format", "sqlite", "database backend: sqlite or postgres")
	fs.StringVar(&cfg.DSN, "dsn", "", "database target (sqlite://path or postgres://...); default derives a .db file from the first input")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "rows buffered per table before a bulk insert")
	quiet := fs.Bool("quiet", false, "suppress progress and summary output")
	commonFlags(fs, &cfg, &dropIf, &unset)
	fs.Parse(args)
	cfg.DropIf, cfg.Unset = dropIf, unset
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		cfg.Format = "postgres"
	}
	finishConfig(&cfg)
	if fs.NArg() == 0 {
		fatalf("load: no input files")
	}

	run(*quiet, func(ctx context.Context, prog pipeline.Progress) (*summary.Totals, error) {
		return pipeline.Load(ctx, cfg, fs.Args(), prog)
	})
}

func runSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	n := fs.Int("n", 1000, "number of elements to extract")
	kind := fs.String("kind", "", "entity kind override")
	overwrite := fs.Bool("overwrite", false, "replace an existing sample file")
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fatalf("sample: want FILE [OUT], got %d argument(s)", fs.NArg())
	}
	in := fs.Arg(0)
	out := fs.Arg(1)
	if out == "" {
		out = sampler.OutputPath(in, *n)
	}

	ctx := signalContext()
	got, err := sampler.Extract(ctx, in, out, *n, sampler.Options{Kind: *kind, Overwrite: *overwrite})
	if err != nil {
		fatalf("sample: %v", err)
	}
	log.Printf("Wrote %d element(s) to %s", got, out)
}

// run executes one pipeline invocation under signal cancellation and
// renders the closing summary. On error it reports how much output was
// already committed, then exits non-zero.
func run(quiet bool, fn func(context.Context, pipeline.Progress) (*summary.Totals, error)) {
	ctx := signalContext()
	prog := pipeline.Progress{}
	if !quiet {
		prog.OnBytes = newByteProgress().report
	}

	totals, err := fn(ctx, prog)
	if err != nil {
		if totals != nil {
			log.Printf("Run aborted; output committed so far:\n%s", totals.Snapshot().Render())
		}
		fatalf("%v", err)
	}
	if !quiet && totals != nil {
		fmt.Println(totals.Snapshot().Render())
	}
}

// byteProgress rate-limits OnBytes callbacks to one log line every few
// seconds. Callbacks arrive from multiple workers on parallel converts.
type byteProgress struct {
	mu   sync.Mutex
	last time.Time
}

func newByteProgress() *byteProgress {
	return &byteProgress{last: time.Now()}
}

func (p *byteProgress) report(read, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.last) < 5*time.Second {
		return
	}
	p.last = time.Now()
	if total > 0 {
		log.Printf("Progress: %s / %s (%.1f%%)",
			humanize.Bytes(uint64(read)), humanize.Bytes(uint64(total)),
			float64(read)/float64(total)*100)
		return
	}
	log.Printf("Progress: %s read", humanize.Bytes(uint64(read)))
}

// signalContext cancels on SIGINT or SIGTERM, leaving writers to their
// documented partial state.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "dgkit: "+format+"\n", a...)
	os.Exit(1)
}
