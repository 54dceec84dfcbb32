// Package summary accumulates run statistics and renders the closing
// console block.
package summary

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
)

// warnDetailLimit caps how many unique warning messages are kept
// verbatim for display.
const warnDetailLimit = 10

// Totals carries the shared counters for one run. Counters are atomic,
// so convert workers increment them directly.
type Totals struct {
	Read     atomic.Int64
	Dropped  atomic.Int64
	Modified atomic.Int64
	Written  atomic.Int64

	start  time.Time
	strict bool
	warns  warnAgg
}

// New starts the clock for a run. strict is carried through to the
// rendered block.
func New(strict bool) *Totals {
	return &Totals{
		start:  time.Now(),
		strict: strict,
		warns:  warnAgg{seen: make(map[uint64]struct{})},
	}
}

// Warn records one unhandled-content warning. A dump can emit the same
// message millions of times, so messages dedup through xxh3 hashes and
// only the first few unique ones are kept verbatim.
func (t *Totals) Warn(msg string) { t.warns.add(msg) }

// Unhandled is the total number of warnings recorded.
func (t *Totals) Unhandled() int64 { return t.warns.total.Load() }

// Snapshot freezes the counters into a Summary.
func (t *Totals) Snapshot() Summary {
	return Summary{
		Elapsed:     time.Since(t.start),
		Read:        t.Read.Load(),
		Dropped:     t.Dropped.Load(),
		Modified:    t.Modified.Load(),
		Written:     t.Written.Load(),
		Unhandled:   t.warns.total.Load(),
		UniqueWarns: t.warns.unique(),
		Warnings:    t.warns.detail(),
		Strict:      t.strict,
	}
}

// Summary is the frozen result of a run.
type Summary struct {
	Elapsed     time.Duration
	Read        int64
	Dropped     int64
	Modified    int64
	Written     int64
	Unhandled   int64
	UniqueWarns int
	// Warnings holds the first unique warning messages, for display.
	Warnings []string
	Strict   bool
}

// RecordsPerSecond is read throughput over the whole run.
func (s Summary) RecordsPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Read) / secs
}

// Render formats the closing block:
//
//	Time:      3m 12s (48,210 records/sec)
//	Read:      9,283,411
//	Dropped:   1,204,118
//	Modified:  0
//	Written:   8,079,293
//	Strict:    Disabled
//
// The Unhandled line appears only when warnings occurred.
func (s Summary) Render() string {
	var b strings.Builder
	rps := humanize.Comma(int64(math.Round(s.RecordsPerSecond())))
	fmt.Fprintf(&b, "Time:      %s (%s records/sec)\n", formatDuration(s.Elapsed), rps)
	fmt.Fprintf(&b, "Read:      %s\n", humanize.Comma(s.Read))
	fmt.Fprintf(&b, "Dropped:   %s\n", humanize.Comma(s.Dropped))
	fmt.Fprintf(&b, "Modified:  %s\n", humanize.Comma(s.Modified))
	fmt.Fprintf(&b, "Written:   %s", humanize.Comma(s.Written))
	if s.Unhandled > 0 {
		fmt.Fprintf(&b, "\nUnhandled: %s", humanize.Comma(s.Unhandled))
	}
	if s.Strict {
		b.WriteString("\nStrict:    Enabled")
	} else {
		b.WriteString("\nStrict:    Disabled")
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	total := int(secs)
	m, s := total/60, total%60
	if m < 60 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := m / 60
	m = m % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// warnAgg aggregates warning messages: a hash set for uniqueness, the
// first warnDetailLimit unique messages verbatim, and a total count.
type warnAgg struct {
	mu    sync.Mutex
	total atomic.Int64
	seen  map[uint64]struct{}
	first []string
}

func (a *warnAgg) add(msg string) {
	a.total.Add(1)
	h := xxh3.HashString(msg)
	a.mu.Lock()
	if _, ok := a.seen[h]; !ok {
		a.seen[h] = struct{}{}
		if len(a.first) < warnDetailLimit {
			a.first = append(a.first, msg)
		}
	}
	a.mu.Unlock()
}

func (a *warnAgg) unique() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.seen)
}

func (a *warnAgg) detail() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.first))
	copy(out, a.first)
	return out
}
