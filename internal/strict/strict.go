// Package strict detects source content that the entity mapping did not
// pick up: unmapped child tags, unread attributes, stray element text.
// It exists to catch dump format drift, new fields appearing in monthly
// dumps before the record types know about them.
//
// A Scan rides along with the single dispatch pass over one element and
// records relative paths in the original's notation: "extra" for an
// unmapped child, "@id" for an unread attribute, "#text" for stray text,
// "aliases/extra" for nested occurrences. A nil *Scan is valid and makes
// every probe a no-op, so non-strict runs pay nothing.
package strict

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/jmfontaine/dgkit/internal/xmlstream"
)

// Mode selects how findings are handled.
type Mode uint8

const (
	// ModeOff disables scanning entirely.
	ModeOff Mode = iota
	// ModeWarn records findings and lets the run continue.
	ModeWarn
	// ModeFail aborts the run on the first finding.
	ModeFail
)

func (m Mode) String() string {
	switch m {
	case ModeWarn:
		return "warn"
	case ModeFail:
		return "fail"
	}
	return "off"
}

// Enabled reports whether scanning is active.
func (m Mode) Enabled() bool { return m != ModeOff }

// Scan collects unmapped paths for a single element.
type Scan struct {
	paths []string
}

// NewScan returns a Scan, or nil when mode has scanning off.
func NewScan(m Mode) *Scan {
	if !m.Enabled() {
		return nil
	}
	return &Scan{}
}

// Active reports whether the scan records findings. Callers can skip
// whole probe loops when it is false.
func (s *Scan) Active() bool { return s != nil }

func (s *Scan) add(prefix, name string) {
	if prefix != "" {
		name = prefix + "/" + name
	}
	s.paths = append(s.paths, name)
}

// UnknownTag records a child tag the dispatch switch did not map.
func (s *Scan) UnknownTag(prefix, tag string) {
	if s == nil {
		return
	}
	s.add(prefix, tag)
}

// UnknownAttrs records every attribute of e outside the known set.
func (s *Scan) UnknownAttrs(prefix string, e *xmlstream.Element, known ...string) {
	if s == nil {
		return
	}
attrs:
	for _, a := range e.Attrs {
		for _, k := range known {
			if a.Name == k {
				continue attrs
			}
		}
		s.add(prefix, "@"+a.Name)
	}
}

// StrayText records unconsumed element text. Only leaf elements count:
// whitespace between children is formatting, not data.
func (s *Scan) StrayText(prefix string, e *xmlstream.Element) {
	if s == nil {
		return
	}
	if len(e.Children) == 0 && e.TrimText() != "" {
		s.add(prefix, "#text")
	}
}

// Paths returns the findings in sorted order.
func (s *Scan) Paths() []string {
	if s == nil || len(s.paths) == 0 {
		return nil
	}
	sort.Strings(s.paths)
	return s.paths
}

// Reset clears the scan for the next element.
func (s *Scan) Reset() {
	if s == nil {
		return
	}
	s.paths = s.paths[:0]
}

// Entry is one distinct (entity, path) finding aggregated over a run.
type Entry struct {
	Entity  string
	Path    string
	FirstID int64
	Count   int
}

// Collector aggregates findings across a whole run. Identical paths
// deduplicate on a hash key, so a field missing from the mapping shows up
// once with a count instead of once per record. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	seen    map[uint64]int
	entries []Entry
	total   int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[uint64]int)}
}

// Record merges one element's findings.
func (c *Collector) Record(entity string, id int64, paths []string) {
	if len(paths) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		c.total++
		key := xxh3.HashString(entity + "\x00" + p)
		if i, ok := c.seen[key]; ok {
			c.entries[i].Count++
			continue
		}
		c.seen[key] = len(c.entries)
		c.entries = append(c.entries, Entry{Entity: entity, Path: p, FirstID: id, Count: 1})
	}
}

// Total returns the number of individual findings.
func (c *Collector) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Entries returns the distinct findings in first-seen order.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Warnings renders the aggregated findings for display.
func (c *Collector) Warnings() []string {
	entries := c.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		msg := fmt.Sprintf("Unhandled in %s id=%d: %s", e.Entity, e.FirstID, e.Path)
		if e.Count > 1 {
			msg = fmt.Sprintf("%s (seen %d times)", msg, e.Count)
		}
		out = append(out, msg)
	}
	return out
}
