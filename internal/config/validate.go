package config

import (
	"fmt"
	"strings"

	"github.com/jmfontaine/dgkit/internal/filter"
	"github.com/jmfontaine/dgkit/internal/model"
	"github.com/jmfontaine/dgkit/internal/writer"
)

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityError blocks execution.
	SeverityError Severity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config ("drop_if[1]", "batch_size").
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be handed to
// code expecting one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate statically checks a Config without mutating it. Filter
// expressions compile here, so a malformed rule is reported before any
// input is opened. Callers decide whether warnings are fatal.
func (c Config) Validate() []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Format) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "format",
			Message:  "format must not be empty",
		})
	} else if !formatKnown(c.Format) {
		// Backends register at import time, so an unknown name here may
		// still resolve in a binary that links more backends.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "format",
			Message:  fmt.Sprintf("format %q is not registered (registered: %s)", c.Format, strings.Join(writer.Formats(), ", ")),
		})
	}

	if c.Kind != "" {
		if _, err := model.ParseKind(c.Kind); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "kind",
				Message:  fmt.Sprintf("unknown entity kind %q (artist, label, master, release)", c.Kind),
			})
		}
	}

	if _, err := writer.NormalizeCompression(c.Compression); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "compression",
			Message:  err.Error(),
		})
	}

	for i, expr := range c.DropIf {
		if _, err := filter.ParseDropRule(expr); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("drop_if[%d]", i),
				Message:  err.Error(),
			})
		}
	}
	for i, name := range c.Unset {
		if _, err := filter.ParseUnset([]string{name}); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("unset[%d]", i),
				Message:  err.Error(),
			})
		}
	}

	if c.Limit < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "limit",
			Message:  "limit must be >= 0",
		})
	}
	if c.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batch_size",
			Message:  "batch_size must be > 0",
		})
	}
	if c.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chunk_size",
			Message:  "chunk_size must be > 0",
		})
	}
	if c.Workers <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "workers",
			Message:  "workers must be > 0",
		})
	}

	if c.FailOnUnhandled && !c.Strict {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "fail_on_unhandled",
			Message:  "fail_on_unhandled without strict only aborts on parse errors; unmapped content goes unnoticed",
		})
	}

	return issues
}

func formatKnown(name string) bool {
	for _, f := range writer.Formats() {
		if f == name {
			return true
		}
	}
	return false
}
