// Package filter drops or redacts records before they reach a writer.
//
// Drop rules are boolean expressions over named record fields:
//
//	data_quality == 'Needs Vote'
//	year >= 1990 and year < 2000 or country == null
//
// and binds tighter than or, not binds tightest, parentheses group.
// Keywords are case-insensitive. A missing or unknown field reads as
// null; null equals only null, and against anything else only != holds.
//
// Rules are compiled up front so a malformed expression surfaces as a
// configuration error before any record is read.
package filter

import (
	"strings"

	"github.com/jmfontaine/dgkit/internal/dgerr"
	"github.com/jmfontaine/dgkit/internal/model"
)

// DropRule discards every record its expression matches.
type DropRule struct {
	expr node
	src  string
}

// ParseDropRule compiles a drop expression.
func ParseDropRule(src string) (*DropRule, error) {
	expr, err := parseExpr(src)
	if err != nil {
		return nil, dgerr.Wrap(dgerr.FilterConfig, err, "drop-if %q", src)
	}
	return &DropRule{expr: expr, src: src}, nil
}

// Match reports whether the record should be dropped.
func (r *DropRule) Match(rec model.Record) bool { return r.expr.eval(rec) }

func (r *DropRule) String() string { return r.src }

// ParseUnset merges unset specs into one ordered field list. Each spec
// is a comma-separated list of field names; duplicates collapse onto
// their first occurrence.
func ParseUnset(specs []string) ([]string, error) {
	var fields []string
	seen := make(map[string]bool)
	for _, spec := range specs {
		for _, f := range strings.Split(spec, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if !validIdent(f) {
				return nil, dgerr.New(dgerr.FilterConfig, "unset field %q is not a valid field name", f)
			}
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields, nil
}

func validIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}

// Chain applies drop rules in order, then field redaction, to each
// record. Records matching any drop rule never reach the unset step.
type Chain struct {
	drops []*DropRule
	unset []string
}

// NewChain compiles drop expressions and unset specs into a chain.
// Compilation errors carry the offending expression.
func NewChain(dropExprs, unsetSpecs []string) (*Chain, error) {
	c := &Chain{}
	for _, e := range dropExprs {
		r, err := ParseDropRule(e)
		if err != nil {
			return nil, err
		}
		c.drops = append(c.drops, r)
	}
	fields, err := ParseUnset(unsetSpecs)
	if err != nil {
		return nil, err
	}
	c.unset = fields
	return c, nil
}

// Empty reports whether the chain has no effect.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.drops) == 0 && len(c.unset) == 0)
}

// Apply runs the chain over one record. kept is false when a drop rule
// matched; modified is true when redaction produced a new record. A nil
// chain keeps everything untouched.
func (c *Chain) Apply(rec model.Record) (out model.Record, kept, modified bool) {
	if c == nil {
		return rec, true, false
	}
	for _, d := range c.drops {
		if d.Match(rec) {
			return nil, false, false
		}
	}
	if len(c.unset) == 0 {
		return rec, true, false
	}
	next, touched := rec.WithUnset(c.unset)
	if !touched {
		return rec, true, false
	}
	return next, true, true
}
