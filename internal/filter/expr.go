package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmfontaine/dgkit/internal/model"
)

// Expression grammar:
//
//	expr       = or
//	or         = and ("or" and)*
//	and        = atom ("and" atom)*
//	atom       = "not" atom | "(" expr ")" | comparison
//	comparison = field cmp value
//	field      = ident
//	cmp        = "==" | "!=" | ">" | ">=" | "<" | "<="
//
// Only top-level scalar fields are addressable; a dotted path is
// rejected at compile time rather than silently reading as null.
//	value      = string | number | "true" | "false" | "null"

type node interface {
	eval(rec model.Record) bool
}

type andNode struct{ l, r node }

func (n *andNode) eval(rec model.Record) bool { return n.l.eval(rec) && n.r.eval(rec) }

type orNode struct{ l, r node }

func (n *orNode) eval(rec model.Record) bool { return n.l.eval(rec) || n.r.eval(rec) }

type notNode struct{ sub node }

func (n *notNode) eval(rec model.Record) bool { return !n.sub.eval(rec) }

type cmpNode struct {
	field  string
	op     cmpOp
	target any
}

func (n *cmpNode) eval(rec model.Record) bool {
	v, _ := rec.Field(n.field)
	return compare(v, n.op, n.target)
}

type exprParser struct {
	toks []token
	pos  int
}

func parseExpr(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s at char %d", t, t.pos)
	}
	return n, nil
}

func (p *exprParser) peek() token { return p.toks[p.pos] }

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) or() (node, error) {
	l, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		r, err := p.and()
		if err != nil {
			return nil, err
		}
		l = &orNode{l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) and() (node, error) {
	l, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		r, err := p.atom()
		if err != nil {
			return nil, err
		}
		l = &andNode{l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) atom() (node, error) {
	switch t := p.peek(); t.kind {
	case tokNot:
		p.next()
		sub, err := p.atom()
		if err != nil {
			return nil, err
		}
		return &notNode{sub: sub}, nil
	case tokLParen:
		p.next()
		n, err := p.or()
		if err != nil {
			return nil, err
		}
		if c := p.peek(); c.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at char %d, found %s", c.pos, c)
		}
		p.next()
		return n, nil
	case tokIdent:
		return p.comparison()
	default:
		return nil, fmt.Errorf("expected comparison at char %d, found %s", t.pos, t)
	}
}

func (p *exprParser) comparison() (node, error) {
	field := p.next().text
	if dot := p.peek(); dot.kind == tokDot {
		return nil, fmt.Errorf("field %q at char %d: nested fields cannot be filtered, use a top-level field", field, dot.pos)
	}
	opTok := p.peek()
	if opTok.kind != tokCmp {
		return nil, fmt.Errorf("expected operator at char %d, found %s", opTok.pos, opTok)
	}
	p.next()
	val := p.peek()
	switch val.kind {
	case tokString, tokNumber, tokTrue, tokFalse, tokNull:
		p.next()
	default:
		return nil, fmt.Errorf("expected value at char %d, found %s", val.pos, val)
	}
	return &cmpNode{field: field, op: opTok.op, target: val.val}, nil
}

type cmpOp uint8

const (
	opEQ cmpOp = iota
	opNE
	opGT
	opGE
	opLT
	opLE
)

// compare evaluates one predicate. Null follows SQL-ish rules: equal to
// itself under ==, >= and <=, unequal to everything else. A string
// literal coerces a non-string field value to its rendered form; other
// mixed types compare unequal without ordering.
func compare(field any, op cmpOp, target any) bool {
	if field == nil && target == nil {
		return op == opEQ || op == opGE || op == opLE
	}
	if field == nil || target == nil {
		return op == opNE
	}
	if ts, ok := target.(string); ok {
		fs, ok := field.(string)
		if !ok {
			fs = stringify(field)
		}
		return ordered(strings.Compare(fs, ts), op)
	}
	fi, fOK := field.(int64)
	ti, tOK := target.(int64)
	if fOK && tOK {
		return ordered(cmpInt(fi, ti), op)
	}
	ff, fNum := toFloat(field)
	tf, tNum := toFloat(target)
	if !fNum || !tNum {
		return op == opNE
	}
	return ordered(cmpFloat(ff, tf), op)
}

func stringify(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ordered(c int, op cmpOp) bool {
	switch op {
	case opEQ:
		return c == 0
	case opNE:
		return c != 0
	case opGT:
		return c > 0
	case opGE:
		return c >= 0
	case opLT:
		return c < 0
	case opLE:
		return c <= 0
	}
	return false
}
