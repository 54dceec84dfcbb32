package filter

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokCmp
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
	tokNull
	tokLParen
	tokRParen
	tokDot
)

type token struct {
	kind tokKind
	text string
	val  any
	op   cmpOp
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	}
	return fmt.Sprintf("%q", t.text)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++

		case c == '=' || c == '!':
			if i+1 >= len(src) || src[i+1] != '=' {
				return nil, fmt.Errorf("unexpected %q at char %d", string(c), i)
			}
			op := opEQ
			if c == '!' {
				op = opNE
			}
			toks = append(toks, token{kind: tokCmp, text: src[i : i+2], op: op, pos: i})
			i += 2
		case c == '>' || c == '<':
			op := opGT
			if c == '<' {
				op = opLT
			}
			end := i + 1
			if end < len(src) && src[end] == '=' {
				if op == opGT {
					op = opGE
				} else {
					op = opLE
				}
				end++
			}
			toks = append(toks, token{kind: tokCmp, text: src[i:end], op: op, pos: i})
			i = end

		case c == '"':
			end := i + 1
			for end < len(src) && src[end] != '"' {
				if src[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(src) {
				return nil, fmt.Errorf("unterminated string at char %d", i)
			}
			toks = append(toks, token{kind: tokString, text: src[i+1 : end], pos: i})
			i = end + 1
		case c == '\'':
			end := strings.IndexByte(src[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at char %d", i)
			}
			toks = append(toks, token{kind: tokString, text: src[i+1 : i+1+end], pos: i})
			i += end + 2

		case isDigit(c),
			c == '.' && i+1 < len(src) && isDigit(src[i+1]),
			(c == '-' || c == '+') && i+1 < len(src) && (isDigit(src[i+1]) || src[i+1] == '.'):
			tok, end, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = end

		case c == '.':
			toks = append(toks, token{kind: tokDot, text: ".", pos: i})
			i++

		case isIdentStart(c):
			end := i + 1
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			word := src[i:end]
			toks = append(toks, keywordOrIdent(word, i))
			i = end

		default:
			return nil, fmt.Errorf("unexpected character %q at char %d", string(c), i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func keywordOrIdent(word string, pos int) token {
	switch strings.ToLower(word) {
	case "and":
		return token{kind: tokAnd, text: word, pos: pos}
	case "or":
		return token{kind: tokOr, text: word, pos: pos}
	case "not":
		return token{kind: tokNot, text: word, pos: pos}
	case "true":
		return token{kind: tokTrue, text: word, val: true, pos: pos}
	case "false":
		return token{kind: tokFalse, text: word, val: false, pos: pos}
	case "null":
		return token{kind: tokNull, text: word, pos: pos}
	}
	return token{kind: tokIdent, text: word, pos: pos}
}

func lexNumber(src string, start int) (token, int, error) {
	end := start
	if src[end] == '+' || src[end] == '-' {
		end++
	}
	float := false
	for end < len(src) && isDigit(src[end]) {
		end++
	}
	if end < len(src) && src[end] == '.' {
		float = true
		end++
		for end < len(src) && isDigit(src[end]) {
			end++
		}
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		float = true
		end++
		if end < len(src) && (src[end] == '+' || src[end] == '-') {
			end++
		}
		for end < len(src) && isDigit(src[end]) {
			end++
		}
	}
	lit := src[start:end]
	if !float {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err == nil {
			return token{kind: tokNumber, text: lit, val: n, pos: start}, end, nil
		}
		// Out of int64 range, fall through to float.
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return token{}, 0, fmt.Errorf("bad number %q at char %d", lit, start)
	}
	return token{kind: tokNumber, text: lit, val: f, pos: start}, end, nil
}
