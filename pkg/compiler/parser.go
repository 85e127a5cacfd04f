package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

type valueKind int

const (
	valNumber valueKind = iota
	valString
	valBool
	valNil
	valIdent
	valTable
)

// value is one argument of an element definition call.
type value struct {
	kind  valueKind
	num   float64
	text  string // String contents or identifier
	flag  bool
	items []value
}

// definition is a parsed element line:
//
//	elements["<key>"] = <tag>(<args...>)
type definition struct {
	key  string
	tag  string
	args []value
}

type parser struct {
	toks []token
	pos  int
}

// parseDefinition parses one element definition line. Lines that assign
// to element fields or use expressions outside the grammar return an error.
func parseDefinition(line string) (*definition, error) {
	toks, err := lex(line)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	if err := p.expectIdent("elements"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	key := p.next()
	if key.kind != tokString && key.kind != tokNumber {
		return nil, fmt.Errorf("element key: unexpected %s", key)
	}
	for _, want := range []string{"]", "="} {
		if err := p.expectPunct(want); err != nil {
			return nil, err
		}
	}
	tag := p.next()
	if tag.kind != tokIdent {
		return nil, fmt.Errorf("function tag: unexpected %s", tag)
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	args, err := p.list(")")
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.kind != tokEOF {
		return nil, fmt.Errorf("trailing %s", t)
	}
	return &definition{key: key.text, tag: tag.text, args: args}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) expectPunct(s string) error {
	if t := p.next(); t.kind != tokPunct || t.text != s {
		return fmt.Errorf("expected %q, got %s", s, t)
	}
	return nil
}

func (p *parser) expectIdent(s string) error {
	if t := p.next(); t.kind != tokIdent || t.text != s {
		return fmt.Errorf("expected %q, got %s", s, t)
	}
	return nil
}

// list parses comma separated values up to the closing delimiter. A
// trailing comma is allowed.
func (p *parser) list(closing string) ([]value, error) {
	var out []value
	for !p.isPunct(closing) {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.isPunct(",") {
			p.next()
			continue
		}
		if !p.isPunct(closing) {
			return nil, fmt.Errorf("expected %q or \",\", got %s", closing, p.peek())
		}
	}
	p.next()
	return out, nil
}

func (p *parser) value() (value, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return value{kind: valString, text: t.text}, nil
	case tokNumber:
		return number(t.text, false)
	case tokIdent:
		switch t.text {
		case "true", "false":
			return value{kind: valBool, flag: t.text == "true"}, nil
		case "nil":
			return value{kind: valNil}, nil
		case "_":
			// Translated string: _("text").
			if err := p.expectPunct("("); err != nil {
				return value{}, err
			}
			s := p.next()
			if s.kind != tokString {
				return value{}, fmt.Errorf("translated string: unexpected %s", s)
			}
			if err := p.expectPunct(")"); err != nil {
				return value{}, err
			}
			return value{kind: valString, text: s.text}, nil
		}
		if p.isPunct("(") {
			return value{}, fmt.Errorf("nested call %s not supported", t.text)
		}
		return value{kind: valIdent, text: t.text}, nil
	case tokPunct:
		switch t.text {
		case "-":
			n := p.next()
			if n.kind != tokNumber {
				return value{}, fmt.Errorf("expected number after '-', got %s", n)
			}
			return number(n.text, true)
		case "{":
			items, err := p.list("}")
			if err != nil {
				return value{}, err
			}
			return value{kind: valTable, items: items}, nil
		}
	}
	return value{}, fmt.Errorf("unexpected %s", t)
}

func number(text string, neg bool) (value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value{}, fmt.Errorf("bad number %q", text)
	}
	if neg {
		f = -f
	}
	return value{kind: valNumber, num: f}, nil
}

// symbol returns the last segment of a dotted identifier.
func symbol(ident string) string {
	if i := strings.LastIndexByte(ident, '.'); i >= 0 {
		return ident[i+1:]
	}
	return ident
}
