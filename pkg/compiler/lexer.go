package compiler

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of line"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// lex splits one line of cockpit definition source into tokens. Identifiers
// keep their dots (devices.ELEC_INTERFACE is one token) and a trailing
// "--" comment ends the line.
func lex(line string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == ';':
			i++
		case c == '-' && strings.HasPrefix(line[i:], "--"):
			i = len(line)
		case isIdentStart(c):
			start := i
			for i < len(line) && (isIdentStart(line[i]) || isDigit(line[i]) || line[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: line[start:i], pos: start})
		case isDigit(c) || (c == '.' && i+1 < len(line) && isDigit(line[i+1])):
			start := i
			for i < len(line) && isNumberPart(line, i) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: line[start:i], pos: start})
		case c == '"' || c == '\'':
			s, n, err := lexString(line[i:])
			if err != nil {
				return nil, fmt.Errorf("col %d: %w", i+1, err)
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i += n
		case strings.IndexByte("()[]{},=-", c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: i})
			i++
		default:
			return nil, fmt.Errorf("col %d: unexpected character %q", i+1, c)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(line)}), nil
}

// lexString reads a quoted string starting at s[0] and returns its unescaped
// text and the number of bytes consumed.
func lexString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberPart(s string, i int) bool {
	c := s[i]
	if isDigit(c) || c == '.' || c == 'e' || c == 'E' {
		return true
	}
	// Exponent sign.
	return (c == '-' || c == '+') && i > 0 && (s[i-1] == 'e' || s[i-1] == 'E')
}
