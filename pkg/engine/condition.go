package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// The red-flag condition grammar is a single membership test:
//
//	identifier "in" "[" literal ("," literal)* "]"
//
// No boolean composition, no nesting. Literals may be quoted with single or
// double quotes, or bare. Anything that does not parse as exactly this shape
// evaluates to false rather than failing: rule authors rely on typo-tolerant
// silent failure, so a malformed rule must never block scoring.

// EvaluateCondition evaluates a condition string against mapped answers.
// It returns true iff the condition parses and the identified answer,
// coerced to a list, intersects the literal set. An absent identifier or an
// unparseable condition evaluates to false; this function never panics.
func EvaluateCondition(condition string, answers MappedAnswers) bool {
	ident, literals, err := parseCondition(condition)
	if err != nil {
		return false
	}
	return answerIn(answers, ident, literals)
}

// answerIn reports whether the named answer intersects the literal set.
func answerIn(answers MappedAnswers, ident string, literals []string) bool {
	value, ok := answers[ident]
	if !ok || value.IsZero() {
		return false
	}
	set := make(map[string]bool, len(literals))
	for _, l := range literals {
		set[l] = true
	}
	for _, item := range value.Items() {
		if set[item] {
			return true
		}
	}
	return false
}

// parseCondition tokenizes and parses a condition, returning the identifier
// and the literal list. The whole input must be consumed: trailing tokens
// (an attempted "and", a second test) fail the parse.
func parseCondition(condition string) (string, []string, error) {
	lex := &condLexer{input: condition}

	ident, err := lex.ident()
	if err != nil {
		return "", nil, err
	}

	kw, err := lex.ident()
	if err != nil {
		return "", nil, err
	}
	if kw != "in" {
		return "", nil, fmt.Errorf("expected %q after identifier, got %q", "in", kw)
	}

	if err := lex.expect('['); err != nil {
		return "", nil, err
	}

	var literals []string
	for {
		lit, err := lex.literal()
		if err != nil {
			return "", nil, err
		}
		literals = append(literals, lit)

		next, err := lex.punct()
		if err != nil {
			return "", nil, err
		}
		if next == ']' {
			break
		}
		if next != ',' {
			return "", nil, fmt.Errorf("expected %q or %q, got %q", ",", "]", next)
		}
	}

	if rest := strings.TrimSpace(lex.rest()); rest != "" {
		return "", nil, fmt.Errorf("unexpected trailing input %q", rest)
	}
	return ident, literals, nil
}

// condLexer is a minimal scanner over a condition string.
type condLexer struct {
	input string
	pos   int
}

func (l *condLexer) rest() string {
	return l.input[l.pos:]
}

func (l *condLexer) skipSpace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func isIdentRune(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// ident scans an identifier token.
func (l *condLexer) ident() (string, error) {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.input) && isIdentRune(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d", start)
	}
	return l.input[start:l.pos], nil
}

// expect consumes a single required punctuation character.
func (l *condLexer) expect(c byte) error {
	l.skipSpace()
	if l.pos >= len(l.input) || l.input[l.pos] != c {
		return fmt.Errorf("expected %q at offset %d", string(c), l.pos)
	}
	l.pos++
	return nil
}

// punct consumes the next punctuation character (',' or ']').
func (l *condLexer) punct() (byte, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return 0, fmt.Errorf("unexpected end of condition")
	}
	c := l.input[l.pos]
	l.pos++
	return c, nil
}

// literal scans a quoted or bare literal.
func (l *condLexer) literal() (string, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return "", fmt.Errorf("expected literal, got end of condition")
	}
	if q := l.input[l.pos]; q == '\'' || q == '"' {
		l.pos++
		start := l.pos
		for l.pos < len(l.input) && l.input[l.pos] != q {
			l.pos++
		}
		if l.pos >= len(l.input) {
			return "", fmt.Errorf("unterminated literal at offset %d", start)
		}
		lit := l.input[start:l.pos]
		l.pos++ // closing quote
		return lit, nil
	}
	return l.ident()
}
