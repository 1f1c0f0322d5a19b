// Package query implements fzf-style extended search over tree paths.
//
// A query is a space-separated list of terms, all of which must match:
//
//	foo     path contains foo
//	^foo    path starts with foo
//	foo$    path ends with foo
//	'foo    foo starts at a word boundary
//	'foo'   foo is a whole word
//	!foo    path does not contain foo (combines with the forms above)
//
// Matching is case-insensitive.
package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type boundary int

const (
	anywhere boundary = iota
	wordStart
	wholeWord
)

type term struct {
	raw    string
	text   string
	head   bool
	tail   bool
	bound  boundary
	negate bool
}

// Query is a parsed search. The zero value matches every path.
type Query struct {
	terms []term
}

// Parse parses s into a Query.
func Parse(s string) (Query, error) {
	var q Query
	for _, raw := range strings.Fields(s) {
		t, err := parseTerm(raw)
		if err != nil {
			return Query{}, err
		}
		q.terms = append(q.terms, t)
	}
	return q, nil
}

func parseTerm(raw string) (term, error) {
	t := term{raw: raw}
	p := raw

	if rest, ok := strings.CutPrefix(p, "!"); ok {
		t.negate = true
		p = rest
	}
	if rest, ok := strings.CutPrefix(p, "'"); ok {
		p = rest
		t.bound = wordStart
		if rest, ok := strings.CutSuffix(p, "'"); ok {
			p = rest
			t.bound = wholeWord
		}
	}
	if rest, ok := strings.CutPrefix(p, "^"); ok {
		t.head = true
		p = rest
	}
	if rest, ok := strings.CutSuffix(p, "$"); ok {
		t.tail = true
		p = rest
	}
	if p == "" {
		return term{}, fmt.Errorf("empty search term in %q", raw)
	}

	t.text = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	return t, nil
}

// Empty reports whether q has no terms.
func (q Query) Empty() bool {
	return len(q.terms) == 0
}

// Match reports whether path satisfies every term of q.
func (q Query) Match(path string) bool {
	normal := strings.ToLower(path)
	for _, t := range q.terms {
		if t.match(normal) == t.negate {
			return false
		}
	}
	return true
}

// Filter returns the paths matched by q, keeping their order.
func (q Query) Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (t term) match(path string) bool {
	switch {
	case t.head && t.tail:
		return path == t.text && t.boundaryAt(path, 0)
	case t.head:
		return strings.HasPrefix(path, t.text) && t.boundaryAt(path, 0)
	case t.tail:
		i := len(path) - len(t.text)
		return strings.HasSuffix(path, t.text) && t.boundaryAt(path, i)
	}

	for start := 0; start+len(t.text) <= len(path); {
		i := strings.Index(path[start:], t.text)
		if i < 0 {
			return false
		}
		i += start
		if t.boundaryAt(path, i) {
			return true
		}
		_, size := utf8.DecodeRuneInString(path[i:])
		start = i + size
	}
	return false
}

// boundaryAt checks the word boundaries required by t for an occurrence of
// t.text at byte offset i of path.
func (t term) boundaryAt(path string, i int) bool {
	if t.bound == anywhere {
		return true
	}
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(path[:i])
		if isWordRune(r) {
			return false
		}
	}
	if t.bound == wholeWord {
		if end := i + len(t.text); end < len(path) {
			r, _ := utf8.DecodeRuneInString(path[end:])
			if isWordRune(r) {
				return false
			}
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
