package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hayeah/jackdir/internal/query"
	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/internal/tree"
)

// GlobMatcher uses standard glob patterns (including '**') to match tree paths
type GlobMatcher struct {
	Pattern string
}

func NewGlobMatcher(pattern string) (GlobMatcher, error) {
	pattern = cleanPath(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return GlobMatcher{}, fmt.Errorf("invalid glob pattern '%s'", pattern)
	}
	return GlobMatcher{Pattern: pattern}, nil
}

// Match returns the paths of t matched by the pattern, in tree order.
func (m GlobMatcher) Match(t *tree.Tree) []string {
	var matches []string
	tree.Walk(t.Root(), func(n *tree.Node, _ int) bool {
		if n.Path == tree.RootPath {
			return true
		}
		// the pattern was validated in NewGlobMatcher
		if ok, _ := doublestar.Match(m.Pattern, n.Path); ok {
			matches = append(matches, n.Path)
		}
		return true
	})
	return matches
}

// cleanPath turns user input like "./src/" into the tree path "src".
func cleanPath(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return tree.RootPath
	}
	return p
}

// applySelector checks every path named by sel on sess. Directories cascade.
func applySelector(sess *session.Session, sel Selector) error {
	t := sess.Tree()
	if t == nil {
		return session.ErrNoTree
	}

	if sel.All {
		if _, err := sess.Toggle(tree.RootPath, true); err != nil {
			return err
		}
	}

	for _, p := range sel.Paths {
		if _, err := sess.Toggle(cleanPath(p), true); err != nil {
			return err
		}
	}

	for _, g := range sel.Globs {
		m, err := NewGlobMatcher(g)
		if err != nil {
			return err
		}
		matches := m.Match(t)
		if len(matches) == 0 {
			return fmt.Errorf("no paths match glob '%s'", g)
		}
		if err := checkAll(sess, matches); err != nil {
			return err
		}
	}

	if len(sel.Queries) > 0 {
		all := treePaths(t)
		for _, s := range sel.Queries {
			q, err := query.Parse(s)
			if err != nil {
				return err
			}
			matches := q.Filter(all)
			if len(matches) == 0 {
				return fmt.Errorf("no paths match query '%s'", s)
			}
			if err := checkAll(sess, matches); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkAll(sess *session.Session, paths []string) error {
	_, err := sess.ToggleAll(paths, true)
	return err
}

// treePaths lists every path of t except the root, in tree order.
func treePaths(t *tree.Tree) []string {
	var paths []string
	tree.Walk(t.Root(), func(n *tree.Node, _ int) bool {
		if n.Path != tree.RootPath {
			paths = append(paths, n.Path)
		}
		return true
	})
	return paths
}
