package ignore

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Options controls which entries a Filter excludes.
type Options struct {
	IncludeHidden bool     // keep entries whose name starts with "."
	RespectIgnore bool     // honor .gitignore files found in the tree
	Extra         []string // additional gitignore-syntax patterns
}

// Filter decides whether a path relative to the scan root is excluded.
type Filter struct {
	matcher gitignore.Matcher
	opts    Options
}

// NewFilter reads the ignore patterns of fs according to opts.
func NewFilter(fs billy.Filesystem, opts Options) (*Filter, error) {
	var patterns []gitignore.Pattern
	if opts.RespectIgnore {
		ps, err := gitignore.ReadPatterns(fs, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
		}
		patterns = append(patterns, ps...)
	}
	for _, p := range opts.Extra {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	f := &Filter{opts: opts}
	if len(patterns) > 0 {
		f.matcher = gitignore.NewMatcher(patterns)
	}
	return f, nil
}

// IsHidden reports whether name is a dot entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// Excluded reports whether the slash-separated relative path rel should be
// left out. The root itself is never excluded and .git is always excluded.
func (f *Filter) Excluded(rel string, isDir bool) bool {
	if rel == "" || rel == "." {
		return false
	}

	name := path.Base(rel)
	if name == ".git" {
		return true
	}
	if !f.opts.IncludeHidden && IsHidden(name) {
		return true
	}
	if f.matcher == nil {
		return false
	}
	return f.matcher.Match(strings.Split(rel, "/"), isDir)
}

// ExcludedPath is like Excluded but also checks every ancestor of rel, for
// callers that test paths without walking down to them.
func (f *Filter) ExcludedPath(rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if f.Excluded(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return f.Excluded(rel, isDir)
}
