// Package scan builds a tree snapshot from a directory on disk.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/hayeah/jackdir/ignore"
	"github.com/hayeah/jackdir/internal/tree"
)

// ErrInvalidDirectory is returned when the scan root is missing or is not a
// directory.
var ErrInvalidDirectory = errors.New("invalid directory")

// Request describes one scan.
type Request struct {
	RootPath      string   `json:"root_path"`
	IncludeHidden bool     `json:"include_hidden"`
	RespectIgnore bool     `json:"respect_ignore_rules"`
	ExtraIgnore   []string `json:"extra_ignore,omitempty"`
}

// Opener returns the filesystem rooted at root.
type Opener func(root string) (billy.Filesystem, error)

// OSOpener opens a directory of the local filesystem.
func OSOpener(root string) (billy.Filesystem, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirectory, root)
	}
	return osfs.New(root), nil
}

// Scanner walks a filesystem into a tree.Node.
type Scanner struct {
	Open Opener
}

// New returns a Scanner over the local filesystem.
func New() *Scanner {
	return &Scanner{Open: OSOpener}
}

// Scan walks the directory named by req.RootPath. The root node has path
// "."; every other path is slash-separated and relative to the root.
// Directories that cannot be listed become empty directories.
func (s *Scanner) Scan(ctx context.Context, req Request) (*tree.Node, error) {
	open := s.Open
	if open == nil {
		open = OSOpener
	}
	fs, err := open(req.RootPath)
	if err != nil {
		return nil, err
	}

	filter, err := ignore.NewFilter(fs, ignore.Options{
		IncludeHidden: req.IncludeHidden,
		RespectIgnore: req.RespectIgnore,
		Extra:         req.ExtraIgnore,
	})
	if err != nil {
		return nil, err
	}

	root := tree.NewDir(tree.RootPath)
	root.Name = RootName(req.RootPath)

	entries, err := fs.ReadDir("")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.RootPath, err)
	}

	type pending struct {
		node    *tree.Node
		entries []os.FileInfo
	}
	stack := []pending{{root, entries}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sort.Slice(p.entries, func(i, j int) bool {
			return p.entries[i].Name() < p.entries[j].Name()
		})
		for _, e := range p.entries {
			rel := tree.JoinPath(p.node.Path, e.Name())
			if filter.Excluded(rel, e.IsDir()) {
				continue
			}
			if !e.IsDir() {
				p.node.Children = append(p.node.Children, tree.NewFile(rel))
				continue
			}
			child := tree.NewDir(rel)
			p.node.Children = append(p.node.Children, child)

			sub, err := fs.ReadDir(rel)
			if err != nil {
				// unreadable directories are kept, empty
				continue
			}
			stack = append(stack, pending{child, sub})
		}
	}

	return root, nil
}

// RootName is the display name of the root directory: "." for the working
// directory, otherwise its base name.
func RootName(root string) string {
	if root == "" || root == "." {
		return tree.RootPath
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
