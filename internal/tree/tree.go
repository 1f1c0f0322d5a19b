// Package tree holds the immutable in-memory snapshot of one directory scan.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Type is the kind of a tree entry.
type Type string

const (
	File      Type = "file"
	Directory Type = "directory"
)

// RootPath is the path given to the root of a scan relative to itself.
const RootPath = "."

var (
	ErrDuplicatePath = errors.New("duplicate path")
	ErrMalformed     = errors.New("malformed tree")
)

// Node represents one file or directory entry.
type Node struct {
	Path     string  `json:"path" yaml:"path"`
	Name     string  `json:"name" yaml:"name"`
	Type     Type    `json:"type" yaml:"type"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

type fileFields struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

type dirFields struct {
	Path     string  `json:"path" yaml:"path"`
	Name     string  `json:"name" yaml:"name"`
	Type     Type    `json:"type" yaml:"type"`
	Children []*Node `json:"children" yaml:"children"`
}

// fields picks the encoded shape of n. Directories always carry a children
// list, empty or not; files never do.
func (n Node) fields() any {
	if !n.IsDir() {
		return fileFields{Path: n.Path, Name: n.Name, Type: n.Type}
	}
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	return dirFields{Path: n.Path, Name: n.Name, Type: n.Type, Children: children}
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.fields())
}

func (n Node) MarshalYAML() (any, error) {
	return n.fields(), nil
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Type == Directory
}

// NewFile returns a file node whose name is the last segment of p.
func NewFile(p string) *Node {
	return &Node{Path: p, Name: baseName(p), Type: File}
}

// NewDir returns a directory node with the given children.
func NewDir(p string, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Path: p, Name: baseName(p), Type: Directory, Children: children}
}

// JoinPath composes a child path from its parent path and its name.
// Children of the root carry no "./" prefix.
func JoinPath(parent, name string) string {
	if parent == "" || parent == RootPath {
		return name
	}
	return parent + "/" + name
}

func baseName(p string) string {
	if p == "" || p == RootPath {
		return RootPath
	}
	return path.Base(p)
}

// Tree is a read-only scan snapshot with a path index built once at ingestion.
// Replacing a Tree is always a whole-snapshot replacement.
type Tree struct {
	root  *Node
	index map[string]*Node
}

// New indexes root. The caller hands over ownership of root; it must not be
// mutated afterwards.
func New(root *Node) *Tree {
	t := &Tree{
		root:  root,
		index: make(map[string]*Node),
	}
	Walk(root, func(n *Node, _ int) bool {
		t.index[n.Path] = n
		return true
	})
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Lookup finds the node with the given path.
func (t *Tree) Lookup(p string) (*Node, bool) {
	n, ok := t.index[p]
	return n, ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.index)
}

// Walk visits root and its descendants in pre-order using an explicit stack.
// Children are visited in their stored order. Returning false from fn skips
// the node's subtree.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	if root == nil {
		return
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		// push in reverse so the first child is visited first
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Validate checks the well-formedness contract the rest of the core assumes:
// unique paths, no cycles, files without children, and children whose paths
// extend their parent's path by exactly one segment.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrMalformed)
	}

	seen := make(map[string]bool)
	visited := make(map[*Node]bool)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[n] {
			return fmt.Errorf("%w: cycle at %s", ErrMalformed, n.Path)
		}
		visited[n] = true

		if seen[n.Path] {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, n.Path)
		}
		seen[n.Path] = true

		switch n.Type {
		case File:
			if len(n.Children) > 0 {
				return fmt.Errorf("%w: file %s has children", ErrMalformed, n.Path)
			}
		case Directory:
		default:
			return fmt.Errorf("%w: unknown type %q at %s", ErrMalformed, n.Type, n.Path)
		}

		for _, c := range n.Children {
			if c == nil {
				return fmt.Errorf("%w: nil child under %s", ErrMalformed, n.Path)
			}
			if !isChildPath(n.Path, c.Path) {
				return fmt.Errorf("%w: %s is not a child path of %s", ErrMalformed, c.Path, n.Path)
			}
			stack = append(stack, c)
		}
	}
	return nil
}

func isChildPath(parent, child string) bool {
	rest := child
	if parent != "" && parent != RootPath {
		var ok bool
		rest, ok = strings.CutPrefix(child, parent+"/")
		if !ok {
			return false
		}
	}
	return rest != "" && !strings.Contains(rest, "/")
}
