// Package project derives the minimal pruned tree implied by a selection.
package project

import (
	"github.com/hayeah/jackdir/internal/selection"
	"github.com/hayeah/jackdir/internal/tree"
)

// Membership answers whether a path is selected.
type Membership interface {
	IsSelected(path string) bool
}

// Project returns the pruned copy of root restricted to included nodes, or
// nil when nothing in the tree is included.
//
// A file is included iff it is selected. A directory is included iff it is
// selected or any descendant is included. Included directories keep exactly
// their included children. Unfiltered subtrees are shared with the source
// tree rather than copied.
func Project(root *tree.Node, sel Membership) *tree.Node {
	if root == nil {
		return nil
	}

	type frame struct {
		src  *tree.Node
		next int
		kept []*tree.Node
	}

	// post-order over an explicit stack so deep trees do not grow the call stack
	stack := []*frame{{src: root}}
	var result *tree.Node
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.src.IsDir() && f.next < len(f.src.Children) {
			child := f.src.Children[f.next]
			f.next++
			stack = append(stack, &frame{src: child})
			continue
		}
		stack = stack[:len(stack)-1]

		out := include(f.src, f.kept, sel)
		if len(stack) == 0 {
			result = out
		} else if out != nil {
			parent := stack[len(stack)-1]
			parent.kept = append(parent.kept, out)
		}
	}
	return result
}

func include(n *tree.Node, kept []*tree.Node, sel Membership) *tree.Node {
	if !n.IsDir() {
		if sel.IsSelected(n.Path) {
			return n
		}
		return nil
	}

	if len(kept) == 0 && !sel.IsSelected(n.Path) {
		return nil
	}
	if sameChildren(n.Children, kept) {
		return n
	}
	if kept == nil {
		kept = []*tree.Node{}
	}
	return &tree.Node{
		Path:     n.Path,
		Name:     n.Name,
		Type:     n.Type,
		Children: kept,
	}
}

func sameChildren(children, kept []*tree.Node) bool {
	if len(children) != len(kept) {
		return false
	}
	for i := range children {
		if children[i] != kept[i] {
			return false
		}
	}
	return true
}

// Projector memoizes the last projection keyed by tree identity and the
// store's selection version.
type Projector struct {
	tree    *tree.Tree
	version uint64
	result  *tree.Node
	valid   bool
}

// Project returns the projection of t under the store's current selection,
// recomputing only when either changed since the previous call.
func (p *Projector) Project(t *tree.Tree, store *selection.Store) *tree.Node {
	if p.valid && p.tree == t && p.version == store.Version() {
		return p.result
	}
	p.tree = t
	p.version = store.Version()
	p.result = Project(t.Root(), store.Selection())
	p.valid = true
	return p.result
}

// Reset drops the memoized result.
func (p *Projector) Reset() {
	*p = Projector{}
}
