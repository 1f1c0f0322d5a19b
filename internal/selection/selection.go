// Package selection tracks which tree paths are selected.
//
// Membership is explicit per path. A directory being selected says nothing
// about its children and vice versa; the only link between them is the
// cascade performed by Toggle.
package selection

import (
	"github.com/hayeah/jackdir/internal/set"
	"github.com/hayeah/jackdir/internal/tree"
)

// Selection is an immutable set of selected paths. The zero value is empty.
type Selection struct {
	paths *set.Set[string]
}

// Of returns a selection containing exactly the given paths.
func Of(paths ...string) Selection {
	return Selection{paths: set.NewSetFromSlice(paths)}
}

// IsSelected reports whether p is a member.
func (s Selection) IsSelected(p string) bool {
	return s.paths != nil && s.paths.Contains(p)
}

// Len returns the number of selected paths.
func (s Selection) Len() int {
	if s.paths == nil {
		return 0
	}
	return s.paths.Len()
}

// Paths returns the selected paths in ascending order.
func (s Selection) Paths() []string {
	if s.paths == nil {
		return []string{}
	}
	return set.Sorted(s.paths)
}

// Equal reports whether both selections hold the same paths.
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	return s.paths.Equal(other.paths)
}

// Toggle returns a new selection in which n and every node of its subtree
// has membership checked, regardless of their previous state. Ancestors of
// n are left untouched. The receiver is not modified.
func (s Selection) Toggle(n *tree.Node, checked bool) Selection {
	var next *set.Set[string]
	if s.paths == nil {
		next = set.NewSet[string]()
	} else {
		next = s.paths.Clone()
	}

	tree.Walk(n, func(m *tree.Node, _ int) bool {
		if checked {
			next.Add(m.Path)
		} else {
			next.Remove(m.Path)
		}
		return true
	})

	return Selection{paths: next}
}
