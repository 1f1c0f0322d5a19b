package selection

import "github.com/hayeah/jackdir/internal/tree"

// maxHistory bounds the undo stack.
const maxHistory = 100

// Store owns the current Selection of an interactive session. It assumes a
// single writer.
type Store struct {
	current Selection
	version uint64

	undo []Selection
	redo []Selection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// IsSelected reports whether p is selected.
func (s *Store) IsSelected(p string) bool {
	return s.current.IsSelected(p)
}

// Selection returns the current selection value.
func (s *Store) Selection() Selection {
	return s.current
}

// SelectedPaths lists the selected paths in ascending order.
func (s *Store) SelectedPaths() []string {
	return s.current.Paths()
}

// Len returns the number of selected paths.
func (s *Store) Len() int {
	return s.current.Len()
}

// Version increases every time the selection changes. It can be used to key
// caches derived from the selection.
func (s *Store) Version() uint64 {
	return s.version
}

// Toggle cascades checked over n's subtree. It reports whether the selection
// changed; a no-op toggle does not touch the history.
func (s *Store) Toggle(n *tree.Node, checked bool) bool {
	next := s.current.Toggle(n, checked)
	if next.Equal(s.current) {
		return false
	}
	s.push(next)
	return true
}

// ToggleAll cascades checked over every node's subtree as a single change,
// so one Undo reverts the whole batch.
func (s *Store) ToggleAll(nodes []*tree.Node, checked bool) bool {
	next := s.current
	for _, n := range nodes {
		next = next.Toggle(n, checked)
	}
	if next.Equal(s.current) {
		return false
	}
	s.push(next)
	return true
}

func (s *Store) push(next Selection) {
	s.undo = append(s.undo, s.current)
	if len(s.undo) > maxHistory {
		s.undo = s.undo[len(s.undo)-maxHistory:]
	}
	s.redo = s.redo[:0]
	s.current = next
	s.version++
}

// Undo restores the selection before the last change.
func (s *Store) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.current)
	s.current = prev
	s.version++
	return true
}

// Redo re-applies the last undone change.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.current)
	s.current = next
	s.version++
	return true
}

// Clear empties the selection and drops its history.
func (s *Store) Clear() {
	s.current = Selection{}
	s.undo = nil
	s.redo = nil
	s.version++
}
