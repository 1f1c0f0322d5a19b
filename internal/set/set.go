package set

import (
	"cmp"
	"slices"
)

// Set is a generic set data structure that stores unique values of type T
type Set[T comparable] struct {
	items map[T]struct{}
}

// NewSet creates a new empty set
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{
		items: make(map[T]struct{}),
	}
}

// NewSetFromSlice creates a new set with values from the given slice
func NewSetFromSlice[T comparable](values []T) *Set[T] {
	s := NewSet[T]()
	s.AddValues(values)
	return s
}

// Add adds a value to the set
func (s *Set[T]) Add(value T) {
	s.items[value] = struct{}{}
}

// AddValues adds multiple values to the set
func (s *Set[T]) AddValues(values []T) {
	for _, value := range values {
		s.Add(value)
	}
}

// Remove removes a value from the set
func (s *Set[T]) Remove(value T) {
	delete(s.items, value)
}

// Contains checks if the set contains a value
func (s *Set[T]) Contains(value T) bool {
	_, exists := s.items[value]
	return exists
}

// Len returns the number of elements in the set
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Clear removes all elements from the set
func (s *Set[T]) Clear() {
	s.items = make(map[T]struct{})
}

// Clone returns an independent copy of the set
func (s *Set[T]) Clone() *Set[T] {
	c := &Set[T]{items: make(map[T]struct{}, len(s.items))}
	for value := range s.items {
		c.items[value] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same values
func (s *Set[T]) Equal(other *Set[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	for value := range s.items {
		if !other.Contains(value) {
			return false
		}
	}
	return true
}

// Values returns a slice containing all values in the set (in no particular order)
func (s *Set[T]) Values() []T {
	values := make([]T, 0, len(s.items))
	for value := range s.items {
		values = append(values, value)
	}
	return values
}

// Sorted returns the values of an ordered set in ascending order
func Sorted[T cmp.Ordered](s *Set[T]) []T {
	values := s.Values()
	slices.Sort(values)
	return values
}
