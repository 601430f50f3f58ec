package inventory

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the canonical key for an item name: whitespace runs collapse to a
// single space and letters are case-folded.
//
// Postcondition: Fold(a) == Fold(b) iff a and b name the same item.
func Fold(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Set is an ordered, duplicate-free collection of item names. Names compare by
// Fold; the spelling of the first Add is kept for display.
//
// A Set has a single owner and is not safe for concurrent use.
type Set struct {
	names []string
	index map[string]int
}

// NewSet returns a Set containing names in order, skipping duplicates.
//
// Postcondition: Len() equals the number of distinct folded names.
func NewSet(names ...string) *Set {
	s := &Set{index: make(map[string]int, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name if no equal name is present.
//
// Precondition: name is non-blank.
// Postcondition: Contains(name) is true; returns false if name was already present.
func (s *Set) Add(name string) bool {
	key := Fold(name)
	if key == "" {
		return false
	}
	if _, ok := s.index[key]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[key] = len(s.names)
	s.names = append(s.names, strings.Join(strings.Fields(name), " "))
	return true
}

// Remove deletes name, preserving the order of the remaining names.
//
// Postcondition: Contains(name) is false; returns false if name was absent.
func (s *Set) Remove(name string) bool {
	key := Fold(name)
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.names = slices.Delete(s.names, i, i+1)
	delete(s.index, key)
	for j := i; j < len(s.names); j++ {
		s.index[Fold(s.names[j])] = j
	}
	return true
}

// Contains reports whether name is present.
func (s *Set) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[Fold(name)]
	return ok
}

// Lookup returns the stored spelling of name.
func (s *Set) Lookup(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[Fold(name)]
	if !ok {
		return "", false
	}
	return s.names[i], true
}

// Len returns the number of names.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns a copy of the names in insertion order.
//
// Postcondition: mutations of the returned slice do not affect s.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	if s == nil {
		return NewSet()
	}
	return NewSet(s.names...)
}
