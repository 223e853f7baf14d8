package types

import (
	"github.com/goccy/go-json"
)

// Set is a small insertion-ordered generic set used for schema property types
// and supported sync modes.
type Set[T comparable] struct {
	hash  map[T]struct{}
	order []T
}

func NewSet[T comparable](elems ...T) *Set[T] {
	set := &Set[T]{hash: make(map[T]struct{})}
	set.Insert(elems...)
	return set
}

func (s *Set[T]) Insert(elems ...T) {
	if s.hash == nil {
		s.hash = make(map[T]struct{})
	}
	for _, elem := range elems {
		if _, found := s.hash[elem]; !found {
			s.hash[elem] = struct{}{}
			s.order = append(s.order, elem)
		}
	}
}

func (s *Set[T]) Exists(elem T) bool {
	if s == nil {
		return false
	}
	_, found := s.hash[elem]
	return found
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *Set[T]) Array() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Array())
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var elems []T
	if err := json.Unmarshal(data, &elems); err != nil {
		// schema properties may carry a scalar type instead of an array
		var single T
		if serr := json.Unmarshal(data, &single); serr != nil {
			return err
		}
		elems = []T{single}
	}
	*s = *NewSet(elems...)
	return nil
}
