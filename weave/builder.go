package weave

import "cmp"

// Builder can build Weavers.
type Builder[T any] struct {
	compare func(a, b T) int
}

// MakeBuilder creates a Builder with no comparison function set.
func MakeBuilder[T any]() Builder[T] {
	return Builder[T]{}
}

// MakeOrderedBuilder creates a Builder that uses the natural order of T.
func MakeOrderedBuilder[T cmp.Ordered]() Builder[T] {
	return Builder[T]{compare: cmp.Compare[T]}
}

// WithCompare sets the function that orders bound values. It must return a
// negative number when a < b, zero when a == b and a positive number when
// a > b.
func (b Builder[T]) WithCompare(compare func(a, b T) int) Builder[T] {
	b.compare = compare
	return b
}

// Build creates a Weaver.
func (b Builder[T]) Build() *Weaver[T] {
	if b.compare == nil {
		panic("weave: a compare function is required")
	}

	return &Weaver[T]{compare: b.compare}
}
