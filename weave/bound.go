package weave

import "fmt"

// Bound is one side of an event or a segment. The zero value is unbounded.
type Bound[T any] struct {
	value  T
	finite bool
}

// Finite returns a bound at v.
func Finite[T any](v T) Bound[T] {
	return Bound[T]{value: v, finite: true}
}

// Unbounded returns a bound that extends to the start or the end of time,
// depending on which side it is used for.
func Unbounded[T any]() Bound[T] {
	return Bound[T]{}
}

// IsFinite tells if the bound holds a value.
func (b Bound[T]) IsFinite() bool {
	return b.finite
}

// Value returns the value of a finite bound. The second return value is false
// for an unbounded side.
func (b Bound[T]) Value() (T, bool) {
	return b.value, b.finite
}

func (b Bound[T]) String() string {
	if !b.finite {
		return "unbounded"
	}

	return fmt.Sprint(b.value)
}
