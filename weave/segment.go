package weave

import "fmt"

// SegmentKind tells whether a segment spans a range or a single instant.
type SegmentKind int

// Segment kinds.
const (
	SegmentInterval SegmentKind = iota
	SegmentPoint
)

func (k SegmentKind) String() string {
	if k == SegmentPoint {
		return "point"
	}

	return "interval"
}

// Segment is a maximal part of the timeline over which the set of active
// events does not change.
//
// For an interval segment, an unbounded Lower is the start of time and an
// unbounded Upper is the end of time. LowerClosed and UpperClosed tell whether
// the finite breakpoint on that side belongs to this segment. A point segment
// has equal finite bounds, both closed.
type Segment[T any] struct {
	Kind        SegmentKind
	Lower       Bound[T]
	Upper       Bound[T]
	LowerClosed bool
	UpperClosed bool
	Active      ActiveSet
}

// IsPoint tells if the segment is a single instant.
func (s Segment[T]) IsPoint() bool {
	return s.Kind == SegmentPoint
}

// Notation renders the segment bounds in interval notation, such as "[1, 3)",
// "(-inf, 2)" or "{4}".
func (s Segment[T]) Notation() string {
	return s.NotationFunc(func(v T) string { return fmt.Sprint(v) })
}

// NotationFunc is like Notation but renders bound values with format.
func (s Segment[T]) NotationFunc(format func(T) string) string {
	lowerValue, lowerFinite := s.Lower.Value()
	upperValue, upperFinite := s.Upper.Value()

	if s.IsPoint() {
		return "{" + format(lowerValue) + "}"
	}

	open, lower := "(", "-inf"
	if lowerFinite {
		lower = format(lowerValue)
		if s.LowerClosed {
			open = "["
		}
	}

	closing, upper := ")", "+inf"
	if upperFinite {
		upper = format(upperValue)
		if s.UpperClosed {
			closing = "]"
		}
	}

	return open + lower + ", " + upper + closing
}

func (s Segment[T]) String() string {
	return fmt.Sprintf("%s %s", s.Notation(), s.Active)
}

func pointSegment[T any](at T, active ActiveSet) Segment[T] {
	return Segment[T]{
		Kind:        SegmentPoint,
		Lower:       Finite(at),
		Upper:       Finite(at),
		LowerClosed: true,
		UpperClosed: true,
		Active:      active,
	}
}

func intervalSegment[T any](
	lower, upper Bound[T],
	lowerClosed bool,
	active ActiveSet,
) Segment[T] {
	return Segment[T]{
		Kind:        SegmentInterval,
		Lower:       lower,
		Upper:       upper,
		LowerClosed: lowerClosed,
		Active:      active,
	}
}

// endsBefore tells if every instant of s lies before x.
func (s Segment[T]) endsBefore(compare func(a, b T) int, x T) bool {
	upper, ok := s.Upper.Value()
	if !ok {
		return false
	}

	c := compare(upper, x)

	return c < 0 || (c == 0 && !s.UpperClosed)
}

// startsAfter tells if every instant of s lies after x.
func (s Segment[T]) startsAfter(compare func(a, b T) int, x T) bool {
	lower, ok := s.Lower.Value()
	if !ok {
		return false
	}

	c := compare(lower, x)

	return c > 0 || (c == 0 && !s.LowerClosed)
}

// Contains tells if the instant x lies in s.
func (s Segment[T]) Contains(compare func(a, b T) int, x T) bool {
	return !s.endsBefore(compare, x) && !s.startsAfter(compare, x)
}
