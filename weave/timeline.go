package weave

import "sort"

// Timeline answers what was active at a given instant.
type Timeline[T any] struct {
	compare  func(a, b T) int
	segments []Segment[T]
}

// NewTimeline wraps segments, which must be ordered and contiguous as
// returned by Interweave.
func NewTimeline[T any](
	compare func(a, b T) int,
	segments []Segment[T],
) *Timeline[T] {
	return &Timeline[T]{compare: compare, segments: segments}
}

// Segments returns the segments of the timeline.
func (t *Timeline[T]) Segments() []Segment[T] {
	return t.segments
}

// Len returns the number of segments.
func (t *Timeline[T]) Len() int {
	return len(t.segments)
}

// At returns the segment holding the instant x. It returns false if x falls
// outside every segment, which happens before the first or after the last
// finite bound when nothing is active there, or between atomic events.
func (t *Timeline[T]) At(x T) (Segment[T], int, bool) {
	i := sort.Search(len(t.segments), func(i int) bool {
		return !t.segments[i].endsBefore(t.compare, x)
	})

	if i == len(t.segments) || !t.segments[i].Contains(t.compare, x) {
		return Segment[T]{}, -1, false
	}

	return t.segments[i], i, true
}

// ActiveAt returns the events active at the instant x.
func (t *Timeline[T]) ActiveAt(x T) ActiveSet {
	s, _, ok := t.At(x)
	if !ok {
		return ActiveSet{}
	}

	return s.Active
}
