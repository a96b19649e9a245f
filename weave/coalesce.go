package weave

// Coalesce merges neighbouring interval segments that have the same active
// set. Point segments are never merged, neither with intervals nor with each
// other. The input must be contiguous, as returned by a sweep. Running
// Coalesce on its own output returns an equal sequence.
func Coalesce[T any](segments []Segment[T]) []Segment[T] {
	out := make([]Segment[T], 0, len(segments))

	for _, s := range segments {
		n := len(out)
		if n > 0 && mergeable(out[n-1], s) {
			out[n-1].Upper = s.Upper
			out[n-1].UpperClosed = s.UpperClosed

			continue
		}

		out = append(out, s)
	}

	return out
}

func mergeable[T any](a, b Segment[T]) bool {
	return !a.IsPoint() && !b.IsPoint() && a.Active.Equal(b.Active)
}
