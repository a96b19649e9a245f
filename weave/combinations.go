package weave

import "iter"

// Combinations returns the active sets of the segments in chronological
// order, leaving out segments where nothing is active.
func Combinations[T any](segments []Segment[T]) []ActiveSet {
	combinations := make([]ActiveSet, 0, len(segments))
	for set := range All(segments) {
		combinations = append(combinations, set)
	}

	return combinations
}

// All iterates over the non-empty active sets of the segments.
func All[T any](segments []Segment[T]) iter.Seq[ActiveSet] {
	return func(yield func(ActiveSet) bool) {
		for _, s := range segments {
			if s.Active.IsEmpty() {
				continue
			}

			if !yield(s.Active) {
				return
			}
		}
	}
}

// FromKey turns arbitrary items into events. The key function extracts the
// identity and bounds of an item; a nil bound means the item is unbounded on
// that side.
func FromKey[I, T any](
	items []I,
	key func(item I) (id EventID, begin, end *T),
) []Event[T] {
	events := make([]Event[T], 0, len(items))

	for _, item := range items {
		id, begin, end := key(item)

		e := Event[T]{ID: id}
		if begin != nil {
			e.Begin = Finite(*begin)
		}

		if end != nil {
			e.End = Finite(*end)
		}

		events = append(events, e)
	}

	return events
}
