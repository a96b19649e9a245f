package weave

import (
	"iter"
	"slices"
	"strings"
)

// ActiveSet is an immutable set of event IDs. The IDs are kept sorted so that
// two sets can be compared element by element.
type ActiveSet struct {
	ids []EventID
}

// NewActiveSet creates a set holding ids. Duplicates are dropped.
func NewActiveSet(ids ...EventID) ActiveSet {
	if len(ids) == 0 {
		return ActiveSet{}
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	return ActiveSet{ids: slices.Compact(sorted)}
}

// freeze takes a snapshot of a live membership map.
func freeze(live map[EventID]struct{}) ActiveSet {
	if len(live) == 0 {
		return ActiveSet{}
	}

	ids := make([]EventID, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ActiveSet{ids: ids}
}

// union returns the sorted, duplicate-free IDs of all sets.
func union(sets ...ActiveSet) ActiveSet {
	total := 0
	for _, s := range sets {
		total += len(s.ids)
	}

	if total == 0 {
		return ActiveSet{}
	}

	ids := make([]EventID, 0, total)
	for _, s := range sets {
		ids = append(ids, s.ids...)
	}

	slices.Sort(ids)

	return ActiveSet{ids: slices.Compact(ids)}
}

// Len returns the number of events in the set.
func (s ActiveSet) Len() int {
	return len(s.ids)
}

// IsEmpty tells if no event is in the set.
func (s ActiveSet) IsEmpty() bool {
	return len(s.ids) == 0
}

// Contains tells if id is in the set.
func (s ActiveSet) Contains(id EventID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// IDs returns a sorted copy of the IDs in the set.
func (s ActiveSet) IDs() []EventID {
	return slices.Clone(s.ids)
}

// All iterates over the IDs in ascending order.
func (s ActiveSet) All() iter.Seq[EventID] {
	return slices.Values(s.ids)
}

// Equal tells if both sets hold the same IDs.
func (s ActiveSet) Equal(other ActiveSet) bool {
	return slices.Equal(s.ids, other.ids)
}

func (s ActiveSet) String() string {
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = string(id)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
