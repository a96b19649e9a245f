// Package occupancy tells for how long each combination of events held on a
// timeline, and for how long anything at all was active.
package occupancy

import (
	"strconv"
	"strings"

	"github.com/sarchlab/eventweave/weave"
)

// Combination is the accumulated time of one exact set of active events.
type Combination struct {
	Active weave.ActiveSet

	// Total is the summed width of the finite interval segments that carry
	// this set.
	Total float64

	// Intervals and Instants count the interval and point segments that carry
	// this set.
	Intervals int
	Instants  int

	// Unbounded is true if the set also holds on a segment that extends to
	// the start or the end of time; that part is not included in Total.
	Unbounded bool
}

// Report summarizes a timeline.
type Report struct {
	// Combinations lists every distinct set in the order it first appears,
	// including the empty set of gaps.
	Combinations []Combination

	// BusyTime is the width of the finite interval segments where at least
	// one event is active. Overlapping events are counted once.
	BusyTime float64

	// IdleTime is the width of the finite gaps where nothing is active.
	IdleTime float64
}

// Analyze walks the segments, measuring each finite interval with width.
func Analyze[T any](
	segments []weave.Segment[T],
	width func(lower, upper T) float64,
) Report {
	r := Report{}
	index := make(map[string]int)

	for _, s := range segments {
		key := setKey(s.Active)

		i, found := index[key]
		if !found {
			i = len(r.Combinations)
			index[key] = i
			r.Combinations = append(r.Combinations, Combination{Active: s.Active})
		}

		c := &r.Combinations[i]

		if s.IsPoint() {
			c.Instants++
			continue
		}

		c.Intervals++

		lower, lowerFinite := s.Lower.Value()
		upper, upperFinite := s.Upper.Value()

		if !lowerFinite || !upperFinite {
			c.Unbounded = true
			continue
		}

		w := width(lower, upper)
		c.Total += w

		if s.Active.IsEmpty() {
			r.IdleTime += w
		} else {
			r.BusyTime += w
		}
	}

	return r
}

// Longest returns the non-empty combination with the largest total. The
// second return value is false if there is none.
func (r Report) Longest() (Combination, bool) {
	best, found := Combination{}, false

	for _, c := range r.Combinations {
		if c.Active.IsEmpty() {
			continue
		}

		if !found || c.Total > best.Total {
			best, found = c, true
		}
	}

	return best, found
}

// setKey identifies a set. Each ID is prefixed with its length, so distinct
// sets get distinct keys whatever characters the IDs hold.
func setKey(s weave.ActiveSet) string {
	var b strings.Builder

	for id := range s.All() {
		b.WriteString(strconv.Itoa(len(id)))
		b.WriteByte(':')
		b.WriteString(string(id))
	}

	return b.String()
}
