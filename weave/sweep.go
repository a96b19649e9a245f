package weave

import "slices"

type boundary[T any] struct {
	at T
	id EventID
}

// classified holds the events sorted into what the sweep needs to know about
// them. Open-start and unbounded events are active before the first
// breakpoint; every other bound is attached to the breakpoint it sits on.
type classified[T any] struct {
	leading   []EventID
	starts    []boundary[T]
	ends      []boundary[T]
	atomics   []boundary[T]
	numEvents int
	allAtomic bool
}

func (w *Weaver[T]) classify(streams [][]Event[T]) classified[T] {
	c := classified[T]{allAtomic: true}

	for _, stream := range streams {
		for _, e := range stream {
			c.numEvents++

			kind := Classify(w.compare, e)
			if kind != KindAtomic {
				c.allAtomic = false
			}

			begin, _ := e.Begin.Value()
			end, _ := e.End.Value()

			switch kind {
			case KindUnbounded:
				c.leading = append(c.leading, e.ID)
			case KindOpenStart:
				c.leading = append(c.leading, e.ID)
				c.ends = append(c.ends, boundary[T]{at: end, id: e.ID})
			case KindOpenEnd:
				c.starts = append(c.starts, boundary[T]{at: begin, id: e.ID})
			case KindAtomic:
				c.atomics = append(c.atomics, boundary[T]{at: begin, id: e.ID})
			case KindBounded:
				c.starts = append(c.starts, boundary[T]{at: begin, id: e.ID})
				c.ends = append(c.ends, boundary[T]{at: end, id: e.ID})
			}
		}
	}

	return c
}

// collectBreakpoints returns every finite bound once, in ascending order.
func (w *Weaver[T]) collectBreakpoints(c classified[T]) []T {
	points := make([]T, 0, len(c.starts)+len(c.ends)+len(c.atomics))

	for _, list := range [][]boundary[T]{c.starts, c.ends, c.atomics} {
		for _, b := range list {
			points = append(points, b.at)
		}
	}

	slices.SortFunc(points, w.compare)

	return slices.CompactFunc(points, func(a, b T) bool {
		return w.compare(a, b) == 0
	})
}

// bucket groups the boundaries by the index of their breakpoint.
func (w *Weaver[T]) bucket(points []T, list []boundary[T]) [][]EventID {
	buckets := make([][]EventID, len(points))

	for _, b := range list {
		i, _ := slices.BinarySearchFunc(points, b.at, w.compare)
		buckets[i] = append(buckets[i], b.id)
	}

	return buckets
}

// sweep walks the breakpoints in order while keeping the set of events active
// on the open span right of the current breakpoint.
//
// The span before the first breakpoint and the span after the last one are
// only emitted when some event is active there. Spans between breakpoints are
// always emitted, even when empty, unless every event is atomic.
//
// A breakpoint gets its own point segment when an atomic event sits on it, or
// when the set active at that instant differs from the sets on both sides.
// The latter happens when one event ends exactly where another begins.
// Otherwise the breakpoint is the closed end of the neighbouring span whose
// set matches, preferring the left one.
func (w *Weaver[T]) sweep(c classified[T]) []Segment[T] {
	if c.numEvents == 0 {
		return []Segment[T]{}
	}

	points := w.collectBreakpoints(c)
	if len(points) == 0 {
		return []Segment[T]{
			intervalSegment(
				Unbounded[T](), Unbounded[T](), false,
				NewActiveSet(c.leading...),
			),
		}
	}

	starts := w.bucket(points, c.starts)
	ends := w.bucket(points, c.ends)
	atomics := w.bucket(points, c.atomics)

	live := make(map[EventID]struct{}, c.numEvents)
	for _, id := range c.leading {
		live[id] = struct{}{}
	}

	segments := make([]Segment[T], 0, 2*len(points)+1)

	left := freeze(live)
	leftEmitted := !left.IsEmpty()

	if leftEmitted {
		segments = append(segments, intervalSegment(
			Unbounded[T](), Finite(points[0]), false, left))
	}

	for i, p := range points {
		for _, id := range ends[i] {
			delete(live, id)
		}

		for _, id := range starts[i] {
			live[id] = struct{}{}
		}

		right := freeze(live)

		upper := Unbounded[T]()
		rightEmitted := !right.IsEmpty()

		if i+1 < len(points) {
			upper = Finite(points[i+1])
			rightEmitted = !c.allAtomic
		}

		instant := union(left, right, NewActiveSet(atomics[i]...))
		lowerClosed := false

		switch {
		case len(atomics[i]) > 0:
			segments = append(segments, pointSegment(p, instant))
		case leftEmitted && instant.Equal(left):
			segments[len(segments)-1].UpperClosed = true
		case rightEmitted && instant.Equal(right):
			lowerClosed = true
		default:
			segments = append(segments, pointSegment(p, instant))
		}

		if rightEmitted {
			segments = append(segments,
				intervalSegment(Finite(p), upper, lowerClosed, right))
		}

		left, leftEmitted = right, rightEmitted
	}

	return segments
}
