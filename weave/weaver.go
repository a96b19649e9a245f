package weave

import (
	"cmp"

	"github.com/sarchlab/eventweave/hooking"
)

// HookPosEventRejected marks the moment an event fails validation. The hook
// item is the event and the detail is the *InvalidEventError.
var HookPosEventRejected = &hooking.HookPos{Name: "Event Rejected"}

// HookPosSegmentEmitted marks each segment of a successful result, in order.
// The hook item is the segment.
var HookPosSegmentEmitted = &hooking.HookPos{Name: "Segment Emitted"}

// A Weaver interweaves events whose bounds are ordered by a comparison
// function. Hooks must be registered before the Weaver is shared between
// goroutines; Interweave itself keeps no state between calls.
type Weaver[T any] struct {
	hooking.HookableBase

	compare func(a, b T) int
}

// Interweave merges the streams using the natural order of T.
func Interweave[T cmp.Ordered](streams ...[]Event[T]) ([]Segment[T], error) {
	return MakeOrderedBuilder[T]().Build().Interweave(streams...)
}

// Compare orders two bound values the way the Weaver does.
func (w *Weaver[T]) Compare(a, b T) int {
	return w.compare(a, b)
}

// Interweave merges all events of all streams into one timeline partition.
// Which stream an event comes from does not matter. If any event is invalid,
// no segment is returned.
func (w *Weaver[T]) Interweave(streams ...[]Event[T]) ([]Segment[T], error) {
	err := w.validate(streams)
	if err != nil {
		return nil, err
	}

	segments := Coalesce(w.sweep(w.classify(streams)))

	if w.NumHooks() > 0 {
		for _, s := range segments {
			w.InvokeHook(hooking.HookCtx{
				Domain: w,
				Pos:    HookPosSegmentEmitted,
				Item:   s,
			})
		}
	}

	return segments, nil
}

// Timeline interweaves the streams and wraps the result for lookups.
func (w *Weaver[T]) Timeline(streams ...[]Event[T]) (*Timeline[T], error) {
	segments, err := w.Interweave(streams...)
	if err != nil {
		return nil, err
	}

	return NewTimeline(w.compare, segments), nil
}

func (w *Weaver[T]) validate(streams [][]Event[T]) error {
	seen := make(map[EventID]struct{})

	for _, stream := range streams {
		for _, e := range stream {
			reason := w.problemOf(e, seen)
			if reason == "" {
				seen[e.ID] = struct{}{}
				continue
			}

			err := &InvalidEventError[T]{Event: e, Reason: reason}
			w.InvokeHook(hooking.HookCtx{
				Domain: w,
				Pos:    HookPosEventRejected,
				Item:   e,
				Detail: err,
			})

			return err
		}
	}

	return nil
}

func (w *Weaver[T]) problemOf(e Event[T], seen map[EventID]struct{}) string {
	if _, duplicated := seen[e.ID]; duplicated {
		return "duplicate event id"
	}

	begin, hasBegin := e.Begin.Value()
	end, hasEnd := e.End.Value()

	if hasBegin && hasEnd && w.compare(begin, end) > 0 {
		return "begin is after end"
	}

	return ""
}
