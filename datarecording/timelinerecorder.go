package datarecording

import (
	"encoding/json"
	"fmt"

	"github.com/sarchlab/eventweave/hooking"
	"github.com/sarchlab/eventweave/weave"
)

const (
	// EventTableName is the table that holds the input events.
	EventTableName = "event"

	// SegmentTableName is the table that holds the segments, in timeline
	// order.
	SegmentTableName = "segment"
)

// EventEntry is one input event as stored in the database. Unbounded sides
// store an empty value and a false Finite flag.
type EventEntry struct {
	ID          string
	Kind        string
	Begin       string
	BeginFinite bool
	End         string
	EndFinite   bool
}

// SegmentEntry is one segment as stored in the database. Active holds the
// event IDs as a JSON array.
type SegmentEntry struct {
	Seq         int
	Kind        string
	Lower       string
	LowerFinite bool
	LowerClosed bool
	Upper       string
	UpperFinite bool
	UpperClosed bool
	Active      string
}

// ActiveIDs decodes the event IDs stored in a SegmentEntry.
func (e SegmentEntry) ActiveIDs() ([]string, error) {
	if e.Active == "" {
		return nil, nil
	}

	var ids []string

	err := json.Unmarshal([]byte(e.Active), &ids)
	if err != nil {
		return nil, fmt.Errorf("segment %d: active events: %w", e.Seq, err)
	}

	return ids, nil
}

// ActiveContains is a WHERE clause that selects the segments in which the
// event given as its single argument is active.
const ActiveContains = "EXISTS (SELECT 1 FROM json_each(Active) WHERE value = ?)"

// A TimelineRecorder writes events and segments of one weaver run into a
// DataRecorder. It is also a hook: attached to a weave.Weaver, it records
// every emitted segment.
type TimelineRecorder[T any] struct {
	recorder DataRecorder
	compare  func(a, b T) int
	format   func(v T) string
	seq      int
}

// NewTimelineRecorder creates the event and segment tables. The compare
// function classifies events and the format function turns bound values into
// text.
func NewTimelineRecorder[T any](
	recorder DataRecorder,
	compare func(a, b T) int,
	format func(v T) string,
) *TimelineRecorder[T] {
	r := &TimelineRecorder[T]{
		recorder: recorder,
		compare:  compare,
		format:   format,
	}

	recorder.CreateTable(EventTableName, EventEntry{})
	recorder.CreateTable(SegmentTableName, SegmentEntry{})

	return r
}

// RecordEvents buffers the events of all streams.
func (r *TimelineRecorder[T]) RecordEvents(streams ...[]weave.Event[T]) {
	for _, stream := range streams {
		for _, e := range stream {
			begin, beginFinite := r.bound(e.Begin)
			end, endFinite := r.bound(e.End)

			r.recorder.InsertData(EventTableName, EventEntry{
				ID:          string(e.ID),
				Kind:        weave.Classify(r.compare, e).String(),
				Begin:       begin,
				BeginFinite: beginFinite,
				End:         end,
				EndFinite:   endFinite,
			})
		}
	}
}

// RecordSegment buffers one segment. Segments are numbered in the order they
// are recorded, starting from 0.
func (r *TimelineRecorder[T]) RecordSegment(s weave.Segment[T]) {
	lower, lowerFinite := r.bound(s.Lower)
	upper, upperFinite := r.bound(s.Upper)

	active := make([]string, 0, s.Active.Len())
	for id := range s.Active.All() {
		active = append(active, string(id))
	}

	encoded, err := json.Marshal(active)
	if err != nil {
		panic(err)
	}

	r.recorder.InsertData(SegmentTableName, SegmentEntry{
		Seq:         r.seq,
		Kind:        s.Kind.String(),
		Lower:       lower,
		LowerFinite: lowerFinite,
		LowerClosed: s.LowerClosed,
		Upper:       upper,
		UpperFinite: upperFinite,
		UpperClosed: s.UpperClosed,
		Active:      string(encoded),
	})

	r.seq++
}

// RecordSegments buffers all segments.
func (r *TimelineRecorder[T]) RecordSegments(segments []weave.Segment[T]) {
	for _, s := range segments {
		r.RecordSegment(s)
	}
}

// Func records the segment carried by a HookPosSegmentEmitted context and
// ignores everything else.
func (r *TimelineRecorder[T]) Func(ctx hooking.HookCtx) {
	if ctx.Pos != weave.HookPosSegmentEmitted {
		return
	}

	s, ok := ctx.Item.(weave.Segment[T])
	if !ok {
		return
	}

	r.RecordSegment(s)
}

func (r *TimelineRecorder[T]) bound(b weave.Bound[T]) (string, bool) {
	v, ok := b.Value()
	if !ok {
		return "", false
	}

	return r.format(v), true
}
