// Package weave merges collections of time-bounded events into a single
// timeline partition.
//
// Every event carries an inclusive begin and end bound, either of which may be
// missing. Interweave sweeps over all finite bounds in order and produces a
// gapless, non-overlapping sequence of segments. Each segment is tagged with
// the exact set of events active throughout it. A segment is either an
// interval between two breakpoints or a single instant; instants are emitted
// where an atomic event sits, or where one event ends exactly as another
// begins.
//
// The ordered value type is opaque. Interweave works for any cmp.Ordered
// type, and a Weaver built with a comparison function works for anything
// else, such as time.Time.
package weave
