package weave

// EventID identifies an event. IDs are assigned by the caller and must be
// unique within one call to Interweave.
type EventID string

// Event is something that is active from Begin to End, both inclusive.
type Event[T any] struct {
	ID    EventID
	Begin Bound[T]
	End   Bound[T]
}

// Bounded creates an event active from begin to end.
func Bounded[T any](id EventID, begin, end T) Event[T] {
	return Event[T]{ID: id, Begin: Finite(begin), End: Finite(end)}
}

// Atomic creates an event that is active at a single instant.
func Atomic[T any](id EventID, at T) Event[T] {
	return Event[T]{ID: id, Begin: Finite(at), End: Finite(at)}
}

// OpenStart creates an event that has been active since the start of time.
func OpenStart[T any](id EventID, end T) Event[T] {
	return Event[T]{ID: id, End: Finite(end)}
}

// OpenEnd creates an event that stays active until the end of time.
func OpenEnd[T any](id EventID, begin T) Event[T] {
	return Event[T]{ID: id, Begin: Finite(begin)}
}

// Always creates an event that is active over the whole timeline.
func Always[T any](id EventID) Event[T] {
	return Event[T]{ID: id}
}

// Kind is the category of an event, derived from its bounds.
type Kind int

// Event kinds.
const (
	KindBounded Kind = iota
	KindAtomic
	KindOpenStart
	KindOpenEnd
	KindUnbounded
)

func (k Kind) String() string {
	switch k {
	case KindBounded:
		return "bounded"
	case KindAtomic:
		return "atomic"
	case KindOpenStart:
		return "open-start"
	case KindOpenEnd:
		return "open-end"
	case KindUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Classify returns the kind of e. The event is assumed to be valid, which
// means that its begin is not after its end.
func Classify[T any](compare func(a, b T) int, e Event[T]) Kind {
	begin, hasBegin := e.Begin.Value()
	end, hasEnd := e.End.Value()

	switch {
	case !hasBegin && !hasEnd:
		return KindUnbounded
	case !hasBegin:
		return KindOpenStart
	case !hasEnd:
		return KindOpenEnd
	case compare(begin, end) == 0:
		return KindAtomic
	default:
		return KindBounded
	}
}
