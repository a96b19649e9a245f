// Package idgen provides generators for event IDs, used when an event source
// does not name its events.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/sarchlab/eventweave/weave"
)

// Generator produces unique event IDs.
type Generator interface {
	Generate() weave.EventID
}

// NewSequential returns a generator whose IDs are prefix followed by 1, 2, 3
// and so on. Generators are independent of each other.
func NewSequential(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

type sequentialGenerator struct {
	prefix string
	next   uint64
}

func (g *sequentialGenerator) Generate() weave.EventID {
	n := atomic.AddUint64(&g.next, 1)
	return weave.EventID(g.prefix + strconv.FormatUint(n, 10))
}

// NewGlobal returns a generator of globally unique IDs, for events that are
// combined with events from other processes.
func NewGlobal() Generator {
	return globalGenerator{}
}

type globalGenerator struct{}

func (globalGenerator) Generate() weave.EventID {
	return weave.EventID(xid.New().String())
}
