// Package eventio reads events from files and writes interwoven segments in
// human and machine readable forms.
package eventio

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Codec describes one type of bound value: how to parse it from text, how to
// print it back, how to order it, and how wide the span between two values is.
// Width is nil when the type has no meaningful distance.
type Codec[T any] struct {
	Name    string
	Parse   func(s string) (T, error)
	Format  func(v T) string
	Compare func(a, b T) int
	Width   func(lower, upper T) float64
}

// IntCodec handles signed integers.
func IntCodec() Codec[int64] {
	return Codec[int64]{
		Name: "int",
		Parse: func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		},
		Format: func(v int64) string {
			return strconv.FormatInt(v, 10)
		},
		Compare: cmp.Compare[int64],
		Width: func(lower, upper int64) float64 {
			return float64(upper) - float64(lower)
		},
	}
}

// FloatCodec handles floating point numbers. NaN is rejected because it has
// no place in a total order.
func FloatCodec() Codec[float64] {
	return Codec[float64]{
		Name: "float",
		Parse: func(s string) (float64, error) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, err
			}

			if math.IsNaN(v) {
				return 0, fmt.Errorf("NaN is not an ordered value")
			}

			return v, nil
		},
		Format: func(v float64) string {
			return strconv.FormatFloat(v, 'g', -1, 64)
		},
		Compare: cmp.Compare[float64],
		Width: func(lower, upper float64) float64 {
			return upper - lower
		},
	}
}

// TimeCodec handles RFC 3339 timestamps. Widths are in seconds.
func TimeCodec() Codec[time.Time] {
	return Codec[time.Time]{
		Name: "time",
		Parse: func(s string) (time.Time, error) {
			return time.Parse(time.RFC3339Nano, s)
		},
		Format: func(v time.Time) string {
			return v.Format(time.RFC3339Nano)
		},
		Compare: func(a, b time.Time) int {
			return a.Compare(b)
		},
		Width: func(lower, upper time.Time) float64 {
			return upper.Sub(lower).Seconds()
		},
	}
}

// StringCodec orders plain strings lexicographically.
func StringCodec() Codec[string] {
	return Codec[string]{
		Name: "string",
		Parse: func(s string) (string, error) {
			return s, nil
		},
		Format: func(v string) string {
			return v
		},
		Compare: strings.Compare,
	}
}

// isUnboundedText tells if a cell holds one of the spellings of a missing
// bound.
func isUnboundedText(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "-", "null", "~":
		return true
	default:
		return false
	}
}
