package eventio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/eventweave/weave"
)

// Format names an output format for segments.
type Format string

// Supported output formats.
const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat checks that name is a supported format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", name)
	}
}

// SegmentRecord is the flat, serializable form of a segment. A nil bound is
// unbounded.
type SegmentRecord struct {
	Kind        string   `json:"kind"`
	Lower       *string  `json:"lower"`
	LowerClosed bool     `json:"lower_closed"`
	Upper       *string  `json:"upper"`
	UpperClosed bool     `json:"upper_closed"`
	Notation    string   `json:"notation"`
	Active      []string `json:"active"`
}

// Record flattens a segment, printing values with the codec.
func Record[T any](codec Codec[T], s weave.Segment[T]) SegmentRecord {
	rec := SegmentRecord{
		Kind:        s.Kind.String(),
		LowerClosed: s.LowerClosed,
		UpperClosed: s.UpperClosed,
		Notation:    s.NotationFunc(codec.Format),
		Active:      make([]string, 0, s.Active.Len()),
	}

	if v, ok := s.Lower.Value(); ok {
		text := codec.Format(v)
		rec.Lower = &text
	}

	if v, ok := s.Upper.Value(); ok {
		text := codec.Format(v)
		rec.Upper = &text
	}

	for id := range s.Active.All() {
		rec.Active = append(rec.Active, string(id))
	}

	return rec
}

// Records flattens all segments.
func Records[T any](codec Codec[T], segments []weave.Segment[T]) []SegmentRecord {
	records := make([]SegmentRecord, len(segments))
	for i, s := range segments {
		records[i] = Record(codec, s)
	}

	return records
}

// Writer prints segments.
type Writer[T any] struct {
	codec Codec[T]
}

// NewWriter creates a Writer that prints values with codec.
func NewWriter[T any](codec Codec[T]) *Writer[T] {
	return &Writer[T]{codec: codec}
}

// Write prints the segments to out in the given format.
func (w *Writer[T]) Write(
	out io.Writer,
	format Format,
	segments []weave.Segment[T],
) error {
	records := Records(w.codec, segments)

	switch format {
	case FormatTable:
		return writeTable(out, records)
	case FormatCSV:
		return writeCSV(out, records)
	case FormatJSON:
		return writeJSON(out, records)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeTable(out io.Writer, records []SegmentRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SEGMENT\tKIND\tACTIVE")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t{%s}\n",
			r.Notation, r.Kind, strings.Join(r.Active, ", "))
	}

	return tw.Flush()
}

func writeCSV(out io.Writer, records []SegmentRecord) error {
	cw := csv.NewWriter(out)

	err := cw.Write([]string{
		"kind", "lower", "lower_closed", "upper", "upper_closed", "active",
	})
	if err != nil {
		return err
	}

	for _, r := range records {
		err = cw.Write([]string{
			r.Kind,
			deref(r.Lower),
			strconv.FormatBool(r.LowerClosed),
			deref(r.Upper),
			strconv.FormatBool(r.UpperClosed),
			strings.Join(r.Active, ";"),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeJSON(out io.Writer, records []SegmentRecord) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
