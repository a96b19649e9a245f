package eventio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/eventweave/idgen"
	"github.com/sarchlab/eventweave/weave"
)

// ErrUnknownFormat is returned for files whose extension is not recognized.
var ErrUnknownFormat = errors.New("unknown event file format")

// Reader turns event files into events. Each file is one stream.
type Reader[T any] struct {
	codec Codec[T]
	ids   idgen.Generator
}

// ReaderBuilder can build Readers.
type ReaderBuilder[T any] struct {
	codec Codec[T]
	ids   idgen.Generator
}

// MakeReaderBuilder creates a ReaderBuilder.
func MakeReaderBuilder[T any]() ReaderBuilder[T] {
	return ReaderBuilder[T]{}
}

// WithCodec sets how bound values are parsed.
func (b ReaderBuilder[T]) WithCodec(c Codec[T]) ReaderBuilder[T] {
	b.codec = c
	return b
}

// WithIDGenerator sets how events without an ID are named. By default they
// are named e1, e2 and so on, counting across all files read by the Reader.
func (b ReaderBuilder[T]) WithIDGenerator(g idgen.Generator) ReaderBuilder[T] {
	b.ids = g
	return b
}

// Build creates the Reader.
func (b ReaderBuilder[T]) Build() *Reader[T] {
	if b.codec.Parse == nil {
		panic("eventio: a codec is required")
	}

	if b.ids == nil {
		b.ids = idgen.NewSequential("e")
	}

	return &Reader[T]{codec: b.codec, ids: b.ids}
}

// rawEvent is the shape of an event in JSON and YAML files.
type rawEvent struct {
	ID    string `json:"id" yaml:"id"`
	Begin cell   `json:"begin" yaml:"begin"`
	End   cell   `json:"end" yaml:"end"`
}

// cell keeps the text of a scalar whatever its type in the source document.
type cell struct {
	text string
	set  bool
}

func (c *cell) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}

	c.set = true

	if strings.HasPrefix(raw, `"`) {
		return json.Unmarshal(b, &c.text)
	}

	c.text = raw

	return nil
}

func (c *cell) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bound must be a scalar", n.Line)
	}

	if n.ShortTag() == "!!null" {
		return nil
	}

	c.text = n.Value
	c.set = true

	return nil
}

// ReadFile reads a file, choosing the format by its extension.
func (r *Reader[T]) ReadFile(path string) ([]weave.Event[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []weave.Event[T]

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		events, err = r.ReadCSV(f)
	case ".json":
		events, err = r.ReadJSON(f)
	case ".yaml", ".yml":
		events, err = r.ReadYAML(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return events, nil
}

// ReadFiles reads each file as one stream.
func (r *Reader[T]) ReadFiles(paths ...string) ([][]weave.Event[T], error) {
	streams := make([][]weave.Event[T], 0, len(paths))

	for _, path := range paths {
		events, err := r.ReadFile(path)
		if err != nil {
			return nil, err
		}

		streams = append(streams, events)
	}

	return streams, nil
}

// ReadCSV reads a CSV document with a header row. The begin and end columns
// are required, the id column is optional. Other columns are ignored.
func (r *Reader[T]) ReadCSV(in io.Reader) ([]weave.Event[T], error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	beginCol, hasBegin := columns["begin"]
	endCol, hasEnd := columns["end"]
	idCol, hasID := columns["id"]

	if !hasBegin || !hasEnd {
		return nil, errors.New("csv header must name begin and end columns")
	}

	var events []weave.Event[T]

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		raw := rawEvent{
			Begin: cellAt(row, beginCol),
			End:   cellAt(row, endCol),
		}

		if hasID {
			raw.ID = strings.TrimSpace(cellAt(row, idCol).text)
		}

		e, err := r.toEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		events = append(events, e)
	}

	return events, nil
}

func cellAt(row []string, col int) cell {
	if col >= len(row) {
		return cell{}
	}

	return cell{text: row[col], set: true}
}

// ReadJSON reads a JSON array of events.
func (r *Reader[T]) ReadJSON(in io.Reader) ([]weave.Event[T], error) {
	var raws []rawEvent

	err := json.NewDecoder(in).Decode(&raws)
	if err != nil {
		return nil, err
	}

	return r.toEvents(raws)
}

// ReadJSONStreams reads a JSON object of the form {"streams": [[...], ...]}.
func (r *Reader[T]) ReadJSONStreams(in io.Reader) ([][]weave.Event[T], error) {
	var doc struct {
		Streams [][]rawEvent `json:"streams"`
	}

	err := json.NewDecoder(in).Decode(&doc)
	if err != nil {
		return nil, err
	}

	streams := make([][]weave.Event[T], 0, len(doc.Streams))

	for i, raws := range doc.Streams {
		events, err := r.toEvents(raws)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}

		streams = append(streams, events)
	}

	return streams, nil
}

// ReadYAML reads a YAML sequence of events.
func (r *Reader[T]) ReadYAML(in io.Reader) ([]weave.Event[T], error) {
	var raws []rawEvent

	err := yaml.NewDecoder(in).Decode(&raws)
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return r.toEvents(raws)
}

func (r *Reader[T]) toEvents(raws []rawEvent) ([]weave.Event[T], error) {
	events := make([]weave.Event[T], 0, len(raws))

	for i, raw := range raws {
		e, err := r.toEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		events = append(events, e)
	}

	return events, nil
}

func (r *Reader[T]) toEvent(raw rawEvent) (weave.Event[T], error) {
	e := weave.Event[T]{ID: weave.EventID(raw.ID)}
	if e.ID == "" {
		e.ID = r.ids.Generate()
	}

	var err error

	e.Begin, err = r.parseBound(raw.Begin)
	if err != nil {
		return e, fmt.Errorf("begin of %q: %w", e.ID, err)
	}

	e.End, err = r.parseBound(raw.End)
	if err != nil {
		return e, fmt.Errorf("end of %q: %w", e.ID, err)
	}

	return e, nil
}

func (r *Reader[T]) parseBound(c cell) (weave.Bound[T], error) {
	if !c.set || isUnboundedText(c.text) {
		return weave.Unbounded[T](), nil
	}

	v, err := r.codec.Parse(strings.TrimSpace(c.text))
	if err != nil {
		return weave.Bound[T]{}, err
	}

	return weave.Finite(v), nil
}
