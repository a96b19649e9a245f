package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/eventweave/eventio"
)

// A runner carries out the commands for one type of bound value.
type runner interface {
	weave(out io.Writer, opts weaveOptions) error
	serve(ctx context.Context, opts serveOptions) error
}

type typedRunner[T any] struct {
	codec eventio.Codec[T]
}

var valueTypes = []string{"int", "float", "time", "string"}

func runnerFor(valueType string) (runner, error) {
	switch valueType {
	case "int":
		return typedRunner[int64]{codec: eventio.IntCodec()}, nil
	case "float":
		return typedRunner[float64]{codec: eventio.FloatCodec()}, nil
	case "time":
		return typedRunner[time.Time]{codec: eventio.TimeCodec()}, nil
	case "string":
		return typedRunner[string]{codec: eventio.StringCodec()}, nil
	default:
		return nil, fmt.Errorf("unknown value type %q, expecting one of %v",
			valueType, valueTypes)
	}
}
