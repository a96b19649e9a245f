package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/eventweave/eventio"
	"github.com/sarchlab/eventweave/server"
	"github.com/sarchlab/eventweave/weave"
)

type serveOptions struct {
	files []string
	port  int
	open  bool
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [FILE...]",
		Short: "Serve a timeline over HTTP.",
		Long: "The timeline woven from the given files is served right away. " +
			"Clients can replace it by posting streams to /api/weave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			valueType, _ := cmd.Flags().GetString("type")

			r, err := runnerFor(valueType)
			if err != nil {
				return err
			}

			opts := serveOptions{files: args}
			opts.port, _ = cmd.Flags().GetInt("port")
			opts.open, _ = cmd.Flags().GetBool("open")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return r.serve(ctx, opts)
		},
	}

	cmd.Flags().String("type", "int",
		"Type of the bound values: int, float, time or string.")
	cmd.Flags().Int("port", 0,
		"Port to listen on. A random port is used if not set.")
	cmd.Flags().Bool("open", false,
		"Open the timeline in a browser.")

	return cmd
}

func (r typedRunner[T]) serve(ctx context.Context, opts serveOptions) error {
	w := weave.MakeBuilder[T]().WithCompare(r.codec.Compare).Build()
	w.AcceptHook(newLogHook())

	s := server.MakeBuilder[T]().
		WithCodec(r.codec).
		WithWeaver(w).
		WithPortNumber(opts.port).
		WithBrowser(opts.open).
		Build()

	if len(opts.files) > 0 {
		reader := eventio.MakeReaderBuilder[T]().WithCodec(r.codec).Build()

		streams, err := reader.ReadFiles(opts.files...)
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}

		timeline, err := w.Timeline(streams...)
		if err != nil {
			return err
		}

		s.SetTimeline(timeline)
	}

	return s.ListenAndServe(ctx)
}
