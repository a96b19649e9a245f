package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	log "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"github.com/sarchlab/eventweave/datarecording"
	"github.com/sarchlab/eventweave/eventio"
	"github.com/sarchlab/eventweave/hooking"
	"github.com/sarchlab/eventweave/occupancy"
	"github.com/sarchlab/eventweave/weave"
)

type weaveOptions struct {
	files        []string
	format       eventio.Format
	output       string
	db           string
	summary      bool
	combinations bool
}

func newWeaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weave FILE...",
		Short: "Merge the events of all files into one timeline.",
		Long: "Each file is one stream of events. The type of file is told " +
			"by its extension: .csv, .json, .yaml or .yml.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valueType, _ := cmd.Flags().GetString("type")
			formatName, _ := cmd.Flags().GetString("format")

			r, err := runnerFor(valueType)
			if err != nil {
				return err
			}

			format, err := eventio.ParseFormat(formatName)
			if err != nil {
				return err
			}

			opts := weaveOptions{files: args, format: format}
			opts.output, _ = cmd.Flags().GetString("output")
			opts.db, _ = cmd.Flags().GetString("db")
			opts.summary, _ = cmd.Flags().GetBool("summary")
			opts.combinations, _ = cmd.Flags().GetBool("combinations")

			return r.weave(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().String("type", "int",
		"Type of the bound values: int, float, time or string.")
	cmd.Flags().String("format", "table",
		"Output format: table, csv or json.")
	cmd.Flags().StringP("output", "o", "",
		"Write the timeline to this file instead of the standard output.")
	cmd.Flags().String("db", "",
		"Record events and segments into DB.sqlite3.")
	cmd.Flags().Bool("summary", false,
		"Print how long each combination of events lasted.")
	cmd.Flags().Bool("combinations", false,
		"Print only the non-empty sets of active events, in order.")

	return cmd
}

// weave writes nothing, neither output file nor database, unless all events
// are valid.
func (r typedRunner[T]) weave(stdout io.Writer, opts weaveOptions) error {
	reader := eventio.MakeReaderBuilder[T]().WithCodec(r.codec).Build()

	streams, err := reader.ReadFiles(opts.files...)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	w := weave.MakeBuilder[T]().WithCompare(r.codec.Compare).Build()
	w.AcceptHook(newLogHook())

	if opts.db != "" {
		err = refuseExisting(opts.db + ".sqlite3")
		if err != nil {
			return err
		}
	}

	segments, err := w.Interweave(streams...)
	if err != nil {
		return err
	}

	log.Info("Timeline built",
		"streams", len(streams), "segments", len(segments))

	if opts.db != "" {
		r.record(opts.db, streams, segments)
	}

	out := stdout

	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()

		out = f
	}

	if opts.combinations {
		for set := range weave.All(segments) {
			fmt.Fprintln(out, set)
		}
	} else {
		err = eventio.NewWriter(r.codec).Write(out, opts.format, segments)
		if err != nil {
			return err
		}
	}

	if opts.summary {
		return r.writeSummary(out, segments)
	}

	return nil
}

func refuseExisting(filename string) error {
	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("database %s already exists", filename)
	}

	return nil
}

func (r typedRunner[T]) record(
	db string,
	streams [][]weave.Event[T],
	segments []weave.Segment[T],
) {
	recorder := datarecording.New(db)

	exec := datarecording.NewExecRecorder(recorder)
	exec.Start()

	timelineRecorder := datarecording.NewTimelineRecorder(
		recorder, r.codec.Compare, r.codec.Format)
	timelineRecorder.RecordEvents(streams...)
	timelineRecorder.RecordSegments(segments)

	numEvents := 0
	for _, s := range streams {
		numEvents += len(s)
	}

	exec.Note("Value Type", r.codec.Name)
	exec.Note("Streams", strconv.Itoa(len(streams)))
	exec.Note("Events", strconv.Itoa(numEvents))
	exec.Note("Segments", strconv.Itoa(len(segments)))
	exec.End()

	err := recorder.Close()
	if err != nil {
		log.Error("Failed to close database", "db", db, "err", err)
	}
}

func (r typedRunner[T]) writeSummary(
	out io.Writer,
	segments []weave.Segment[T],
) error {
	if r.codec.Width == nil {
		return fmt.Errorf("%s values have no width to summarize", r.codec.Name)
	}

	report := occupancy.Analyze(segments, r.codec.Width)

	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVE\tTOTAL\tINTERVALS\tINSTANTS")

	for _, c := range report.Combinations {
		total := strconv.FormatFloat(c.Total, 'g', -1, 64)
		if c.Unbounded {
			total = "unbounded"
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			c.Active, total, c.Intervals, c.Instants)
	}

	err := tw.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nBusy: %g  Idle: %g\n", report.BusyTime, report.IdleTime)

	if longest, ok := report.Longest(); ok {
		fmt.Fprintf(out, "Longest: %s (%g)\n", longest.Active, longest.Total)
	}

	return nil
}

func newLogHook() hooking.Hook {
	hook := hooking.HookFunc(func(ctx hooking.HookCtx) {
		switch ctx.Pos {
		case weave.HookPosEventRejected:
			log.Warn("Event rejected", "event", ctx.Item, "err", ctx.Detail)
		case weave.HookPosSegmentEmitted:
			log.Debug("Segment emitted", "segment", ctx.Item)
		}
	})

	return &hook
}
