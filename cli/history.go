package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/eventweave/datarecording"
)

type historyOptions struct {
	db     string
	active string
	limit  int
	offset int
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history DB.sqlite3",
		Short: "Print a timeline recorded with weave --db.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := historyOptions{db: args[0]}
			opts.active, _ = cmd.Flags().GetString("active")
			opts.limit, _ = cmd.Flags().GetInt("limit")
			opts.offset, _ = cmd.Flags().GetInt("offset")

			return printHistory(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().String("active", "",
		"Only print segments where this event is active.")
	cmd.Flags().Int("limit", 0, "Print at most this many segments.")
	cmd.Flags().Int("offset", 0, "Skip this many segments.")

	return cmd
}

func printHistory(ctx context.Context, out io.Writer, opts historyOptions) error {
	_, err := os.Stat(opts.db)
	if err != nil {
		return err
	}

	reader, err := datarecording.NewReader(opts.db)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(datarecording.ExecTableName, datarecording.ExecInfo{})
	reader.MapTable(datarecording.SegmentTableName, datarecording.SegmentEntry{})

	infos, _, err := reader.Query(ctx, datarecording.ExecTableName,
		datarecording.QueryParams{})
	if err != nil {
		return fmt.Errorf("read run information: %w", err)
	}

	for _, i := range infos {
		info := i.(*datarecording.ExecInfo)
		fmt.Fprintf(out, "%s: %s\n", info.Property, info.Value)
	}

	params := datarecording.QueryParams{
		OrderBy: "Seq",
		Limit:   opts.limit,
		Offset:  opts.offset,
	}

	if opts.active != "" {
		params.Where = datarecording.ActiveContains
		params.Args = []any{opts.active}
	}

	entries, total, err := reader.Query(ctx, datarecording.SegmentTableName,
		params)
	if err != nil {
		return fmt.Errorf("read segments: %w", err)
	}

	fmt.Fprintf(out, "\n%d of %d segments\n", len(entries), total)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSEGMENT\tKIND\tACTIVE")

	for _, e := range entries {
		entry := e.(*datarecording.SegmentEntry)

		active, err := entry.ActiveIDs()
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t{%s}\n",
			entry.Seq, notation(entry), entry.Kind,
			strings.Join(active, ", "))
	}

	return tw.Flush()
}

func notation(e *datarecording.SegmentEntry) string {
	if e.Kind == "point" {
		return "{" + e.Lower + "}"
	}

	open, lower := "(", "-inf"
	if e.LowerFinite {
		lower = e.Lower
		if e.LowerClosed {
			open = "["
		}
	}

	closing, upper := ")", "+inf"
	if e.UpperFinite {
		upper = e.Upper
		if e.UpperClosed {
			closing = "]"
		}
	}

	return open + lower + ", " + upper + closing
}
