package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/output"
	"github.com/sdejongh/extsort/pkg/watcher"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Sort a directory and keep sorting new files until interrupted",
		Long: `Sort every file directly inside <dir> into a sub-folder named after its
extension, then keep watching <dir> and sort each new file after a short delay.
Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&sortFlags.Delay, "delay", watcher.DefaultDelay, "wait before relocating a new file")
	cmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "do not sort existing files, only new ones")
	addSortFlags(cmd)

	return cmd
}

var skipInitial bool

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sortFlags.DelaySet = cmd.Flags().Changed("delay")

	// The feed collects the whole session for the relocation report
	feed := output.NewFeed(0)
	started := time.Now()

	s, err := newSession(cmd, args[0], feed)
	if err != nil {
		return err
	}
	defer s.close()

	if skipInitial {
		s.config.Watch.SkipFirst = true
	}

	// The listener context is never cancelled so an in-flight relocation
	// completes; Stop ends the session.
	listener := watcher.New(s.root, s.sorter.Relocator(), s.logger, watcher.WithDelay(s.operation.Delay))
	if err := listener.Start(context.WithoutCancel(ctx)); err != nil {
		return s.fail(fmt.Errorf("failed to watch %s: %w", s.root, err))
	}

	if !s.config.Watch.SkipFirst {
		if _, err := s.sorter.SortAll(sigCtx); err != nil {
			listener.Stop()
			return s.fail(fmt.Errorf("sort failed: %w", err))
		}
	}

	if !s.config.Output.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", s.root)
	}

	<-sigCtx.Done()
	summary := listener.Stop()
	s.logger.Info(ctx, "Watch session ended", logging.Fields{
		"created":   summary.Created,
		"relocated": summary.Relocated,
		"failed":    summary.Failed,
	})

	if !s.config.Output.Quiet {
		writeWatchSummary(cmd.OutOrStdout(), summary)
	}

	return s.writeReport(cmd, feed.Report(s.operation.ID, s.root, started))
}

func writeWatchSummary(w io.Writer, summary watcher.Summary) {
	rows := [][]string{
		{"Files created", strconv.Itoa(summary.Created)},
		{"Files moved", strconv.Itoa(summary.Relocated)},
		{"Left in place", strconv.Itoa(summary.InPlace)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Files deleted", strconv.Itoa(summary.Deleted)},
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Stopped watching after %s\n", summary.Duration.Round(time.Second))
	fmt.Fprintln(w, renderTable([]string{"Event", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}
