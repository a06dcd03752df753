package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/extsort/pkg/models"
)

// HumanFormatter prints one line per relocation
type HumanFormatter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewHumanFormatter creates a new human-readable formatter writing to w
// (stdout when nil)
func NewHumanFormatter(w io.Writer) *HumanFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &HumanFormatter{writer: w}
}

// Moved prints where a file went
func (f *HumanFormatter) Moved(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintln(f.writer, describe(n))
}

// Failed prints a per-entry failure
func (f *HumanFormatter) Failed(fl models.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.writer, "Failed to process %s: %v\n", fl.Path, fl.Err)
}

// PassStarted announces the initial pass
func (f *HumanFormatter) PassStarted(total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.writer, "Sorting %d files\n", total)
}

// PassFinished prints the pass summary
func (f *HumanFormatter) PassFinished(report *models.SortReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeSummary(f.writer, report)
}

// Error reports an error
func (f *HumanFormatter) Error(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.writer, "Error: %v\n", err)
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func describe(n models.Notification) string {
	switch {
	case n.Action == models.ActionInPlace:
		return fmt.Sprintf("Left %s in %s (no extension)", n.MovedFile, destinationLabel(n))
	case n.DryRun:
		return fmt.Sprintf("Would move %s to %s", n.MovedFile, destinationLabel(n))
	default:
		return fmt.Sprintf("Moved %s to %s", n.MovedFile, destinationLabel(n))
	}
}

func writeSummary(w io.Writer, report *models.SortReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Sort completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Entries scanned:  %d\n", report.Stats.Scanned)
	fmt.Fprintf(w, "  Files moved:      %d\n", report.Stats.Moved)
	fmt.Fprintf(w, "  Left in place:    %d\n", report.Stats.InPlace)
	fmt.Fprintf(w, "  Skipped:          %d\n", report.Stats.Skipped)
	fmt.Fprintf(w, "  Failed:           %d\n", report.Stats.Failed)
	fmt.Fprintf(w, "  Buckets created:  %d\n", report.Stats.DirsCreated)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, f := range report.Failures {
			fmt.Fprintf(w, "  %s (%s): %v\n", f.Path, f.Stage, f.Err)
		}
	}
}
