package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/extsort/pkg/models"
)

const progressTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }}`

// ProgressFormatter draws a progress bar during the initial pass and falls
// back to line output for the change listener afterwards. Output that
// arrives while the bar is drawn is held back and printed after it.
type ProgressFormatter struct {
	*HumanFormatter

	mu       sync.Mutex
	writer   io.Writer
	bar      *pb.ProgressBar
	moved    []models.Notification
	failures []models.Failure
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(w io.Writer) *ProgressFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &ProgressFormatter{
		HumanFormatter: NewHumanFormatter(w),
		writer:         w,
	}
}

// PassStarted starts the bar
func (f *ProgressFormatter) PassStarted(total int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bar := pb.New(total)
	bar.SetWriter(f.writer)
	bar.SetTemplate(progressTemplate)
	bar.Set("prefix", "Sorting ")
	f.bar = bar.Start()
}

// advance moves the bar one step, never past its total. The listener can
// report files the pass did not list.
func (f *ProgressFormatter) advance() bool {
	if f.bar.Current() >= f.bar.Total() {
		return false
	}
	f.bar.Increment()
	return true
}

// Moved advances the bar while a pass is running
func (f *ProgressFormatter) Moved(n models.Notification) {
	f.mu.Lock()
	if f.bar != nil {
		f.advance()
		f.moved = append(f.moved, n)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.HumanFormatter.Moved(n)
}

// Failed advances the bar while a pass is running. Failures beyond the pass
// total came from the listener and are replayed; the others are listed in
// the pass summary.
func (f *ProgressFormatter) Failed(fl models.Failure) {
	f.mu.Lock()
	if f.bar != nil {
		if !f.advance() {
			f.failures = append(f.failures, fl)
		}
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.HumanFormatter.Failed(fl)
}

// PassFinished stops the bar, replays the held-back lines and prints the
// summary
func (f *ProgressFormatter) PassFinished(report *models.SortReport) {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.SetCurrent(f.bar.Total())
		f.bar.Finish()
		f.bar = nil
	}
	moved, failures := f.moved, f.failures
	f.moved, f.failures = nil, nil
	f.mu.Unlock()

	for _, n := range moved {
		f.HumanFormatter.Moved(n)
	}
	for _, fl := range failures {
		f.HumanFormatter.Failed(fl)
	}
	f.HumanFormatter.PassFinished(report)
}

// Current reports the bar position, or -1 when no pass is running
func (f *ProgressFormatter) Current() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar == nil {
		return -1
	}
	return f.bar.Current()
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
