package output

import (
	"sync"
	"time"

	"github.com/sdejongh/extsort/pkg/models"
)

// Feed accumulates notifications for a presentation layer until cleared
type Feed struct {
	mu       sync.Mutex
	items    []models.Notification
	failures []models.Failure
	limit    int
}

// NewFeed creates a feed keeping at most limit notifications (0 = unbounded);
// the oldest are discarded first
func NewFeed(limit int) *Feed {
	return &Feed{limit: limit}
}

// Moved appends a notification
func (f *Feed) Moved(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if f.limit > 0 && len(f.items) > f.limit {
		f.items = append(f.items[:0:0], f.items[len(f.items)-f.limit:]...)
	}
}

// Failed appends a failure
func (f *Feed) Failed(fl models.Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, fl)
	if f.limit > 0 && len(f.failures) > f.limit {
		f.failures = append(f.failures[:0:0], f.failures[len(f.failures)-f.limit:]...)
	}
}

// Snapshot returns a copy of the accumulated notifications
func (f *Feed) Snapshot() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.items...)
}

// Failures returns a copy of the accumulated failures
func (f *Feed) Failures() []models.Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Failure(nil), f.failures...)
}

// Len returns the number of accumulated notifications
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Clear discards everything accumulated so far. It is meant for an
// interactive front end's clear action and is not called by the CLI.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.failures = nil
}

// Report builds a sort report from everything accumulated since start
func (f *Feed) Report(operationID, root string, start time.Time) *models.SortReport {
	report := &models.SortReport{
		OperationID: operationID,
		WatchRoot:   root,
		StartTime:   start,
	}
	for _, n := range f.Snapshot() {
		report.Record(n)
		report.DryRun = report.DryRun || n.DryRun
	}
	report.Failures = f.Failures()
	report.Stats.Failed += len(report.Failures)
	report.Stats.Scanned = len(report.Relocations) + len(report.Failures)
	report.Finish()
	return report
}
