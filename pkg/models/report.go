package models

import (
	"time"
)

// SortReport represents the results of a sort pass
type SortReport struct {
	OperationID string
	WatchRoot   string
	DryRun      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Statistics

	// Relocations holds every notification emitted during the pass, in processing order
	Relocations []Notification

	// Failures holds per-entry failures; they never abort the pass
	Failures []Failure

	Status SortStatus
}

// Statistics holds sort pass metrics
type Statistics struct {
	Scanned     int // immediate children listed
	Moved       int
	InPlace     int
	Skipped     int // non-files and ignored files
	Failed      int
	DirsCreated int
}

// SortStatus represents the overall result
type SortStatus string

const (
	// StatusSuccess indicates every eligible file was handled
	StatusSuccess SortStatus = "success"
	// StatusPartial indicates some relocations failed
	StatusPartial SortStatus = "partial"
	// StatusFailed indicates the pass could not run
	StatusFailed SortStatus = "failed"
	// StatusCancelled indicates the pass was interrupted
	StatusCancelled SortStatus = "cancelled"
)

// Record adds a relocation result to the report and updates the counters
func (r *SortReport) Record(n Notification) {
	r.Relocations = append(r.Relocations, n)
	switch n.Action {
	case ActionMoved:
		r.Stats.Moved++
	case ActionInPlace:
		r.Stats.InPlace++
	case ActionSkipped:
		r.Stats.Skipped++
	case ActionFailed:
		r.Stats.Failed++
	}
	if n.DirCreated {
		r.Stats.DirsCreated++
	}
}

// Finish stamps the end time and derives the status unless one was already set
func (r *SortReport) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	if r.Status != "" {
		return
	}
	if r.Stats.Failed > 0 {
		r.Status = StatusPartial
		return
	}
	r.Status = StatusSuccess
}

// ExitCode returns the appropriate exit code for the sort status
func (s SortStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
