package sorter

import (
	"github.com/sdejongh/extsort/pkg/models"
)

// Sink receives relocation notifications. Implementations must be safe for
// concurrent use: the initial pass and the change listener may both report.
type Sink interface {
	// Moved is called for files moved into a bucket or left in place
	Moved(n models.Notification)

	// Failed is called for per-entry failures
	Failed(f models.Failure)
}

// PassObserver is optionally implemented by sinks that want to bracket an
// initial sort pass (progress bars, summaries)
type PassObserver interface {
	PassStarted(total int)
	PassFinished(report *models.SortReport)
}

// Discard is a Sink that drops everything
var Discard Sink = discard{}

type discard struct{}

func (discard) Moved(models.Notification) {}
func (discard) Failed(models.Failure)     {}

// Multi returns a sink that forwards to every non-nil sink in order
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Moved(n models.Notification) {
	for _, s := range m {
		s.Moved(n)
	}
}

func (m multi) Failed(f models.Failure) {
	for _, s := range m {
		s.Failed(f)
	}
}

func (m multi) PassStarted(total int) {
	for _, s := range m {
		if o, ok := s.(PassObserver); ok {
			o.PassStarted(total)
		}
	}
}

func (m multi) PassFinished(report *models.SortReport) {
	for _, s := range m {
		if o, ok := s.(PassObserver); ok {
			o.PassFinished(report)
		}
	}
}
