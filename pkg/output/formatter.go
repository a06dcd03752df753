// Package output presents relocation notifications to the operator: line,
// JSON and progress-bar formatters for the terminal, relocation reports, and
// Feed, an in-memory notification list for presentation layers. Feed.Clear
// backs an operator "clear" action; the CLI itself never clears a feed.
package output

import (
	"io"

	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/sorter"
)

// Formatter renders notifications for the operator.
// Every formatter is a sorter.Sink and a sorter.PassObserver.
type Formatter interface {
	sorter.Sink
	sorter.PassObserver

	// Error reports an error outside of a relocation
	Error(err error)

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for name ("human" or "json"). When progress is
// set the human formatter draws a bar during the initial pass.
func New(name string, w io.Writer, progress bool) Formatter {
	switch name {
	case "json":
		return NewJSONFormatter(w)
	default:
		if progress {
			return NewProgressFormatter(w)
		}
		return NewHumanFormatter(w)
	}
}

// destinationLabel is the directory shown to the operator, with trailing separator
func destinationLabel(n models.Notification) string {
	return n.Destination + "/"
}
