package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/extsort/pkg/models"
)

// JSONFormatter writes one JSON event per line for automation and scripting
type JSONFormatter struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	TotalFiles int `json:"total_files"`
}

// JSONMovedData represents a relocation
type JSONMovedData struct {
	ID          string `json:"id"`
	MovedFile   string `json:"moved_file"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
	DirCreated  bool   `json:"dir_created,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path,omitempty"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string          `json:"operation_id"`
	WatchRoot   string          `json:"watch_root"`
	Status      string          `json:"status"`
	Duration    string          `json:"duration"`
	DurationMs  int64           `json:"duration_ms"`
	Stats       JSONStatsData   `json:"stats"`
	Errors      []JSONErrorData `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	Scanned     int `json:"scanned"`
	Moved       int `json:"moved"`
	InPlace     int `json:"in_place"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	DirsCreated int `json:"dirs_created"`
}

// NewJSONFormatter creates a new JSON formatter writing to w (stdout when nil)
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{encoder: json.NewEncoder(w)}
}

func (f *JSONFormatter) write(eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.encoder.Encode(JSONEvent{Timestamp: time.Now(), Type: eventType, Data: data})
}

// Moved emits a "moved" event
func (f *JSONFormatter) Moved(n models.Notification) {
	f.write("moved", JSONMovedData{
		ID:          n.ID,
		MovedFile:   n.MovedFile,
		Destination: n.Destination,
		Action:      string(n.Action),
		DirCreated:  n.DirCreated,
		DryRun:      n.DryRun,
	})
}

// Failed emits an "error" event
func (f *JSONFormatter) Failed(fl models.Failure) {
	f.write("error", failureData(fl))
}

// PassStarted emits a "start" event
func (f *JSONFormatter) PassStarted(total int) {
	f.write("start", JSONStartData{TotalFiles: total})
}

// PassFinished emits a "report" event
func (f *JSONFormatter) PassFinished(report *models.SortReport) {
	f.write("report", reportData(report))
}

// Error emits an "error" event without a path
func (f *JSONFormatter) Error(err error) {
	f.write("error", JSONErrorData{Error: err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func failureData(fl models.Failure) JSONErrorData {
	data := JSONErrorData{Path: fl.Path, Stage: string(fl.Stage)}
	if fl.Err != nil {
		data.Error = fl.Err.Error()
	}
	return data
}

func reportData(report *models.SortReport) JSONReportData {
	data := JSONReportData{
		OperationID: report.OperationID,
		WatchRoot:   report.WatchRoot,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Scanned:     report.Stats.Scanned,
			Moved:       report.Stats.Moved,
			InPlace:     report.Stats.InPlace,
			Skipped:     report.Stats.Skipped,
			Failed:      report.Stats.Failed,
			DirsCreated: report.Stats.DirsCreated,
		},
	}
	for _, fl := range report.Failures {
		data.Errors = append(data.Errors, failureData(fl))
	}
	return data
}
