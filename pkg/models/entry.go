package models

import (
	"time"
)

// Entry represents an immediate child of the watch root at the time it was observed
type Entry struct {
	// Name is the base name of the entry
	Name string

	// Path is the full path on the filesystem
	Path string

	// IsFile is true only for regular files; only files are eligible for relocation
	IsFile bool

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time
}

// Action represents what happened to an entry
type Action string

const (
	// ActionMoved means the file was moved into its extension bucket
	ActionMoved Action = "moved"
	// ActionInPlace means the destination resolved to the file's current location
	ActionInPlace Action = "in-place"
	// ActionSkipped means the entry was not eligible (directory, ignored pattern, vanished)
	ActionSkipped Action = "skipped"
	// ActionFailed means relocation was attempted and failed
	ActionFailed Action = "failed"
)

// Notification is emitted for every relocation attempt
type Notification struct {
	ID          string
	MovedFile   string // base name of the file
	Source      string
	Destination string // bucket directory the file was moved into
	Action      Action
	DirCreated  bool
	DryRun      bool
	Time        time.Time
}

// Stage identifies the step of a relocation that failed
type Stage string

const (
	StageStat  Stage = "stat"
	StageMkdir Stage = "mkdir"
	StageMove  Stage = "move"
)

// Failure represents a per-entry failure during relocation
type Failure struct {
	Path  string
	Stage Stage
	Err   error
	Time  time.Time
}

// Error implements error so failures can be logged and wrapped directly
func (f Failure) Error() string {
	if f.Err == nil {
		return string(f.Stage) + " " + f.Path
	}
	return string(f.Stage) + " " + f.Path + ": " + f.Err.Error()
}

// Unwrap returns the underlying cause
func (f Failure) Unwrap() error {
	return f.Err
}
