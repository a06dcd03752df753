package watcher

import (
	"time"
)

// EventType represents the type of file system event
type EventType string

const (
	FileCreated EventType = "created"
	FileDeleted EventType = "deleted"
)

// Event represents a file system event observed in the watch root
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Summary contains stats from a listening session
type Summary struct {
	Created   int
	Deleted   int
	Relocated int
	InPlace   int
	Skipped   int
	Failed    int
	Duration  time.Duration
}
