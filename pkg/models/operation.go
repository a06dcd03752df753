package models

import (
	"strings"
	"time"
)

// EmptyExtensionPolicy defines where files without an extension go
type EmptyExtensionPolicy string

const (
	// EmptyExtLiteral joins the root with the empty string, which resolves to the
	// root itself: the file stays where it is
	EmptyExtLiteral EmptyExtensionPolicy = "literal"
	// EmptyExtBucket moves the file into a dedicated bucket (UnsortedBucket)
	EmptyExtBucket EmptyExtensionPolicy = "bucket"
)

// CollisionPolicy defines what happens when root/ext/name.ext already exists
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file (rename semantics)
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionRefuse leaves the source in place and reports a failure
	CollisionRefuse CollisionPolicy = "refuse"
)

// DefaultUnsortedBucket is the bucket used by EmptyExtBucket when none is configured
const DefaultUnsortedBucket = "no-extension"

// SortOperation represents the configuration of a sort run against one watch root
type SortOperation struct {
	ID             string
	WatchRoot      string
	EmptyExtension EmptyExtensionPolicy
	UnsortedBucket string
	Collision      CollisionPolicy
	Delay          time.Duration // wait before relocating a newly created file
	IgnorePatterns []string
	DryRun         bool
	CreatedAt      time.Time
}

// Validate checks if the operation configuration is valid
func (op *SortOperation) Validate() error {
	if op.WatchRoot == "" {
		return &ValidationError{Field: "WatchRoot", Message: "watch root is required"}
	}

	switch op.EmptyExtension {
	case EmptyExtLiteral:
	case EmptyExtBucket:
		if op.UnsortedBucket == "" {
			return &ValidationError{Field: "UnsortedBucket", Message: "required when empty extension policy is 'bucket'"}
		}
		if strings.ContainsAny(op.UnsortedBucket, `/\`) || op.UnsortedBucket == "." || op.UnsortedBucket == ".." {
			return &ValidationError{Field: "UnsortedBucket", Message: "must be a single directory name"}
		}
	default:
		return &ValidationError{Field: "EmptyExtension", Message: "must be 'literal' or 'bucket'"}
	}

	switch op.Collision {
	case CollisionOverwrite, CollisionRefuse:
	default:
		return &ValidationError{Field: "Collision", Message: "must be 'overwrite' or 'refuse'"}
	}

	if op.Delay < 0 {
		return &ValidationError{Field: "Delay", Message: "must not be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
