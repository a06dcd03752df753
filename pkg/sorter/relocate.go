package sorter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/storage"
)

// ErrDestinationExists is reported when the collision policy is refuse and
// the bucket already holds a file with the same name
var ErrDestinationExists = storage.ErrDestinationExists

// ErrNotDirectChild is reported for paths outside the watch root
var ErrNotDirectChild = errors.New("not a direct child of the watch root")

// Result is the outcome of a single relocation
type Result struct {
	models.Notification

	// Failure is set when Action is ActionFailed
	Failure *models.Failure
}

// Relocator moves single files into their extension bucket.
// It is shared by the initial sort pass and the change listener.
type Relocator struct {
	backend storage.Backend
	op      *models.SortOperation
	sink    Sink
	logger  logging.Logger
}

// NewRelocator creates a relocator. A nil sink or logger discards output.
func NewRelocator(backend storage.Backend, op *models.SortOperation, sink Sink, logger logging.Logger) *Relocator {
	if sink == nil {
		sink = Discard
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Relocator{
		backend: backend,
		op:      op,
		sink:    sink,
		logger:  logger.WithFields(logging.Fields{"component": "relocator"}),
	}
}

// Relocate moves the file at path into root/<extension>/. Errors never
// propagate: they are sent to the sink and the log, and the file is left
// where it was. A bucket created before a failed move is not removed.
func (r *Relocator) Relocate(ctx context.Context, path string) Result {
	root := r.backend.Root()
	name := filepath.Base(path)

	res := Result{Notification: models.Notification{
		ID:        uuid.New().String(),
		MovedFile: name,
		Source:    filepath.Join(root, name),
		DryRun:    r.op.DryRun,
		Time:      time.Now(),
	}}

	if !isDirectChild(root, path) {
		return r.fail(ctx, res, models.StageStat, ErrNotDirectChild)
	}

	if shouldIgnore(name, r.op.IgnorePatterns) {
		res.Action = models.ActionSkipped
		r.logger.Debug(ctx, "Ignoring file", logging.Fields{"file": name})
		return res
	}

	info, err := r.backend.Stat(ctx, name)
	if errors.Is(err, os.ErrNotExist) {
		// Already relocated by the other of the pass and the listener
		res.Action = models.ActionSkipped
		r.logger.Warn(ctx, "Source vanished before relocation", logging.Fields{"file": name})
		return res
	}
	if err != nil {
		return r.fail(ctx, res, models.StageStat, err)
	}
	if !info.IsRegular {
		res.Action = models.ActionSkipped
		r.logger.Debug(ctx, "Skipping non-file entry", logging.Fields{"entry": name})
		return res
	}

	ext := Extension(name)
	if ext == "" {
		r.logger.Debug(ctx, "File has no extension", logging.Fields{"file": name, "policy": string(r.op.EmptyExtension)})
	}

	bucket := BucketFor(r.op, ext)
	res.Destination = filepath.Join(root, bucket)
	dst := filepath.Join(bucket, name)

	if bucket == "" {
		res.Action = models.ActionInPlace
		r.sink.Moved(res.Notification)
		r.logger.Info(ctx, "File left in place", logging.Fields{"file": name, "destination": res.Destination})
		return res
	}

	if r.op.DryRun {
		res.Action = models.ActionMoved
		r.sink.Moved(res.Notification)
		r.logger.Info(ctx, "Would move file", logging.Fields{"file": name, "destination": res.Destination})
		return res
	}

	created, err := r.backend.Mkdir(ctx, bucket)
	if err != nil {
		return r.fail(ctx, res, models.StageMkdir, err)
	}
	res.DirCreated = created
	if created {
		r.logger.Debug(ctx, "Created bucket", logging.Fields{"bucket": bucket})
	}

	overwrite := r.op.Collision == models.CollisionOverwrite
	if err := r.backend.Move(ctx, name, dst, overwrite); err != nil {
		return r.fail(ctx, res, models.StageMove, err)
	}

	res.Action = models.ActionMoved
	r.sink.Moved(res.Notification)
	r.logger.Info(ctx, "Moved file", logging.Fields{"file": name, "destination": res.Destination})
	return res
}

func (r *Relocator) fail(ctx context.Context, res Result, stage models.Stage, err error) Result {
	res.Action = models.ActionFailed
	f := models.Failure{
		Path:  res.Source,
		Stage: stage,
		Err:   err,
		Time:  time.Now(),
	}
	res.Failure = &f

	r.sink.Failed(f)
	fields := logging.Fields{"file": res.MovedFile, "stage": string(stage)}
	if errors.Is(err, os.ErrNotExist) {
		fields["reason"] = "source vanished"
	}
	r.logger.Error(ctx, "Failed to process file", err, fields)
	return res
}

// isDirectChild accepts a bare name or a path whose parent is root
func isDirectChild(root, path string) bool {
	if path == "" {
		return false
	}
	if !filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		return clean != "." && clean != ".." && !strings.ContainsRune(clean, filepath.Separator)
	}
	return filepath.Dir(filepath.Clean(path)) == root
}
