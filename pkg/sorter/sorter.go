package sorter

import (
	"context"
	"fmt"
	"time"

	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/storage"
)

// Sorter runs the initial pass over the watch root
type Sorter struct {
	backend   storage.Backend
	relocator *Relocator
	sink      Sink
	logger    logging.Logger
	operation *models.SortOperation
}

// New creates a sorter with its own relocator
func New(backend storage.Backend, op *models.SortOperation, sink Sink, logger logging.Logger) *Sorter {
	if sink == nil {
		sink = Discard
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Sorter{
		backend:   backend,
		relocator: NewRelocator(backend, op, sink, logger),
		sink:      sink,
		logger:    logger.WithFields(logging.Fields{"component": "sorter"}),
		operation: op,
	}
}

// Relocator returns the relocator shared with the change listener
func (s *Sorter) Relocator() *Relocator {
	return s.relocator
}

// SortAll relocates every regular file directly inside the root, one at a
// time in lexicographic order. Directories, including buckets from earlier
// runs, are skipped, which makes repeated passes idempotent. Only a failure
// to list the root is returned as an error.
func (s *Sorter) SortAll(ctx context.Context) (*models.SortReport, error) {
	report := &models.SortReport{
		OperationID: s.operation.ID,
		WatchRoot:   s.backend.Root(),
		DryRun:      s.operation.DryRun,
		StartTime:   time.Now(),
	}

	s.logger.Info(ctx, "Starting sort pass", logging.Fields{"root": report.WatchRoot, "dry_run": report.DryRun})

	listing, err := s.backend.List(ctx)
	if err != nil {
		report.Status = models.StatusFailed
		report.Finish()
		return report, fmt.Errorf("failed to list watch root: %w", err)
	}
	entries := toEntries(listing)
	report.Stats.Scanned = len(entries)

	files := 0
	for _, e := range entries {
		if e.IsFile {
			files++
		}
	}

	observer, _ := s.sink.(PassObserver)
	if observer != nil {
		observer.PassStarted(files)
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			report.Status = models.StatusCancelled
			break
		}

		if !e.IsFile {
			report.Record(models.Notification{
				MovedFile: e.Name,
				Source:    e.Path,
				Action:    models.ActionSkipped,
				Time:      time.Now(),
			})
			s.logger.Debug(ctx, "Skipping non-file entry", logging.Fields{"entry": e.Name})
			continue
		}

		res := s.relocator.Relocate(ctx, e.Path)
		report.Record(res.Notification)
		if res.Failure != nil {
			report.Failures = append(report.Failures, *res.Failure)
		}
	}

	report.Finish()

	if observer != nil {
		observer.PassFinished(report)
	}

	s.logger.Info(ctx, "Sort pass finished", logging.Fields{
		"status":   string(report.Status),
		"moved":    report.Stats.Moved,
		"in_place": report.Stats.InPlace,
		"skipped":  report.Stats.Skipped,
		"failed":   report.Stats.Failed,
		"duration": report.Duration.Round(time.Millisecond).String(),
	})

	return report, nil
}

// toEntries snapshots a listing; only regular files count as files
func toEntries(infos []storage.FileInfo) []models.Entry {
	entries := make([]models.Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, models.Entry{
			Name:    fi.Name,
			Path:    fi.Path,
			IsFile:  fi.IsRegular,
			Size:    fi.Size,
			ModTime: fi.ModTime,
		})
	}
	return entries
}
