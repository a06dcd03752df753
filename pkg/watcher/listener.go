// Package watcher reacts to files arriving in the watch root and hands each
// one to the same relocation used by the initial sort pass.
package watcher

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/sorter"
)

// DefaultDelay is how long a created file is left alone before relocation,
// giving the writer a chance to finish
const DefaultDelay = time.Second

// Relocator moves one file into its bucket
type Relocator interface {
	Relocate(ctx context.Context, path string) sorter.Result
}

// Option configures a Listener
type Option func(*Listener)

// WithDelay overrides DefaultDelay
func WithDelay(d time.Duration) Option {
	return func(l *Listener) { l.delay = d }
}

// WithEvents sends every observed event to ch. Sends never block; events
// are dropped when ch is full.
func WithEvents(ch chan<- Event) Option {
	return func(l *Listener) { l.events = ch }
}

// Listener watches exactly one directory, non-recursively, and processes
// events one at a time on a single goroutine
type Listener struct {
	root      string
	delay     time.Duration
	relocator Relocator
	logger    logging.Logger
	events    chan<- Event

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	startTime time.Time

	mu      sync.Mutex
	summary Summary
}

// New creates a listener for root. Start must be called to subscribe.
func New(root string, relocator Relocator, logger logging.Logger, opts ...Option) *Listener {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	l := &Listener{
		root:      root,
		delay:     DefaultDelay,
		relocator: relocator,
		logger:    logger.WithFields(logging.Fields{"component": "listener"}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start subscribes to the root and begins processing events in the
// background. It returns once the subscription is active.
func (l *Listener) Start(ctx context.Context) error {
	err := errors.New("listener already started")
	l.startOnce.Do(func() {
		err = l.start(ctx)
	})
	return err
}

func (l *Listener) start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(l.root); err != nil {
		fsw.Close()
		return err
	}

	l.fsWatcher = fsw
	l.startTime = time.Now()

	l.wg.Add(1)
	go l.watchLoop(ctx)

	l.logger.Info(ctx, "Watching directory", logging.Fields{"root": l.root, "delay": l.delay.String()})
	return nil
}

// Stop halts event delivery and unsubscribes. A relocation already in
// progress is allowed to finish; a file still waiting out its delay is
// abandoned. Stop is safe to call more than once.
func (l *Listener) Stop() Summary {
	l.stopOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
		if l.fsWatcher != nil {
			l.fsWatcher.Close()
		}
		l.logger.Info(context.Background(), "Listener stopped", nil)
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.summary
	if !l.startTime.IsZero() {
		s.Duration = time.Since(l.startTime)
	}
	return s
}

// watchLoop processes file system events
func (l *Listener) watchLoop(ctx context.Context) {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			return

		case <-ctx.Done():
			return

		case event, ok := <-l.fsWatcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Has(fsnotify.Create):
				l.OnCreated(ctx, event.Name)
			case event.Has(fsnotify.Remove):
				l.OnDeleted(ctx, event.Name)
			}

		case err, ok := <-l.fsWatcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn(ctx, "File watcher error", logging.Fields{"error": err.Error()})
		}
	}
}

// OnCreated waits the configured delay and relocates path. It reports
// whether a relocation was attempted.
func (l *Listener) OnCreated(ctx context.Context, path string) bool {
	l.count(func(s *Summary) { s.Created++ })
	l.emit(Event{Path: path, Type: FileCreated, Timestamp: time.Now()})
	l.logger.Debug(ctx, "File created", logging.Fields{"path": path})

	if !l.wait(ctx) {
		l.logger.Debug(ctx, "Listener stopping, abandoning pending file", logging.Fields{"path": path})
		return false
	}

	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		// Usually already moved by the initial pass
		l.count(func(s *Summary) { s.Skipped++ })
		l.logger.Debug(ctx, "Created path vanished before relocation", logging.Fields{"path": path})
		return false
	}
	if err == nil && !info.Mode().IsRegular() {
		l.count(func(s *Summary) { s.Skipped++ })
		l.logger.Debug(ctx, "Ignoring non-file entry", logging.Fields{"path": path})
		return false
	}

	res := l.relocator.Relocate(ctx, path)
	l.count(func(s *Summary) {
		switch res.Action {
		case models.ActionMoved:
			s.Relocated++
		case models.ActionInPlace:
			s.InPlace++
		case models.ActionFailed:
			s.Failed++
		default:
			s.Skipped++
		}
	})
	return true
}

// OnDeleted only records and logs the event
func (l *Listener) OnDeleted(ctx context.Context, path string) {
	l.count(func(s *Summary) { s.Deleted++ })
	l.emit(Event{Path: path, Type: FileDeleted, Timestamp: time.Now()})
	l.logger.Info(ctx, "File deleted", logging.Fields{"path": path})
}

// wait sleeps for the delay unless the listener is stopped first
func (l *Listener) wait(ctx context.Context) bool {
	if l.delay <= 0 {
		return true
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-l.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (l *Listener) emit(e Event) {
	if l.events == nil {
		return
	}
	select {
	case l.events <- e:
	default:
		l.logger.Warn(context.Background(), "Event channel full, dropping event", logging.Fields{"path": e.Path})
	}
}

func (l *Listener) count(fn func(s *Summary)) {
	l.mu.Lock()
	fn(&l.summary)
	l.mu.Unlock()
}
