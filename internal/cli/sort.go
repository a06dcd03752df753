package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdejongh/extsort/internal/platform"
	"github.com/sdejongh/extsort/pkg/config"
	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/output"
	"github.com/sdejongh/extsort/pkg/sorter"
	"github.com/sdejongh/extsort/pkg/storage"
	"github.com/spf13/cobra"
)

// NewSortCommand creates the sort command
func NewSortCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort <dir>",
		Short: "Sort the files currently in a directory and exit",
		Long: `Move every file directly inside <dir> into a sub-folder named after its
extension. Sub-directories are left alone and nothing is watched afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: runSort,
	}

	addSortFlags(cmd)

	return cmd
}

// session holds everything a command needs to sort one root
type session struct {
	root      string
	config    *config.Config
	operation *models.SortOperation
	logger    logging.Logger
	formatter output.Formatter
	backend   storage.Backend
	sorter    *sorter.Sorter
	lock      *platform.RootLock
}

// newSession resolves the root, takes the root lock and wires the sorter.
// Notifications go to the terminal formatter and to extra. The caller must
// call close.
func newSession(cmd *cobra.Command, dir string, extra ...sorter.Sink) (*session, error) {
	root, err := platform.ResolveWatchRoot(dir)
	if err != nil {
		return nil, err
	}

	if err := validateSortFlags(); err != nil {
		return nil, err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	operation, err := createSortOperation(cfg, root)
	if err != nil {
		return nil, fmt.Errorf("failed to create sort operation: %w", err)
	}

	s := &session{root: root, config: cfg, operation: operation}

	lockDir, err := platform.LockDir()
	if err != nil {
		return nil, err
	}
	if s.lock, err = platform.AcquireRootLock(lockDir, root); err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	s.logger = logger.WithFields(logging.Fields{"operation": operation.ID})

	backend, err := storage.NewLocal(root)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open watch root: %w", err)
	}
	s.backend = backend

	s.formatter = createFormatter(cfg, cmd.OutOrStdout())
	s.sorter = sorter.New(backend, operation, createSink(s.formatter, extra...), s.logger)

	return s, nil
}

func (s *session) close() {
	if s.backend != nil {
		s.backend.Close()
	}
	if s.logger != nil {
		s.logger.Close()
	}
	if s.lock != nil {
		s.lock.Release()
	}
}

// writeReport writes the relocation report when --report or --report-format
// was given
func (s *session) writeReport(cmd *cobra.Command, report *models.SortReport) error {
	if sortFlags.Report == "" && !cmd.Flags().Changed("report-format") {
		return nil
	}
	if err := output.WriteReport(report, sortFlags.Report, sortFlags.ReportFormat); err != nil {
		return fmt.Errorf("failed to write relocation report: %w", err)
	}
	return nil
}

// fail reports err through the formatter and returns it with the failed
// exit code. Without a formatter (quiet mode) err is returned as is so the
// caller prints it.
func (s *session) fail(err error) error {
	if s.formatter == nil {
		return err
	}
	s.formatter.Error(err)
	return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
}

func runSort(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sortFlags.DelaySet = false

	s, err := newSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.sorter.SortAll(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("sort failed: %w", err))
	}

	if err := s.writeReport(cmd, report); err != nil {
		return err
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
