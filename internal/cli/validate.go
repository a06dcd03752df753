package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/sdejongh/extsort/pkg/config"
	"github.com/sdejongh/extsort/pkg/logging"
	"github.com/sdejongh/extsort/pkg/models"
	"github.com/sdejongh/extsort/pkg/output"
	"github.com/sdejongh/extsort/pkg/sorter"
)

// validateSortFlags checks flag values before the configuration is touched
func validateSortFlags() error {
	if sortFlags.Delay < 0 {
		return fmt.Errorf("invalid delay: %s (must not be negative)", sortFlags.Delay)
	}

	if sortFlags.EmptyExt != "" {
		validPolicies := map[string]bool{
			"literal": true,
			"bucket":  true,
		}
		if !validPolicies[sortFlags.EmptyExt] {
			return fmt.Errorf("invalid empty extension policy: %s (valid: literal, bucket)", sortFlags.EmptyExt)
		}
	}

	if sortFlags.Collision != "" {
		validCollisions := map[string]bool{
			"overwrite": true,
			"refuse":    true,
		}
		if !validCollisions[sortFlags.Collision] {
			return fmt.Errorf("invalid collision policy: %s (valid: overwrite, refuse)", sortFlags.Collision)
		}
	}

	if sortFlags.Output != "" && sortFlags.Output != "human" && sortFlags.Output != "json" {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", sortFlags.Output)
	}

	if sortFlags.ReportFormat != "human" && sortFlags.ReportFormat != "json" {
		return fmt.Errorf("invalid report format: %s (valid: human, json)", sortFlags.ReportFormat)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	// Relocation policies
	if sortFlags.EmptyExt != "" {
		cfg.Sort.EmptyExtension = models.EmptyExtensionPolicy(sortFlags.EmptyExt)
	}
	if sortFlags.UnsortedBucket != "" {
		cfg.Sort.UnsortedBucket = sortFlags.UnsortedBucket
	}
	if sortFlags.Collision != "" {
		cfg.Sort.Collision = models.CollisionPolicy(sortFlags.Collision)
	}

	// Listener delay
	if sortFlags.DelaySet {
		cfg.Watch.Delay = sortFlags.Delay
	}

	// Ignore patterns
	if len(sortFlags.Ignore) > 0 {
		cfg.Ignore = sortFlags.Ignore
	}

	// Output format
	if sortFlags.Output != "" {
		cfg.Output.Format = sortFlags.Output
	}

	// Logging
	if sortFlags.LogFile != "" {
		cfg.Logging.File = sortFlags.LogFile
	}
	if sortFlags.LogFormat != "" {
		cfg.Logging.Format = sortFlags.LogFormat
	}
	if sortFlags.LogLevel != "" {
		cfg.Logging.Level = sortFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	return cfg.Validate()
}

// createSortOperation creates a sort operation for root from configuration
func createSortOperation(cfg *config.Config, root string) (*models.SortOperation, error) {
	operation := &models.SortOperation{
		ID:             uuid.New().String(),
		WatchRoot:      root,
		EmptyExtension: cfg.Sort.EmptyExtension,
		UnsortedBucket: cfg.Sort.UnsortedBucket,
		Collision:      cfg.Sort.Collision,
		Delay:          cfg.Watch.Delay,
		IgnorePatterns: cfg.Ignore,
		DryRun:         sortFlags.DryRun,
		CreatedAt:      time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger builds the console logger and, when configured, the rotating
// file logger. The console only shows warnings unless -v is given.
func createLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	format := logging.ParseFormat(cfg.Logging.Format)
	level := logging.ParseLevel(cfg.Logging.Level)

	consoleLevel := level
	if consoleLevel < logging.WarnLevel {
		consoleLevel = logging.WarnLevel
	}
	if globalFlags.Verbose {
		consoleLevel = logging.DebugLevel
	}
	if globalFlags.Quiet {
		consoleLevel = logging.ErrorLevel
	}

	loggers := logging.Multi{logging.NewConsoleLogger(stderr, format, consoleLevel)}

	if cfg.Logging.File != "" {
		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		loggers = append(loggers, fileLogger)
	}

	return loggers, nil
}

// createFormatter returns the notification sink for the terminal, or nil in
// quiet mode. The progress bar is only drawn on an interactive terminal.
func createFormatter(cfg *config.Config, stdout io.Writer) output.Formatter {
	if cfg.Output.Quiet {
		return nil
	}
	progress := cfg.Output.Progress && isTerminal(stdout)
	return output.New(cfg.Output.Format, stdout, progress)
}

// createSink fans notifications out to the formatter and any extra sinks
func createSink(formatter output.Formatter, extra ...sorter.Sink) sorter.Sink {
	sinks := make([]sorter.Sink, 0, len(extra)+1)
	if formatter != nil {
		sinks = append(sinks, formatter)
	}
	sinks = append(sinks, extra...)
	if len(sinks) == 0 {
		return sorter.Discard
	}
	return sorter.Multi(sinks...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
