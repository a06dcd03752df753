package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/extsort/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// SortFlags holds the flags shared by the watch and sort commands.
// Empty values leave the configuration file setting untouched.
type SortFlags struct {
	Delay          time.Duration
	DelaySet       bool
	EmptyExt       string
	UnsortedBucket string
	Collision      string
	Ignore         []string
	DryRun         bool
	Output         string
	Report         string
	ReportFormat   string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var sortFlags SortFlags

// addSortFlags registers the relocation, output and logging flags on cmd
func addSortFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sortFlags.EmptyExt, "empty-ext", "", "files without extension: literal (stay in place), bucket")
	cmd.Flags().StringVar(&sortFlags.UnsortedBucket, "unsorted-bucket", "", "bucket name for files without extension (default \"no-extension\")")
	cmd.Flags().StringVar(&sortFlags.Collision, "collision", "", "existing destination file: overwrite, refuse")
	cmd.Flags().StringSliceVar(&sortFlags.Ignore, "ignore", []string{}, "glob patterns of file names to leave alone (e.g. \"*.part\")")
	cmd.Flags().BoolVar(&sortFlags.DryRun, "dry-run", false, "report destinations without moving anything")
	cmd.Flags().StringVarP(&sortFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&sortFlags.Report, "report", "", "write the relocation report to file (watch: on exit, for the whole session)")
	cmd.Flags().StringVar(&sortFlags.ReportFormat, "report-format", "human", "relocation report format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&sortFlags.LogFile, "log-file", "", "also write logs to file")
	cmd.Flags().StringVar(&sortFlags.LogFormat, "log-format", "", "log format: text, logfmt, json")
	cmd.Flags().StringVar(&sortFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}
