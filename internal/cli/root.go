package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// StoreKinds defines the selectable store backends.
var StoreKinds = []string{"memory", "redis", "sqlite"}

// NewRootCommand creates the root command for the recall CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recall",
		Short: "recall - an instrumented cache over a key-value store",
		Long: `recall stores scalar values under generated keys and records every
instrumented call - a counter plus paired input/output logs - so past
activity can be replayed verbatim from the store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewFlushCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// setupLogging configures the default slog handler. Logs go to stderr
// so they never corrupt command output.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// isValidStoreKind checks if the store kind is one of the allowed values.
func isValidStoreKind(kind string) bool {
	for _, k := range StoreKinds {
		if k == kind {
			return true
		}
	}
	return false
}
