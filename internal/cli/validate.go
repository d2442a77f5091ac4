package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recall/internal/harness"
)

// FileValidation holds the validation outcome for one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml> [more scenarios...]",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML scenario files without executing them.

Each file is checked against the scenario schema and the structural
rules (one operation per step, scalar values, known assertion types).
No store is touched.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error (file not found)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario file not found: %s", path))
		}
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	invalid := 0

	for _, path := range paths {
		fv := FileValidation{Path: path, Valid: true}
		if _, err := harness.LoadScenario(path); err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
			invalid++
		}
		result.Files = append(result.Files, fv)

		if opts.Format != "json" {
			if fv.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", path)
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fv.Error)
			}
		}
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d file(s) valid\n", len(paths))
		return nil
	}

	if opts.Format == "json" {
		if err := formatter.Error(ErrCodeScenario, fmt.Sprintf("%d file(s) invalid", invalid), result); err != nil {
			return err
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) invalid", invalid))
}
