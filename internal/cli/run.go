package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/recall/internal/harness"
	"github.com/roach88/recall/internal/kv"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Store StoreOptions
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
	Report string   `json:"report,omitempty"`
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml> [more scenarios...]",
		Short: "Execute scenario files against a store",
		Long: `Execute YAML scenario files against the selected store backend.

Each scenario runs against a freshly flushed facade; its report - step
results, assertion verdicts and the replay transcript - is printed as
it completes.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (bad scenario file, store unreachable, etc.)

Examples:
  recall run testdata/scenarios/store_and_fetch.yaml
  recall run --store sqlite --db ./recall.db scenarios/*.yaml
  recall run --store redis --redis localhost:6379 smoke.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	addStoreFlags(cmd, &opts.Store, "memory")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	// Use the command's context if available (for testing), otherwise
	// create one, and cancel it on Ctrl-C so a stalled store read does
	// not hold the process.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	shutdown, err := setupTracing(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	defer func() {
		if shutdownErr := shutdown(context.Background()); shutdownErr != nil {
			slog.Error("error shutting down tracer", "error", shutdownErr)
		}
	}()

	st, closeStore, err := openStore(ctx, cfg, opts.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(paths)),
		Total:     len(paths),
	}

	for _, path := range paths {
		scenResult := runOneScenario(ctx, st, path, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, result)
	}
	return outputRunText(cmd, result)
}

// runOneScenario executes a single scenario file and returns the result.
// In text mode the scenario's report is printed as it completes.
func runOneScenario(ctx context.Context, st kv.Store, path string, opts *RunOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(path))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(path),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(ctx, scenario, harness.RunOptions{Store: st})
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		return ScenarioResult{
			Name:   scenario.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	report := result.Report()
	if opts.Format != "json" {
		status := "✓"
		if !result.Pass {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", status, scenario.Name)
		for _, line := range strings.Split(strings.TrimSuffix(report, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Errors: result.Errors,
		Report: report,
	}
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, result RunResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}
	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeRun,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputRunText outputs the run summary as text.
func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
