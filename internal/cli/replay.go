package cli

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/recall/internal/calls"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Store  StoreOptions
	Method string
}

// ReplayCall is one rendered input/output pair.
type ReplayCall struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ReplayResult holds the replayed call history of one method.
type ReplayResult struct {
	Method    string       `json:"method"`
	Count     int64        `json:"count"`
	Calls     []ReplayCall `json:"calls"`
	Truncated bool         `json:"truncated,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Render the recorded call log of a method",
		Long: `Render the recorded call log of an instrumented method.

Replay is a pure read: it opens the store, reads the method's call
counter and its input/output logs, and prints the transcript. Nothing
is written, so replaying twice prints the same text. If the two logs
disagree in length only the common prefix is rendered.

A method that was never called prints a header with count 0 and no
call lines.

Exit codes:
  0 - History rendered
  2 - Command error (store unreachable, unreadable history, etc.)

Examples:
  recall replay --store sqlite --db ./recall.db
  recall replay --store redis --method Cache.Store
  recall replay --store redis --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	addStoreFlags(cmd, &opts.Store, "sqlite")
	cmd.Flags().StringVar(&opts.Method, "method", "Cache.Store", "instrumented method to replay")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// A process-local store cannot hold another process's history.
	if opts.Store.Kind == "memory" {
		return NewExitError(ExitCommandError, "memory store holds no history from other processes; use --store redis or --store sqlite")
	}

	id, err := calls.ParseIdentity(opts.Method)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid method", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	st, closeStore, err := openStore(ctx, cfg, opts.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	history, err := calls.History(ctx, st, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read call history", err)
	}
	if history.Truncated {
		slog.Warn("input and output logs disagree in length; rendering the common prefix",
			"method", id.String(),
		)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, history)
	}
	return history.Render(cmd.OutOrStdout())
}

// outputReplayJSON outputs the call history as JSON.
func outputReplayJSON(cmd *cobra.Command, history calls.CallHistory) error {
	result := ReplayResult{
		Method:    history.Identity.String(),
		Count:     history.Count,
		Calls:     make([]ReplayCall, 0, history.Calls()),
		Truncated: history.Truncated,
	}
	for i := range history.Inputs {
		result.Calls = append(result.Calls, ReplayCall{
			Input:  history.Inputs[i],
			Output: history.Outputs[i],
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "ok",
		Data:   result,
	})
}
