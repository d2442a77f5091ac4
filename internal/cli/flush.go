package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// FlushOptions holds flags for the flush command.
type FlushOptions struct {
	*RootOptions
	Store StoreOptions
	Yes   bool
}

// FlushResult reports a completed flush.
type FlushResult struct {
	Store   string `json:"store"`
	Flushed bool   `json:"flushed"`
}

// NewFlushCommand creates the flush command.
func NewFlushCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FlushOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete every key in the selected store",
		Long: `Delete every key in the selected store backend.

This clears stored values, call counters and call logs alike - the
store-wide reset the facade performs on construction, run by hand.
The operation is destructive and requires --yes.

Examples:
  recall flush --store sqlite --db ./recall.db --yes
  recall flush --store redis --yes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlush(opts, cmd)
		},
	}

	addStoreFlags(cmd, &opts.Store, "sqlite")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the flush")

	return cmd
}

func runFlush(opts *FlushOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !opts.Yes {
		return NewExitError(ExitCommandError, "refusing to flush without --yes")
	}
	if opts.Store.Kind == "memory" {
		return NewExitError(ExitCommandError, "memory store is per-process; there is nothing to flush")
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

	if err := st.FlushAll(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to flush store", err)
	}
	slog.Info("store flushed", "store", opts.Store.Kind)

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   FlushResult{Store: opts.Store.Kind, Flushed: true},
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Store flushed")
	return nil
}
