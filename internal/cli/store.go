package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/roach88/recall/internal/kv"
)

// StoreOptions holds the store-selection flags shared by commands that
// open a backend.
type StoreOptions struct {
	Kind     string // memory | redis | sqlite
	Database string // sqlite path override
	Redis    string // redis address override
}

// addStoreFlags registers the store-selection flags on a command.
func addStoreFlags(cmd *cobra.Command, opts *StoreOptions, defaultKind string) {
	cmd.Flags().StringVar(&opts.Kind, "store", defaultKind,
		fmt.Sprintf("store backend, one of %v", StoreKinds))
	cmd.Flags().StringVar(&opts.Database, "db", "",
		"sqlite database path (overrides RECALL_SQLITE_PATH)")
	cmd.Flags().StringVar(&opts.Redis, "redis", "",
		"redis address (overrides RECALL_REDIS_ADDR)")
}

// openStore opens the selected backend. The returned closer releases
// the underlying client or file handle; for memory it is a no-op.
func openStore(ctx context.Context, cfg Config, opts StoreOptions) (kv.Store, func() error, error) {
	switch opts.Kind {
	case "memory":
		return kv.NewMemory(), func() error { return nil }, nil
	case "redis":
		addr := cfg.RedisAddr
		if opts.Redis != "" {
			addr = opts.Redis
		}
		client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		return kv.NewRedis(client), client.Close, nil
	case "sqlite":
		path := cfg.SQLitePath
		if opts.Database != "" {
			path = opts.Database
		}
		st, err := kv.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q: must be one of %v", opts.Kind, StoreKinds)
	}
}
