package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/recall/internal/calls"
	"github.com/roach88/recall/internal/kv"
)

const tracerName = "github.com/roach88/recall/internal/cache"

// ErrStoreUnavailable is returned by value operations on a facade whose
// store handle is absent. Counting and recording degrade to no-ops in
// that state; the value path fails loudly.
var ErrStoreUnavailable = errors.New("cache: store unavailable")

// ErrUnsupportedType is returned by Store for values outside the
// allowed scalar set. It aliases the calls package sentinel so both
// layers report the one error.
var ErrUnsupportedType = calls.ErrUnsupportedType

// StoreIdentity is the method identity under which Store's invocations
// are counted and recorded, and the name replay looks them up by.
var StoreIdentity = calls.NewIdentity("Cache", "Store")

// Cache is the instrumented facade over a key-value store.
type Cache struct {
	st      kv.Store
	keys    KeyGenerator
	tracer  trace.Tracer
	storeOp calls.Op
}

// Option customizes facade construction.
type Option func(*Cache)

// WithKeys overrides the key generator. Tests pass a deterministic
// sequence so generated keys show up predictably in golden transcripts.
func WithKeys(g KeyGenerator) Option {
	return func(c *Cache) {
		if g != nil {
			c.keys = g
		}
	}
}

// New binds a facade to st and performs the cold-start flush: every
// facade instance begins with an empty store namespace, prior keys and
// counters included. The flush doubles as the liveness check on the
// handle. A nil st yields an explicitly disconnected facade rather than
// an error; see ErrStoreUnavailable.
func New(ctx context.Context, st kv.Store, opts ...Option) (*Cache, error) {
	c := &Cache{
		st:     st,
		keys:   UUIDKeys{},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}

	if st != nil {
		if err := st.FlushAll(ctx); err != nil {
			return nil, fmt.Errorf("cold-start flush: %w", err)
		}
	}

	c.storeOp = calls.Counted(st, StoreIdentity,
		calls.Recorded(st, StoreIdentity, c.rawStore))
	return c, nil
}

// Connected reports whether the facade holds a store handle.
func (c *Cache) Connected() bool {
	return c.st != nil
}

// Store writes data under a freshly generated key and returns the key.
// data must be a string, []byte, int, int32, int64, float32 or float64;
// anything else fails with ErrUnsupportedType before anything is
// written.
//
// Each invocation, failures included, is counted and recorded under
// StoreIdentity. When recording the output fails the key has already
// been stored: Store then returns the key and a *calls.RecordError
// together.
func (c *Cache) Store(ctx context.Context, data any) (string, error) {
	ctx, span := c.tracer.Start(ctx, "cache.store",
		trace.WithAttributes(attribute.String("cache.method", StoreIdentity.String())))
	defer span.End()

	out, err := c.storeOp(ctx, data)
	key, _ := out.(string)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return key, err
	}
	span.SetAttributes(attribute.String("cache.key", key))
	return key, nil
}

// Get reads the raw value at key. The boolean reports presence: a key
// never stored is (nil, false, nil), never an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := c.tracer.Start(ctx, "cache.get",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if c.st == nil {
		span.SetStatus(codes.Error, "store unavailable")
		return nil, false, ErrStoreUnavailable
	}

	value, ok, err := c.st.Get(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get failed")
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	return value, ok, nil
}

// Transform converts a raw stored value into T.
type Transform[T any] func([]byte) (T, error)

// GetAs reads key and applies transform to the raw value. The absent
// sentinel passes through untransformed: a missing key is
// (zero, false, nil). A present value that transform rejects reports
// ok == true with the transform error.
func GetAs[T any](ctx context.Context, c *Cache, key string, transform Transform[T]) (T, bool, error) {
	var zero T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	value, err := transform(raw)
	if err != nil {
		return zero, true, fmt.Errorf("transform %s: %w", key, err)
	}
	return value, true, nil
}

// GetString reads key as UTF-8 text.
func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	return GetAs(ctx, c, key, func(raw []byte) (string, error) {
		return string(raw), nil
	})
}

// GetInt reads key as a base-10 integer.
func (c *Cache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return GetAs(ctx, c, key, func(raw []byte) (int64, error) {
		return strconv.ParseInt(string(raw), 10, 64)
	})
}

// History returns the recorded activity for id against this facade's
// store. A disconnected facade yields an empty history.
func (c *Cache) History(ctx context.Context, id calls.Identity) (calls.CallHistory, error) {
	return calls.History(ctx, c.st, id)
}

// Replay writes the recorded call log for id to w. Replaying against a
// disconnected facade writes nothing.
func (c *Cache) Replay(ctx context.Context, w io.Writer, id calls.Identity) error {
	return calls.Replay(ctx, c.st, id, w)
}

// rawStore is the unwrapped store operation: encode, generate a key,
// write. The wrappers installed by New count and record around it.
func (c *Cache) rawStore(ctx context.Context, args ...any) (any, error) {
	if c.st == nil {
		return nil, ErrStoreUnavailable
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("store: want exactly one value, got %d", len(args))
	}

	encoded, err := calls.EncodeValue(args[0])
	if err != nil {
		return nil, err
	}

	key := c.keys.NewKey()
	if err := c.st.Set(ctx, key, encoded); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	return key, nil
}
