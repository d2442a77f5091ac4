package kv

import (
	"context"
	"errors"
)

// ErrWrongType is returned when an operation is applied to a key holding
// the wrong kind of value: scalar operations against a list key, list
// operations against a scalar key, or an increment of a non-numeric
// value. Drivers normalize their native type errors onto this sentinel
// so callers can errors.Is without knowing the backend.
var ErrWrongType = errors.New("kv: operation against a key holding the wrong kind of value")

// Store describes the key-value operations the instrumentation layer
// needs. Implementations must be safe for concurrent use; Incr and
// Append must be atomic with respect to concurrent callers.
type Store interface {
	// Set writes value under key, replacing any previous value of any
	// kind (a list included).
	Set(ctx context.Context, key string, value []byte) error

	// Get reads the value at key. The boolean reports presence: a
	// missing key is (nil, false, nil), never an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Incr atomically increments the integer at key by one and returns
	// the new value. A missing key counts from zero. The stored form is
	// base-10 ASCII, readable back through Get.
	Incr(ctx context.Context, key string) (int64, error)

	// Append atomically appends value to the end of the list at key,
	// creating the list if it does not exist.
	Append(ctx context.Context, key string, value []byte) error

	// List returns every element of the list at key in insertion order.
	// A missing list yields an empty, non-nil slice.
	List(ctx context.Context, key string) ([][]byte, error)

	// FlushAll removes every key in the store.
	FlushAll(ctx context.Context) error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
