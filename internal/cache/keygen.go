package cache

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// KeyGenerator produces storage keys for newly stored values. Keys must
// be unique for the lifetime of the store namespace; nothing else is
// assumed about their shape.
type KeyGenerator interface {
	NewKey() string
}

// UUIDKeys generates random version-4 UUIDs, the production default.
// Collision probability is negligible at any realistic volume.
//
// Thread-safety: UUIDKeys is stateless and safe for concurrent use.
type UUIDKeys struct{}

// NewKey returns a hyphenated UUID string, e.g.
// "550e8400-e29b-41d4-a716-446655440000".
func (UUIDKeys) NewKey() string {
	return uuid.NewString()
}

// SequenceKeys returns "key-000", "key-001", ... in order. This enables
// deterministic test execution and golden transcript comparison: the
// replayed call log contains the generated keys, so tests need to know
// them in advance.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceKeys struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceKeys creates a sequence starting at zero. An empty prefix
// defaults to "key".
func NewSequenceKeys(prefix string) *SequenceKeys {
	if prefix == "" {
		prefix = "key"
	}
	return &SequenceKeys{prefix: prefix}
}

// NewKey returns the next key in the sequence.
func (g *SequenceKeys) NewKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := fmt.Sprintf("%s-%03d", g.prefix, g.next)
	g.next++
	return key
}
