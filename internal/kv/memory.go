package kv

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Memory is an in-process Store. Scalars and lists live in separate
// namespaces the way the reference backend keeps string and list types
// apart, so cross-type operations fail with ErrWrongType instead of
// silently clobbering data. Values are copied on the way in and out.
type Memory struct {
	mu      sync.RWMutex
	scalars map[string][]byte
	lists   map[string][][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scalars: make(map[string][]byte),
		lists:   make(map[string][][]byte),
	}
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Like the reference backend, Set replaces whatever held the key
	// before, a list included.
	delete(m.lists, key)
	m.scalars[key] = clone(value)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.scalars[key]
	if !ok {
		if _, isList := m.lists[key]; isList {
			return nil, false, fmt.Errorf("get %s: %w", key, ErrWrongType)
		}
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[key]; ok {
		return 0, fmt.Errorf("incr %s: %w", key, ErrWrongType)
	}
	var n int64
	if raw, ok := m.scalars[key]; ok {
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("incr %s: %w", key, ErrWrongType)
		}
		n = parsed
	}
	n++
	m.scalars[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *Memory) Append(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scalars[key]; ok {
		return fmt.Errorf("append %s: %w", key, ErrWrongType)
	}
	m.lists[key] = append(m.lists[key], clone(value))
	return nil
}

func (m *Memory) List(ctx context.Context, key string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.scalars[key]; ok {
		return nil, fmt.Errorf("list %s: %w", key, ErrWrongType)
	}
	entries := m.lists[key]
	out := make([][]byte, 0, len(entries))
	for _, value := range entries {
		out = append(out, clone(value))
	}
	return out, nil
}

func (m *Memory) FlushAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scalars = make(map[string][]byte)
	m.lists = make(map[string][][]byte)
	return nil
}
