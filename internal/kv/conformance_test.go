package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drivers enumerates every Store implementation under a constructor that
// yields a fresh, empty store. The conformance suite below runs each
// behavior against each driver so their observable semantics cannot
// drift apart.
var drivers = []struct {
	name string
	open func(t *testing.T) Store
}{
	{
		name: "memory",
		open: func(t *testing.T) Store {
			return NewMemory()
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) Store {
			st, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
			require.NoError(t, err)
			t.Cleanup(func() { st.Close() })
			return st
		},
	},
	{
		name: "redis",
		open: func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { rdb.Close() })
			return NewRedis(rdb)
		},
	},
}

func TestConformance_SetGetRoundTrip(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Set(ctx, "greeting", []byte("hello")))

			value, ok, err := st.Get(ctx, "greeting")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("hello"), value)

			// Overwrite replaces, never appends
			require.NoError(t, st.Set(ctx, "greeting", []byte("goodbye")))
			value, ok, err = st.Get(ctx, "greeting")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("goodbye"), value)
		})
	}
}

func TestConformance_BinaryValues(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			raw := []byte{0x00, 0xff, 0x10, 0x00, 0x7f}
			require.NoError(t, st.Set(ctx, "blob", raw))

			value, ok, err := st.Get(ctx, "blob")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, raw, value)
		})
	}
}

func TestConformance_GetMissingIsNotAnError(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			value, ok, err := st.Get(ctx, "never-written")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, value)
		})
	}
}

func TestConformance_IncrCountsFromZero(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			for want := int64(1); want <= 3; want++ {
				n, err := st.Incr(ctx, "hits")
				require.NoError(t, err)
				assert.Equal(t, want, n)
			}

			// The counter reads back through Get as base-10 text
			value, ok, err := st.Get(ctx, "hits")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("3"), value)
		})
	}
}

func TestConformance_IncrOnNumericScalar(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Set(ctx, "hits", []byte("41")))

			n, err := st.Incr(ctx, "hits")
			require.NoError(t, err)
			assert.Equal(t, int64(42), n)
		})
	}
}

func TestConformance_IncrOnNonNumericScalar(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Set(ctx, "name", []byte("alice")))

			_, err := st.Incr(ctx, "name")
			assert.ErrorIs(t, err, ErrWrongType)
		})
	}
}

func TestConformance_AppendListOrder(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Append(ctx, "log", []byte("first")))
			require.NoError(t, st.Append(ctx, "log", []byte("second")))
			require.NoError(t, st.Append(ctx, "log", []byte("third")))

			entries, err := st.List(ctx, "log")
			require.NoError(t, err)
			assert.Equal(t, [][]byte{
				[]byte("first"),
				[]byte("second"),
				[]byte("third"),
			}, entries)
		})
	}
}

func TestConformance_ListMissingIsEmpty(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			entries, err := st.List(ctx, "no-such-list")
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestConformance_CrossTypeOperations(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Set(ctx, "scalar", []byte("v")))
			require.NoError(t, st.Append(ctx, "list", []byte("e")))

			t.Run("append to scalar", func(t *testing.T) {
				err := st.Append(ctx, "scalar", []byte("e"))
				assert.ErrorIs(t, err, ErrWrongType)
			})
			t.Run("list of scalar", func(t *testing.T) {
				_, err := st.List(ctx, "scalar")
				assert.ErrorIs(t, err, ErrWrongType)
			})
			t.Run("get on list", func(t *testing.T) {
				_, _, err := st.Get(ctx, "list")
				assert.ErrorIs(t, err, ErrWrongType)
			})
			t.Run("incr on list", func(t *testing.T) {
				_, err := st.Incr(ctx, "list")
				assert.ErrorIs(t, err, ErrWrongType)
			})
			t.Run("set over list replaces", func(t *testing.T) {
				require.NoError(t, st.Set(ctx, "list", []byte("v")))
				value, ok, err := st.Get(ctx, "list")
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, []byte("v"), value)
			})
		})
	}
}

func TestConformance_FlushAll(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			st := d.open(t)

			require.NoError(t, st.Set(ctx, "scalar", []byte("v")))
			_, err := st.Incr(ctx, "counter")
			require.NoError(t, err)
			require.NoError(t, st.Append(ctx, "list", []byte("e")))

			require.NoError(t, st.FlushAll(ctx))

			_, ok, err := st.Get(ctx, "scalar")
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = st.Get(ctx, "counter")
			require.NoError(t, err)
			assert.False(t, ok)

			entries, err := st.List(ctx, "list")
			require.NoError(t, err)
			assert.Empty(t, entries)

			// Counters restart from zero after a flush
			n, err := st.Incr(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}
