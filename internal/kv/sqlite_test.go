package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Set(context.Background(), "k", []byte("v")))
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Opening an existing database re-applies pragmas and schema safely
	st, err = OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)

	require.NoError(t, st.Set(ctx, "scalar", []byte("v")))
	for i := 0; i < 3; i++ {
		_, err := st.Incr(ctx, "counter")
		require.NoError(t, err)
	}
	require.NoError(t, st.Append(ctx, "log", []byte("first")))
	require.NoError(t, st.Append(ctx, "log", []byte("second")))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	value, ok, err := st.Get(ctx, "scalar")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	// Counter resumes where it left off, not from zero
	n, err := st.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	entries, err := st.List(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("first"), []byte("second")}, entries)
}

func TestSQLite_AppendPositionsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, st.Append(ctx, "log", []byte("a")))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Append(ctx, "log", []byte("b")))

	entries, err := st.List(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, entries)
}
