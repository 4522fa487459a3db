package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/storage"
)

func tempDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Initialize(context.Background()))
	return db
}

func TestSQLiteDB_GetMissing(t *testing.T) {
	db := tempDB(t)

	_, ok, err := db.Get(context.Background(), "library_books")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteDB_PutManyOverwrites(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	require.NoError(t, db.PutMany(ctx, []storage.Entry{
		{Key: "library_next_id", Value: "1"},
		{Key: "library_books", Value: "[]"},
	}))
	require.NoError(t, db.PutMany(ctx, []storage.Entry{
		{Key: "library_next_id", Value: "2"},
	}))

	v, ok, err := db.Get(ctx, "library_next_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	v, ok, err = db.Get(ctx, "library_books")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestSQLiteDB_InitializeIsIdempotent(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	require.NoError(t, db.PutMany(ctx, []storage.Entry{{Key: "k", Value: "v"}}))
	require.NoError(t, db.Initialize(ctx))

	v, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSQLiteDB_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	ctx := context.Background()

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Initialize(ctx))
	require.NoError(t, db.PutMany(ctx, []storage.Entry{{Key: "library_next_id", Value: "7"}}))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Initialize(ctx))

	v, ok, err := db.Get(ctx, "library_next_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}
