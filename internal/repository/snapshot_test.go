package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/spacetraveling/internal/db"
	"github.com/templui/spacetraveling/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	require.NoError(t, db.RunMigrations(t.Context(), conn.DB, "sqlite"))
	return conn
}

func TestSnapshotRepository_UpsertAndByKey(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)

	err := repo.Upsert(ctx, &model.Snapshot{
		Key:          "post:como-utilizar-hooks",
		Kind:         model.SnapshotKindPost,
		Payload:      `{"post":{"uid":"como-utilizar-hooks"}}`,
		GeneratedAt:  now,
		RevalidateAt: now.Add(30 * time.Minute),
	})
	require.NoError(t, err)

	got, err := repo.ByKey(ctx, "post:como-utilizar-hooks")
	require.NoError(t, err)
	assert.Equal(t, model.SnapshotKindPost, got.Kind)
	assert.JSONEq(t, `{"post":{"uid":"como-utilizar-hooks"}}`, got.Payload)
	assert.True(t, got.GeneratedAt.Equal(now))
	assert.True(t, got.Fresh(now.Add(29*time.Minute)))
	assert.False(t, got.Fresh(now.Add(30*time.Minute)))
}

func TestSnapshotRepository_UpsertReplaces(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Snapshot{Key: "listing", Kind: model.SnapshotKindListing, Payload: `{"v":1}`, RevalidateAt: time.Now()}))
	require.NoError(t, repo.Upsert(ctx, &model.Snapshot{Key: "listing", Kind: model.SnapshotKindListing, Payload: `{"v":2}`, RevalidateAt: time.Now()}))

	got, err := repo.ByKey(ctx, "listing")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, got.Payload)
}

func TestSnapshotRepository_NotFound(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))

	_, err := repo.ByKey(context.Background(), "post:missing")

	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotRepository_DeleteAndDeleteKind(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	ctx := context.Background()
	for _, key := range []string{"post:a", "post:b", "post:c"} {
		require.NoError(t, repo.Upsert(ctx, &model.Snapshot{Key: key, Kind: model.SnapshotKindPost, Payload: "{}", RevalidateAt: time.Now()}))
	}
	require.NoError(t, repo.Upsert(ctx, &model.Snapshot{Key: "listing", Kind: model.SnapshotKindListing, Payload: "{}", RevalidateAt: time.Now()}))

	require.NoError(t, repo.Delete(ctx, "post:a"))
	keys, err := repo.Keys(ctx, model.SnapshotKindPost)
	require.NoError(t, err)
	assert.Equal(t, []string{"post:b", "post:c"}, keys)

	n, err := repo.DeleteKind(ctx, model.SnapshotKindPost)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.ByKey(ctx, "listing")
	assert.NoError(t, err)
}
