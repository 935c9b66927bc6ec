package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/spacetraveling/internal/model"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository interface {
	ByKey(ctx context.Context, key string) (*model.Snapshot, error)
	Upsert(ctx context.Context, snapshot *model.Snapshot) error
	Delete(ctx context.Context, key string) error
	DeleteKind(ctx context.Context, kind string) (int64, error)
	Keys(ctx context.Context, kind string) ([]string, error)
}

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) ByKey(ctx context.Context, key string) (*model.Snapshot, error) {
	var s model.Snapshot
	query := `
		SELECT key, kind, payload, generated_at, revalidate_at
		FROM snapshots
		WHERE key = $1
	`
	err := r.db.GetContext(ctx, &s, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert stores the snapshot, replacing any previous one with the same key.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot.GeneratedAt.IsZero() {
		snapshot.GeneratedAt = time.Now()
	}

	query := `
		INSERT INTO snapshots (key, kind, payload, generated_at, revalidate_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			kind = excluded.kind,
			payload = excluded.payload,
			generated_at = excluded.generated_at,
			revalidate_at = excluded.revalidate_at
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.Key,
		snapshot.Kind,
		snapshot.Payload,
		snapshot.GeneratedAt.UTC(),
		snapshot.RevalidateAt.UTC(),
	)
	return err
}

func (r *snapshotRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = $1`, key)
	return err
}

// DeleteKind drops every snapshot of a kind and returns how many were removed.
func (r *snapshotRepository) DeleteKind(ctx context.Context, kind string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE kind = $1`, kind)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *snapshotRepository) Keys(ctx context.Context, kind string) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `SELECT key FROM snapshots WHERE kind = $1 ORDER BY key`, kind)
	if err != nil {
		return nil, err
	}
	return keys, nil
}
