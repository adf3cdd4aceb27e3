package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sync states. A run is created as running and settles exactly once.
const (
	SyncRunning   = "running"
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)

// Sync is one tracked reconciliation run.
type Sync struct {
	ID           int64        `db:"id" json:"id"`
	UserID       int64        `db:"user_id" json:"-"`
	CollectionID int64        `db:"collection_id" json:"collectionId"`
	Status       string       `db:"status" json:"status"`
	CreatedCount int          `db:"created_count" json:"created"`
	UpdatedCount int          `db:"updated_count" json:"updated"`
	DeletedCount int          `db:"deleted_count" json:"deleted"`
	Error        string       `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"-"`
}

type SyncStore struct {
	db *sqlx.DB
}

func (s *SyncStore) Create(ctx context.Context, userID, collectionID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO syncs (user_id, collection_id, status) VALUES (?, ?, ?)`,
		userID, collectionID, SyncRunning,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SyncStore) ByID(ctx context.Context, id, userID int64) (*Sync, error) {
	var sync Sync
	err := s.db.GetContext(ctx, &sync,
		`SELECT * FROM syncs WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sync, nil
}

func (s *SyncStore) History(ctx context.Context, userID int64) ([]Sync, error) {
	var out []Sync
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM syncs WHERE user_id = ? ORDER BY created_at DESC LIMIT 100`, userID)
	return out, err
}

// Complete settles a running sync with its outcome counts.
func (s *SyncStore) Complete(ctx context.Context, id int64, created, updated, deleted int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE syncs
		 SET status = ?, created_count = ?, updated_count = ?, deleted_count = ?, completed_at = ?
		 WHERE id = ?`,
		SyncCompleted, created, updated, deleted, time.Now().UTC(), id,
	)
	return err
}

// Fail settles a running sync with an error and whatever counts were
// applied before the failure. Partial application is deliberate: the
// remote API has no transaction spanning the batch.
func (s *SyncStore) Fail(ctx context.Context, id int64, created, updated, deleted int, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE syncs
		 SET status = ?, created_count = ?, updated_count = ?, deleted_count = ?, error = ?, completed_at = ?
		 WHERE id = ?`,
		SyncFailed, created, updated, deleted, errMsg, time.Now().UTC(), id,
	)
	return err
}
