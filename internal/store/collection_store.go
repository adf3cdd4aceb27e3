package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Collection groups retrospective todos and activities. PageID is a weak
// reference to the mirrored workspace page; empty means never published,
// and the remote document may have been deleted out-of-band.
type Collection struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	Summary   string    `db:"summary" json:"summary"`
	PageID    string    `db:"page_id" json:"pageId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CollectionStore struct {
	db *sqlx.DB
}

func (s *CollectionStore) Create(ctx context.Context, c *Collection) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (user_id, title, summary, page_id) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Title, c.Summary, c.PageID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *CollectionStore) ByID(ctx context.Context, id int64) (*Collection, error) {
	var c Collection
	err := s.db.GetContext(ctx, &c, `SELECT * FROM collections WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CollectionStore) ByUser(ctx context.Context, userID int64) ([]Collection, error) {
	var out []Collection
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM collections WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return out, err
}

func (s *CollectionStore) Update(ctx context.Context, c *Collection) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE collections SET title = ?, summary = ? WHERE id = ?`,
		c.Title, c.Summary, c.ID,
	)
	return err
}

// SetPageID records the mirrored page reference. Last write wins; there is
// no optimistic versioning on the weak reference.
func (s *CollectionStore) SetPageID(ctx context.Context, id int64, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE collections SET page_id = ? WHERE id = ?`, pageID, id)
	return err
}

func (s *CollectionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	return err
}
