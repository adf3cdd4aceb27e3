package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Todo is one action item of a collection. NotionPageID is the weak
// reference to the mirrored database row; empty until first synced.
type Todo struct {
	ID           int64     `db:"id" json:"id"`
	CollectionID int64     `db:"collection_id" json:"collectionId"`
	Title        string    `db:"title" json:"title"`
	Completed    bool      `db:"completed" json:"completed"`
	NotionPageID string    `db:"notion_page_id" json:"notionPageId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type TodoStore struct {
	db *sqlx.DB
}

func (s *TodoStore) Create(ctx context.Context, t *Todo) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (collection_id, title, completed, notion_page_id) VALUES (?, ?, ?, ?)`,
		t.CollectionID, t.Title, t.Completed, t.NotionPageID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *TodoStore) ByID(ctx context.Context, id int64) (*Todo, error) {
	var t Todo
	err := s.db.GetContext(ctx, &t, `SELECT * FROM todos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TodoStore) ByCollection(ctx context.Context, collectionID int64) ([]Todo, error) {
	var out []Todo
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM todos WHERE collection_id = ? ORDER BY created_at`, collectionID)
	return out, err
}

func (s *TodoStore) Update(ctx context.Context, t *Todo) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ? WHERE id = ?`,
		t.Title, t.Completed, t.ID,
	)
	return err
}

// SetNotionPageID records the remote row backing this todo, last write wins.
func (s *TodoStore) SetNotionPageID(ctx context.Context, id int64, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE todos SET notion_page_id = ? WHERE id = ?`, pageID, id)
	return err
}

func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	return err
}
