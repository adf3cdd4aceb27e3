package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

// Action is one row of an activity's action plan.
type Action struct {
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
}

// Activity is a single retrospective session. Participants and Actions are
// stored as JSON columns; order is preserved.
type Activity struct {
	ID           int64     `db:"id" json:"id"`
	CollectionID int64     `db:"collection_id" json:"collectionId"`
	Title        string    `db:"title" json:"title"`
	Summary      string    `db:"summary" json:"summary"`
	Facilitator  string    `db:"facilitator" json:"facilitator"`
	PageID       string    `db:"page_id" json:"pageId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	Participants []string `db:"-" json:"participants"`
	Actions      []Action `db:"-" json:"actions"`
}

// activityRow carries the JSON columns alongside the scalar ones.
type activityRow struct {
	Activity
	ParticipantsJSON string `db:"participants"`
	ActionsJSON      string `db:"actions"`
}

func (r *activityRow) decode() (*Activity, error) {
	a := r.Activity
	if err := json.Unmarshal([]byte(r.ParticipantsJSON), &a.Participants); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.ActionsJSON), &a.Actions); err != nil {
		return nil, err
	}
	return &a, nil
}

func encodeActivity(a *Activity) (participants, actions string, err error) {
	p, err := json.Marshal(a.Participants)
	if err != nil {
		return "", "", err
	}
	ac, err := json.Marshal(a.Actions)
	if err != nil {
		return "", "", err
	}
	return string(p), string(ac), nil
}

type ActivityStore struct {
	db *sqlx.DB
}

func (s *ActivityStore) Create(ctx context.Context, a *Activity) (int64, error) {
	participants, actions, err := encodeActivity(a)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (collection_id, title, summary, facilitator, participants, actions, page_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.CollectionID, a.Title, a.Summary, a.Facilitator, participants, actions, a.PageID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *ActivityStore) ByID(ctx context.Context, id int64) (*Activity, error) {
	var row activityRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM activities WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.decode()
}

func (s *ActivityStore) ByCollection(ctx context.Context, collectionID int64) ([]Activity, error) {
	var rows []activityRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM activities WHERE collection_id = ? ORDER BY created_at`, collectionID)
	if err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(rows))
	for i := range rows {
		a, err := rows[i].decode()
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *ActivityStore) Update(ctx context.Context, a *Activity) error {
	participants, actions, err := encodeActivity(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE activities
		 SET title = ?, summary = ?, facilitator = ?, participants = ?, actions = ?
		 WHERE id = ?`,
		a.Title, a.Summary, a.Facilitator, participants, actions, a.ID,
	)
	return err
}

// SetPageID records the mirrored page reference, last write wins.
func (s *ActivityStore) SetPageID(ctx context.Context, id int64, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE activities SET page_id = ? WHERE id = ?`, pageID, id)
	return err
}

func (s *ActivityStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	return err
}
