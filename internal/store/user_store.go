package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// User is a local account. The notion_* columns hold the workspace grant;
// empty string means absent. notion_state is set only while an
// authorization round-trip is outstanding.
type User struct {
	ID                  int64        `db:"id"`
	Email               string       `db:"email"`
	Password            string       `db:"password"`
	NotionAccessToken   string       `db:"notion_access_token"`
	NotionWorkspaceID   string       `db:"notion_workspace_id"`
	NotionWorkspaceName string       `db:"notion_workspace_name"`
	NotionState         string       `db:"notion_state"`
	NotionExpiresAt     sql.NullTime `db:"notion_expires_at"`
	CreatedAt           time.Time    `db:"created_at"`
}

type UserStore struct {
	db *sqlx.DB
}

func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *UserStore) ByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetPendingState stores the anti-forgery nonce for an outstanding
// authorization round-trip.
func (s *UserStore) SetPendingState(ctx context.Context, userID int64, state string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET notion_state = ? WHERE id = ?`,
		state, userID,
	)
	return err
}

// UserIDByState looks up the user whose pending state matches the nonce.
func (s *UserStore) UserIDByState(ctx context.Context, state string) (int64, error) {
	if state == "" {
		return 0, ErrNotFound
	}
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM users WHERE notion_state = ?`, state)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SaveGrant persists an exchanged token and clears the pending state.
func (s *UserStore) SaveGrant(ctx context.Context, userID int64, accessToken, workspaceID, workspaceName string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET notion_access_token = ?, notion_workspace_id = ?, notion_workspace_name = ?,
		     notion_expires_at = ?, notion_state = ''
		 WHERE id = ?`,
		accessToken, workspaceID, workspaceName, expiresAt, userID,
	)
	return err
}

// ClearGrant wipes every grant field, keeping the row. Idempotent.
func (s *UserStore) ClearGrant(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users
		 SET notion_access_token = '', notion_workspace_id = '', notion_workspace_name = '',
		     notion_state = '', notion_expires_at = NULL
		 WHERE id = ?`,
		userID,
	)
	return err
}

// ClearPendingState drops the nonce without touching the grant, used when
// an exchange fails mid-handshake.
func (s *UserStore) ClearPendingState(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET notion_state = '' WHERE id = ?`,
		userID,
	)
	return err
}
