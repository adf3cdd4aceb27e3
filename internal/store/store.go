package store

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	notion_access_token TEXT NOT NULL DEFAULT '',
	notion_workspace_id TEXT NOT NULL DEFAULT '',
	notion_workspace_name TEXT NOT NULL DEFAULT '',
	notion_state TEXT NOT NULL DEFAULT '',
	notion_expires_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS collections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	page_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	facilitator TEXT NOT NULL DEFAULT '',
	participants TEXT NOT NULL DEFAULT '[]',
	actions TEXT NOT NULL DEFAULT '[]',
	page_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	notion_page_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS syncs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	status TEXT NOT NULL,
	created_count INTEGER NOT NULL DEFAULT 0,
	updated_count INTEGER NOT NULL DEFAULT 0,
	deleted_count INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_collections_user ON collections(user_id);
CREATE INDEX IF NOT EXISTS idx_activities_collection ON activities(collection_id);
CREATE INDEX IF NOT EXISTS idx_todos_collection ON todos(collection_id);
CREATE INDEX IF NOT EXISTS idx_syncs_user ON syncs(user_id);
CREATE INDEX IF NOT EXISTS idx_users_notion_state ON users(notion_state);
`

// Store bundles the typed stores sharing one database connection.
type Store struct {
	Users       *UserStore
	Collections *CollectionStore
	Activities  *ActivityStore
	Todos       *TodoStore
	Syncs       *SyncStore
}

// New initializes the schema and returns the store bundle.
func New(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{
		Users:       &UserStore{db: db},
		Collections: &CollectionStore{db: db},
		Activities:  &ActivityStore{db: db},
		Todos:       &TodoStore{db: db},
		Syncs:       &SyncStore{db: db},
	}, nil
}
