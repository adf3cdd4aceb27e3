package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretro/retrosync/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// a file-backed db so every pooled connection sees the same schema
	database, err := db.NewSqliteDB(db.WithPath(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	st, err := New(database)
	require.NoError(t, err)
	return st
}

func TestUserStore_GrantLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID, err := st.Users.Create(ctx, "alice@example.com", "hash")
	require.NoError(t, err)

	user, err := st.Users.ByID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, user.NotionAccessToken)
	assert.False(t, user.NotionExpiresAt.Valid)

	// pending state round-trip
	require.NoError(t, st.Users.SetPendingState(ctx, userID, "nonce-1"))
	got, err := st.Users.UserIDByState(ctx, "nonce-1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = st.Users.UserIDByState(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)

	// empty state must never match rows that have no pending handshake
	_, err = st.Users.UserIDByState(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// saving a grant clears the pending state
	expiresAt := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)
	require.NoError(t, st.Users.SaveGrant(ctx, userID, "secret-token", "ws-1", "Acme", expiresAt))

	user, err = st.Users.ByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", user.NotionAccessToken)
	assert.Equal(t, "ws-1", user.NotionWorkspaceID)
	assert.Equal(t, "Acme", user.NotionWorkspaceName)
	assert.Empty(t, user.NotionState)
	require.True(t, user.NotionExpiresAt.Valid)
	assert.WithinDuration(t, expiresAt, user.NotionExpiresAt.Time, time.Second)

	_, err = st.Users.UserIDByState(ctx, "nonce-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// clearing is idempotent and keeps the row
	require.NoError(t, st.Users.ClearGrant(ctx, userID))
	require.NoError(t, st.Users.ClearGrant(ctx, userID))

	user, err = st.Users.ByID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, user.NotionAccessToken)
	assert.False(t, user.NotionExpiresAt.Valid)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUserStore_ByEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	userID, err := st.Users.Create(ctx, "bob@example.com", "hash")
	require.NoError(t, err)

	user, err := st.Users.ByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestCollectionStore_CRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID, err := st.Users.Create(ctx, "carol@example.com", "hash")
	require.NoError(t, err)

	collID, err := st.Collections.Create(ctx, &Collection{
		UserID:  userID,
		Title:   "Sprint 12",
		Summary: "What went well",
	})
	require.NoError(t, err)

	coll, err := st.Collections.ByID(ctx, collID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 12", coll.Title)
	assert.Empty(t, coll.PageID)

	coll.Title = "Sprint 12 (final)"
	require.NoError(t, st.Collections.Update(ctx, coll))

	require.NoError(t, st.Collections.SetPageID(ctx, collID, "page-abc"))

	coll, err = st.Collections.ByID(ctx, collID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 12 (final)", coll.Title)
	assert.Equal(t, "page-abc", coll.PageID)

	all, err := st.Collections.ByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, st.Collections.Delete(ctx, collID))
	_, err = st.Collections.ByID(ctx, collID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityStore_JSONColumns(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID, err := st.Users.Create(ctx, "dave@example.com", "hash")
	require.NoError(t, err)
	collID, err := st.Collections.Create(ctx, &Collection{UserID: userID, Title: "Q3"})
	require.NoError(t, err)

	activityID, err := st.Activities.Create(ctx, &Activity{
		CollectionID: collID,
		Title:        "Retro #4",
		Summary:      "Good sprint",
		Facilitator:  "Dana",
		Participants: []string{"Dana", "Eli"},
		Actions: []Action{
			{Title: "Fix CI", Assignee: "Eli", Priority: "High", DueDate: "2026-09-01"},
		},
	})
	require.NoError(t, err)

	activity, err := st.Activities.ByID(ctx, activityID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dana", "Eli"}, activity.Participants)
	require.Len(t, activity.Actions, 1)
	assert.Equal(t, "Fix CI", activity.Actions[0].Title)
	assert.Equal(t, "2026-09-01", activity.Actions[0].DueDate)

	// empty lists survive the round-trip as empty, not nil-decoded junk
	activity.Participants = nil
	activity.Actions = nil
	require.NoError(t, st.Activities.Update(ctx, activity))

	activity, err = st.Activities.ByID(ctx, activityID)
	require.NoError(t, err)
	assert.Empty(t, activity.Participants)
	assert.Empty(t, activity.Actions)
}

func TestTodoStore_RemoteRef(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID, err := st.Users.Create(ctx, "eve@example.com", "hash")
	require.NoError(t, err)
	collID, err := st.Collections.Create(ctx, &Collection{UserID: userID, Title: "Q4"})
	require.NoError(t, err)

	todoID, err := st.Todos.Create(ctx, &Todo{CollectionID: collID, Title: "Write docs"})
	require.NoError(t, err)

	require.NoError(t, st.Todos.SetNotionPageID(ctx, todoID, "row-1"))

	todo, err := st.Todos.ByID(ctx, todoID)
	require.NoError(t, err)
	assert.Equal(t, "row-1", todo.NotionPageID)
	assert.False(t, todo.Completed)

	todo.Completed = true
	require.NoError(t, st.Todos.Update(ctx, todo))

	todos, err := st.Todos.ByCollection(ctx, collID)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.True(t, todos[0].Completed)
	assert.Equal(t, "row-1", todos[0].NotionPageID)
}

func TestSyncStore_SettleOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	userID, err := st.Users.Create(ctx, "frank@example.com", "hash")
	require.NoError(t, err)
	collID, err := st.Collections.Create(ctx, &Collection{UserID: userID, Title: "Q1"})
	require.NoError(t, err)

	syncID, err := st.Syncs.Create(ctx, userID, collID)
	require.NoError(t, err)

	run, err := st.Syncs.ByID(ctx, syncID, userID)
	require.NoError(t, err)
	assert.Equal(t, SyncRunning, run.Status)
	assert.False(t, run.CompletedAt.Valid)

	// scoped to the owner
	_, err = st.Syncs.ByID(ctx, syncID, userID+1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Syncs.Complete(ctx, syncID, 2, 3, 1))
	run, err = st.Syncs.ByID(ctx, syncID, userID)
	require.NoError(t, err)
	assert.Equal(t, SyncCompleted, run.Status)
	assert.Equal(t, 2, run.CreatedCount)
	assert.Equal(t, 3, run.UpdatedCount)
	assert.Equal(t, 1, run.DeletedCount)
	assert.True(t, run.CompletedAt.Valid)

	// failed runs keep their partial counts
	failedID, err := st.Syncs.Create(ctx, userID, collID)
	require.NoError(t, err)
	require.NoError(t, st.Syncs.Fail(ctx, failedID, 1, 0, 0, "boom"))

	run, err = st.Syncs.ByID(ctx, failedID, userID)
	require.NoError(t, err)
	assert.Equal(t, SyncFailed, run.Status)
	assert.Equal(t, 1, run.CreatedCount)
	assert.Equal(t, "boom", run.Error)

	history, err := st.Syncs.History(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
