package notionsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nretro/retrosync/internal/notionsdk"
)

// TodoItem is the local side of a reconciliation: one action item with
// its mutable checked flag and, when previously synced, the remote row id.
type TodoItem struct {
	LocalID  int64
	Title    string
	Checked  bool
	RemoteID string
}

// remoteRow is one existing entry of the target database.
type remoteRow struct {
	ID      string
	Title   string
	Checked bool
}

// rowUpdate patches a matched remote entry. Title is set only when the
// match came through a stored remote id and the local title changed.
type rowUpdate struct {
	RemoteID string
	Checked  bool
	Title    string
}

// reconcilePlan holds the three disjoint operation sets of one sync.
type reconcilePlan struct {
	creates []TodoItem
	updates []rowUpdate
	deletes []remoteRow
}

// SyncOutcome reports what a reconciliation applied. On failure the
// counts cover the operations that did succeed; nothing is rolled back
// because the remote API has no transaction spanning the batch.
type SyncOutcome struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Deleted int    `json:"deleted"`
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`

	// CreatedRefs maps local todo ids to their newly created remote rows
	// so callers can persist the back-references.
	CreatedRefs map[int64]string `json:"-"`
}

// planReconcile computes the create/update/delete sets for one local item
// list against the fetched remote entries. Matching prefers a stored
// remote id, falling back to exact title equality. Title matching merges
// local items sharing a title and turns renames into create+delete pairs;
// the id preference removes that wart for items that have synced before.
func planReconcile(remote []remoteRow, local []TodoItem) *reconcilePlan {
	plan := &reconcilePlan{}

	byID := make(map[string]remoteRow, len(remote))
	byTitle := make(map[string]remoteRow, len(remote))
	for _, r := range remote {
		byID[r.ID] = r
		byTitle[r.Title] = r
	}

	matched := make(map[string]struct{}, len(remote))

	for _, item := range local {
		if item.RemoteID != "" {
			if r, ok := byID[item.RemoteID]; ok {
				upd := rowUpdate{RemoteID: r.ID, Checked: item.Checked}
				if r.Title != item.Title {
					upd.Title = item.Title
				}
				plan.updates = append(plan.updates, upd)
				matched[r.ID] = struct{}{}
				continue
			}
			// stored ref is stale (row deleted out-of-band), fall through
		}

		if r, ok := byTitle[item.Title]; ok {
			if _, seen := matched[r.ID]; !seen {
				plan.updates = append(plan.updates, rowUpdate{RemoteID: r.ID, Checked: item.Checked})
				matched[r.ID] = struct{}{}
				continue
			}
		}

		plan.creates = append(plan.creates, item)
	}

	for _, r := range remote {
		if _, ok := matched[r.ID]; !ok {
			plan.deletes = append(plan.deletes, r)
		}
	}

	return plan
}

// Reconcile makes the remote database converge to the local todo list.
// All planned operations are dispatched concurrently and awaited as one
// batch, bounding wall-clock time to roughly the slowest single call.
// Already-applied operations are not rolled back on failure.
func Reconcile(ctx context.Context, sdk *notionsdk.Client, databaseID string, local []TodoItem) *SyncOutcome {
	outcome := &SyncOutcome{CreatedRefs: make(map[int64]string)}

	resp, err := sdk.QueryDatabase(ctx, databaseID, nil)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}

	remote := make([]remoteRow, 0, len(resp.Results))
	for _, page := range resp.Results {
		row := remoteRow{ID: page.ID, Title: page.Props.TitleValue()}
		if status, ok := page.Props["Status"]; ok {
			if checked, ok := status.Scalar().(bool); ok {
				row.Checked = checked
			}
		}
		remote = append(remote, row)
	}

	plan := planReconcile(remote, local)
	slog.Info("reconcile plan",
		"database", databaseID,
		"creates", len(plan.creates),
		"updates", len(plan.updates),
		"deletes", len(plan.deletes),
	)

	var created, updated, deleted atomic.Int64
	var refsMu sync.Mutex

	// plain group, not WithContext: every dispatched call runs to
	// completion even when a sibling fails, matching the all-settled
	// batch semantics; Wait reports the first error.
	var g errgroup.Group

	for _, item := range plan.creates {
		g.Go(func() error {
			page, err := sdk.CreatePage(ctx, &notionsdk.CreatePageParams{
				Parent: notionsdk.DatabaseParent(databaseID),
				Props:  todoRowProperties(item.Title, item.Checked),
			})
			if err != nil {
				return err
			}
			created.Add(1)
			if item.LocalID != 0 {
				refsMu.Lock()
				outcome.CreatedRefs[item.LocalID] = page.ID
				refsMu.Unlock()
			}
			return nil
		})
	}

	for _, upd := range plan.updates {
		g.Go(func() error {
			props := todoStatusProperties(upd.Checked)
			if upd.Title != "" {
				props["Name"] = notionsdk.NewTitleProperty(upd.Title)
			}
			if _, err := sdk.UpdatePage(ctx, upd.RemoteID, &notionsdk.UpdatePageParams{Props: props}); err != nil {
				return err
			}
			updated.Add(1)
			return nil
		})
	}

	for _, row := range plan.deletes {
		g.Go(func() error {
			// database rows are blocks, removal goes through the block API
			if err := sdk.DeleteBlock(ctx, row.ID); err != nil {
				return err
			}
			deleted.Add(1)
			return nil
		})
	}

	err = g.Wait()

	outcome.Created = int(created.Load())
	outcome.Updated = int(updated.Load())
	outcome.Deleted = int(deleted.Load())
	if err != nil {
		outcome.Err = err.Error()
		slog.Error("reconcile batch incomplete",
			"database", databaseID,
			"created", outcome.Created,
			"updated", outcome.Updated,
			"deleted", outcome.Deleted,
			"error", err,
		)
		return outcome
	}

	outcome.Success = true
	slog.Info("reconcile done",
		"database", databaseID,
		"created", outcome.Created,
		"updated", outcome.Updated,
		"deleted", outcome.Deleted,
	)
	return outcome
}
