package notionsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/store"
)

// syncTimeout bounds one background reconciliation run end to end.
const syncTimeout = 5 * time.Minute

// Publisher mirrors local collections into the connected workspace:
// page publishing, todo database provisioning and tracked
// reconciliation runs.
type Publisher struct {
	store   *store.Store
	grants  *GrantService
	sdkOpts []notionsdk.Option
	flights *flightGate
}

type PublisherOption func(*Publisher)

// WithPublisherSDKOptions forwards options to every workspace client
// the publisher constructs. Used by tests to point at a fake API.
func WithPublisherSDKOptions(opts ...notionsdk.Option) PublisherOption {
	return func(p *Publisher) {
		p.sdkOpts = append(p.sdkOpts, opts...)
	}
}

func NewPublisher(st *store.Store, grants *GrantService, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:   st,
		grants:  grants,
		flights: newFlightGate(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// sdkFor builds a workspace client for the user's current grant,
// validating it first.
func (p *Publisher) sdkFor(ctx context.Context, userID int64) (*notionsdk.Client, error) {
	token, err := p.grants.ValidToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return notionsdk.New(token, p.sdkOpts...), nil
}

// collectionFor loads a collection and enforces ownership. A foreign
// collection reads as absent rather than forbidden.
func (p *Publisher) collectionFor(ctx context.Context, userID, collectionID int64) (*store.Collection, error) {
	coll, err := p.store.Collections.ByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if coll.UserID != userID {
		return nil, store.ErrNotFound
	}
	return coll, nil
}

// PublishCollection mirrors a collection as a workspace page. The first
// call creates the page at the workspace root and records its id; later
// calls rebuild the existing page in place. Safe to call repeatedly.
func (p *Publisher) PublishCollection(ctx context.Context, userID, collectionID int64) (*PageRef, error) {
	coll, err := p.collectionFor(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}

	sdk, err := p.sdkFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sdk.Close()

	return p.publishCollection(ctx, sdk, coll)
}

func (p *Publisher) publishCollection(ctx context.Context, sdk *notionsdk.Client, coll *store.Collection) (*PageRef, error) {
	todos, err := p.store.Todos.ByCollection(ctx, coll.ID)
	if err != nil {
		return nil, err
	}
	blocks := append(CollectionBlocks(coll), TodoBlocks(todos)...)

	if coll.PageID != "" {
		if err := UpdatePage(ctx, sdk, coll.PageID, coll.Title, blocks); err != nil {
			return nil, fmt.Errorf("failed to update collection page: %w", err)
		}
		return &PageRef{ID: coll.PageID, Title: coll.Title}, nil
	}

	ref, err := CreatePage(ctx, sdk, notionsdk.WorkspaceParent(), coll.Title, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection page: %w", err)
	}
	if err := p.store.Collections.SetPageID(ctx, coll.ID, ref.ID); err != nil {
		return nil, err
	}
	coll.PageID = ref.ID

	slog.Info("collection page created", "collection", coll.ID, "page", ref.ID)
	return ref, nil
}

// PublishActivity mirrors an activity as a page nested under its
// collection's page, publishing the collection first when it has never
// been mirrored.
func (p *Publisher) PublishActivity(ctx context.Context, userID, activityID int64) (*PageRef, error) {
	activity, err := p.store.Activities.ByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	coll, err := p.collectionFor(ctx, userID, activity.CollectionID)
	if err != nil {
		return nil, err
	}

	sdk, err := p.sdkFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sdk.Close()

	if coll.PageID == "" {
		if _, err := p.publishCollection(ctx, sdk, coll); err != nil {
			return nil, err
		}
	}

	blocks := ActivityBlocks(activity)

	if activity.PageID != "" {
		if err := UpdatePage(ctx, sdk, activity.PageID, activity.Title, blocks); err != nil {
			return nil, fmt.Errorf("failed to update activity page: %w", err)
		}
		return &PageRef{ID: activity.PageID, Title: activity.Title}, nil
	}

	ref, err := CreatePage(ctx, sdk, notionsdk.PageParent(coll.PageID), activity.Title, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity page: %w", err)
	}
	if err := p.store.Activities.SetPageID(ctx, activity.ID, ref.ID); err != nil {
		return nil, err
	}

	slog.Info("activity page created", "activity", activity.ID, "page", ref.ID)
	return ref, nil
}

// StartSync records a sync run and kicks off the reconciliation in the
// background, returning the run id immediately. Progress is observable
// through the sync record, which settles exactly once.
func (p *Publisher) StartSync(ctx context.Context, userID, collectionID int64) (int64, error) {
	coll, err := p.collectionFor(ctx, userID, collectionID)
	if err != nil {
		return 0, err
	}

	// fail fast on an unusable grant before recording the run
	if err := p.grants.EnsureValid(ctx, userID); err != nil {
		return 0, err
	}

	syncID, err := p.store.Syncs.Create(ctx, userID, coll.ID)
	if err != nil {
		return 0, err
	}

	go p.runSync(syncID, userID, coll.ID)
	return syncID, nil
}

// runSync executes one tracked reconciliation. It owns its own context:
// the HTTP request that started the run has already returned.
func (p *Publisher) runSync(syncID, userID, collectionID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	release := p.flights.acquire(collectionID)
	defer release()

	outcome := p.sync(ctx, userID, collectionID)

	var err error
	if outcome.Success {
		err = p.store.Syncs.Complete(ctx, syncID, outcome.Created, outcome.Updated, outcome.Deleted)
	} else {
		err = p.store.Syncs.Fail(ctx, syncID, outcome.Created, outcome.Updated, outcome.Deleted, outcome.Err)
	}
	if err != nil {
		slog.Error("failed to settle sync record", "sync", syncID, "error", err)
	}
}

func (p *Publisher) sync(ctx context.Context, userID, collectionID int64) *SyncOutcome {
	fail := func(err error) *SyncOutcome {
		return &SyncOutcome{Err: err.Error(), CreatedRefs: map[int64]string{}}
	}

	coll, err := p.collectionFor(ctx, userID, collectionID)
	if err != nil {
		return fail(err)
	}

	sdk, err := p.sdkFor(ctx, userID)
	if err != nil {
		return fail(err)
	}
	defer sdk.Close()

	if _, err := p.publishCollection(ctx, sdk, coll); err != nil {
		return fail(err)
	}

	dbID, err := EnsureTodoDatabase(ctx, sdk, coll.PageID, coll.Title)
	if err != nil {
		return fail(err)
	}

	todos, err := p.store.Todos.ByCollection(ctx, coll.ID)
	if err != nil {
		return fail(err)
	}
	items := make([]TodoItem, 0, len(todos))
	for _, t := range todos {
		items = append(items, TodoItem{
			LocalID:  t.ID,
			Title:    t.Title,
			Checked:  t.Completed,
			RemoteID: t.NotionPageID,
		})
	}

	outcome := Reconcile(ctx, sdk, dbID, items)

	for localID, pageID := range outcome.CreatedRefs {
		if err := p.store.Todos.SetNotionPageID(ctx, localID, pageID); err != nil {
			slog.Error("failed to record todo page ref", "todo", localID, "error", err)
		}
	}

	return outcome
}

// ListPages searches the connected workspace for pages the integration
// can see.
func (p *Publisher) ListPages(ctx context.Context, userID int64) ([]notionsdk.SearchResult, error) {
	return p.search(ctx, userID, notionsdk.PageFilter())
}

// ListDatabases searches the connected workspace for databases the
// integration can see.
func (p *Publisher) ListDatabases(ctx context.Context, userID int64) ([]notionsdk.SearchResult, error) {
	return p.search(ctx, userID, notionsdk.DatabaseFilter())
}

func (p *Publisher) search(ctx context.Context, userID int64, filter *notionsdk.SearchFilter) ([]notionsdk.SearchResult, error) {
	sdk, err := p.sdkFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sdk.Close()

	resp, err := sdk.Search(ctx, &notionsdk.SearchParams{Filter: filter})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// RemoveCollectionPage tears down the mirrored page of a collection and
// drops the stored reference. A collection that was never published is
// a no-op. The local collection itself is untouched.
func (p *Publisher) RemoveCollectionPage(ctx context.Context, userID, collectionID int64) error {
	coll, err := p.collectionFor(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if coll.PageID == "" {
		return nil
	}

	sdk, err := p.sdkFor(ctx, userID)
	if err != nil {
		return err
	}
	defer sdk.Close()

	if err := RemovePage(ctx, sdk, coll.PageID); err != nil {
		return fmt.Errorf("failed to remove collection page: %w", err)
	}
	return p.store.Collections.SetPageID(ctx, coll.ID, "")
}
