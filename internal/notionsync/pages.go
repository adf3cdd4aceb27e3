package notionsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nretro/retrosync/internal/notionsdk"
)

// deletedTitle marks a workspace-root page the API would not let us
// archive. The page is emptied and retitled instead of removed.
const deletedTitle = "[DELETED] This page was removed by RetroSync"

// PageRef identifies a remote document a local entity is mirrored to.
type PageRef struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// CreatePage creates a page under the given parent with a compiled body.
func CreatePage(ctx context.Context, sdk *notionsdk.Client, parent notionsdk.Parent, title string, blocks []notionsdk.Block) (*PageRef, error) {
	page, err := sdk.CreatePage(ctx, &notionsdk.CreatePageParams{
		Parent:   parent,
		Props:    TitleProperties(title),
		Children: blocks,
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	slog.Info("page created", "page", page.ID, "title", title)
	return &PageRef{ID: page.ID, URL: page.URL, Title: title}, nil
}

// UpdatePage patches the title and replaces the body wholesale: existing
// child blocks are deleted and the freshly compiled tree appended. The
// replace-don't-merge policy avoids a content-level diff for free-form
// blocks; item identity only matters for database rows, which go through
// Reconcile instead.
func UpdatePage(ctx context.Context, sdk *notionsdk.Client, pageID, title string, blocks []notionsdk.Block) error {
	if _, err := sdk.UpdatePage(ctx, pageID, &notionsdk.UpdatePageParams{
		Props: TitleProperties(title),
	}); err != nil {
		return fmt.Errorf("update page title: %w", err)
	}

	children, err := sdk.GetBlockChildren(ctx, pageID)
	if err != nil {
		return fmt.Errorf("list page blocks: %w", err)
	}

	for _, block := range children.Results {
		if err := sdk.DeleteBlock(ctx, block.ID); err != nil {
			// partial emptying beats keeping stale content
			slog.Warn("delete stale block", "page", pageID, "block", block.ID, "error", err)
		}
	}

	if _, err := sdk.AppendBlockChildren(ctx, pageID, blocks); err != nil {
		return fmt.Errorf("append page blocks: %w", err)
	}

	slog.Info("page updated", "page", pageID, "title", title, "blocks", len(blocks))
	return nil
}

// RemovePage removes a remote page as far as the API allows. Nested pages
// are archived with a single patch. Workspace-root pages cannot be
// archived, so every child block is deleted best-effort and the title is
// rewritten to a deletion sentinel, leaving an empty, visibly-marked
// document.
func RemovePage(ctx context.Context, sdk *notionsdk.Client, pageID string) error {
	page, err := sdk.GetPage(ctx, pageID)
	if err != nil {
		return fmt.Errorf("read page parent: %w", err)
	}

	if !page.Parent.IsWorkspace() {
		archived := true
		if _, err := sdk.UpdatePage(ctx, pageID, &notionsdk.UpdatePageParams{Archived: &archived}); err != nil {
			return fmt.Errorf("archive page: %w", err)
		}
		slog.Info("page archived", "page", pageID)
		return nil
	}

	children, err := sdk.GetBlockChildren(ctx, pageID)
	if err != nil {
		return fmt.Errorf("list page blocks: %w", err)
	}

	deleted := 0
	for _, block := range children.Results {
		if err := sdk.DeleteBlock(ctx, block.ID); err != nil {
			slog.Warn("delete block", "page", pageID, "block", block.ID, "error", err)
			continue
		}
		deleted++
	}

	if _, err := sdk.UpdatePage(ctx, pageID, &notionsdk.UpdatePageParams{
		Props: TitleProperties(deletedTitle),
	}); err != nil {
		return fmt.Errorf("mark page deleted: %w", err)
	}

	slog.Info("workspace page emptied and marked deleted", "page", pageID, "blocks", deleted)
	return nil
}

// EnsureTodoDatabase returns the id of the todo database nested in the
// given page, creating it when absent. Existing child databases are
// reused so repeated publishes stay idempotent.
func EnsureTodoDatabase(ctx context.Context, sdk *notionsdk.Client, pageID, title string) (string, error) {
	children, err := sdk.GetBlockChildren(ctx, pageID)
	if err != nil {
		return "", fmt.Errorf("list page blocks: %w", err)
	}

	for _, block := range children.Results {
		if block.Type == notionsdk.BlockChildDatabase {
			return block.ID, nil
		}
	}

	db, err := sdk.CreateDatabase(ctx, &notionsdk.CreateDatabaseParams{
		Parent: notionsdk.PageParent(pageID),
		Title:  notionsdk.Text(title + " Todos"),
		Props: map[string]notionsdk.PropertySchema{
			"Name":   {Title: &struct{}{}},
			"Status": {Checkbox: &struct{}{}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create todo database: %w", err)
	}

	slog.Info("todo database created", "page", pageID, "database", db.ID)
	return db.ID, nil
}
