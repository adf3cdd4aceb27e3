package notionsdk

import (
	"context"
)

const (
	pagesPath = "/pages"
	pagePath  = "/pages/{id}"
)

// ParentType discriminates where a document hangs in the workspace tree.
type ParentType string

const (
	ParentWorkspace ParentType = "workspace"
	ParentPage      ParentType = "page_id"
	ParentDatabase  ParentType = "database_id"
)

// Parent is the parent descriptor on pages, databases and blocks.
type Parent struct {
	Type       ParentType `json:"type,omitempty"`
	PageID     string     `json:"page_id,omitempty"`
	DatabaseID string     `json:"database_id,omitempty"`
	Workspace  bool       `json:"workspace,omitempty"`
}

// IsWorkspace reports whether the parent is the workspace root. Archiving
// is not permitted for documents parented there.
func (p *Parent) IsWorkspace() bool {
	return p != nil && (p.Type == ParentWorkspace || p.Workspace)
}

// WorkspaceParent returns the workspace-root parent descriptor.
func WorkspaceParent() Parent {
	return Parent{Type: ParentWorkspace, Workspace: true}
}

// PageParent returns a parent descriptor nesting under the given page.
func PageParent(pageID string) Parent {
	return Parent{Type: ParentPage, PageID: pageID}
}

// DatabaseParent returns a parent descriptor for a database row.
func DatabaseParent(databaseID string) Parent {
	return Parent{Type: ParentDatabase, DatabaseID: databaseID}
}

// Page is a page object as returned by the API.
type Page struct {
	Object   string     `json:"object,omitempty"`
	ID       string     `json:"id"`
	URL      string     `json:"url,omitempty"`
	Archived bool       `json:"archived,omitempty"`
	Parent   *Parent    `json:"parent,omitempty"`
	Props    Properties `json:"properties,omitempty"`
}

// CreatePageParams is the body of POST /pages.
type CreatePageParams struct {
	Parent   Parent     `json:"parent"`
	Props    Properties `json:"properties"`
	Children []Block    `json:"children,omitempty"`
}

// UpdatePageParams is the body of PATCH /pages/{id}. Archived uses a
// pointer so "not patched" and "unarchive" stay distinguishable.
type UpdatePageParams struct {
	Props    Properties `json:"properties,omitempty"`
	Archived *bool      `json:"archived,omitempty"`
}

// GetPage fetches a single page, including its parent descriptor.
func (c *Client) GetPage(ctx context.Context, pageID string) (page *Page, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", pageID).
		SetSuccessResult(&page).
		Get(pagePath)

	if err := handleAPIError(res, err, "get page"); err != nil {
		return nil, err
	}

	return page, nil
}

// CreatePage creates a page under the given parent with an optional body.
func (c *Client) CreatePage(ctx context.Context, params *CreatePageParams) (page *Page, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&page).
		Post(pagesPath)

	if err := handleAPIError(res, err, "create page"); err != nil {
		return nil, err
	}

	return page, nil
}

// UpdatePage patches page properties or the archived flag.
func (c *Client) UpdatePage(ctx context.Context, pageID string, params *UpdatePageParams) (page *Page, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", pageID).
		SetBody(params).
		SetSuccessResult(&page).
		Patch(pagePath)

	if err := handleAPIError(res, err, "update page"); err != nil {
		return nil, err
	}

	return page, nil
}
