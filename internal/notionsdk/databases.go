package notionsdk

import (
	"context"
)

const (
	databasesPath     = "/databases"
	databaseQueryPath = "/databases/{id}/query"
	searchPath        = "/search"
)

// Database is a database object as returned by the API.
type Database struct {
	Object string     `json:"object,omitempty"`
	ID     string     `json:"id"`
	URL    string     `json:"url,omitempty"`
	Title  []RichText `json:"title,omitempty"`
	Parent *Parent    `json:"parent,omitempty"`
}

// PropertySchema declares one column when creating a database. Exactly one
// of the kind markers is set.
type PropertySchema struct {
	Title    *struct{} `json:"title,omitempty"`
	Checkbox *struct{} `json:"checkbox,omitempty"`
	RichText *struct{} `json:"rich_text,omitempty"`
}

// CreateDatabaseParams is the body of POST /databases.
type CreateDatabaseParams struct {
	Parent Parent                    `json:"parent"`
	Title  []RichText                `json:"title"`
	Props  map[string]PropertySchema `json:"properties"`
}

// QueryDatabaseParams is the body of POST /databases/{id}/query.
// Pagination beyond the first page is a straightforward extension via
// StartCursor; callers in this repo read only the first page.
type QueryDatabaseParams struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabaseResponse is a paged list of database rows.
type QueryDatabaseResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// SearchFilter narrows search results to one object kind.
type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// SearchParams is the body of POST /search.
type SearchParams struct {
	Query    string        `json:"query,omitempty"`
	Filter   *SearchFilter `json:"filter,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
}

// SearchResult is one entry of a search response; Object discriminates
// between page and database payloads sharing the envelope.
type SearchResult struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	URL    string     `json:"url,omitempty"`
	Title  []RichText `json:"title,omitempty"`
	Props  Properties `json:"properties,omitempty"`
}

// SearchResponse is a paged list of search results.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// PageFilter filters a search to page objects.
func PageFilter() *SearchFilter {
	return &SearchFilter{Property: "object", Value: "page"}
}

// DatabaseFilter filters a search to database objects.
func DatabaseFilter() *SearchFilter {
	return &SearchFilter{Property: "object", Value: "database"}
}

// Search lists pages or databases the integration can see.
func (c *Client) Search(ctx context.Context, params *SearchParams) (resp *SearchResponse, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&resp).
		Post(searchPath)

	if err := handleAPIError(res, err, "search"); err != nil {
		return nil, err
	}

	return resp, nil
}

// CreateDatabase creates a database under a parent page.
func (c *Client) CreateDatabase(ctx context.Context, params *CreateDatabaseParams) (db *Database, err error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&db).
		Post(databasesPath)

	if err := handleAPIError(res, err, "create database"); err != nil {
		return nil, err
	}

	return db, nil
}

// QueryDatabase lists the rows of a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, params *QueryDatabaseParams) (resp *QueryDatabaseResponse, err error) {
	if params == nil {
		params = &QueryDatabaseParams{}
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", databaseID).
		SetBody(params).
		SetSuccessResult(&resp).
		Post(databaseQueryPath)

	if err := handleAPIError(res, err, "query database"); err != nil {
		return nil, err
	}

	return resp, nil
}
