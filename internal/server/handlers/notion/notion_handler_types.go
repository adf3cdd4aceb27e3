package notion

import "time"

// AuthorizeResponse carries the provider URL the browser should visit.
type AuthorizeResponse struct {
	URL string `json:"url"`
}

// StatusResponse reports the user's workspace connection.
type StatusResponse struct {
	Connected     bool       `json:"connected"`
	WorkspaceID   string     `json:"workspaceId,omitempty"`
	WorkspaceName string     `json:"workspaceName,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// ListingEntry is one page or database visible to the integration.
type ListingEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}
