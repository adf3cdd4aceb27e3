package notionsdk

import (
	"time"

	"github.com/imroc/req/v3"

	"github.com/nretro/retrosync/internal/version"
)

const (
	HeaderUserAgent     = "User-Agent"
	HeaderNotionVersion = "Notion-Version"

	// NotionVersion is the workspace API revision every call is pinned to.
	NotionVersion = "2022-06-28"

	// DefaultBaseURL is the public workspace API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// requestTimeout bounds every remote call. The API has no transaction
	// primitive, so a hung call must not stall a whole sync batch.
	requestTimeout = 30 * time.Second
)

// Client is a typed wrapper over the workspace HTTP API. It is constructed
// per access token and carries no state beyond the underlying HTTP client,
// so callers must not cache one across users.
type Client struct {
	client *req.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at a non-default API endpoint.
// Used by tests and self-hosted proxies.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.client.SetBaseURL(url)
	}
}

// New creates a workspace API client bound to a single access token.
func New(accessToken string, opts ...Option) *Client {
	client := req.C().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(requestTimeout).
		SetUserAgent("RetroSync/"+version.Version).
		SetCommonHeader(HeaderNotionVersion, NotionVersion).
		SetCommonBearerAuthToken(accessToken).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	c := &Client{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections held by the underlying transport.
// Clients are per-token and short-lived, so connections must not
// linger past the operation that needed them.
func (c *Client) Close() error {
	c.client.GetTransport().CloseIdleConnections()
	return nil
}
