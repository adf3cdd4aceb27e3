package notion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nretro/retrosync/internal/notionsdk"
	"github.com/nretro/retrosync/internal/notionsync"
	"github.com/nretro/retrosync/internal/server/middlewares"
)

// NotionHandler serves the workspace connection lifecycle and the
// listing endpoints.
type NotionHandler struct {
	grants    *notionsync.GrantService
	publisher *notionsync.Publisher
}

func New(grants *notionsync.GrantService, publisher *notionsync.Publisher) *NotionHandler {
	return &NotionHandler{
		grants:    grants,
		publisher: publisher,
	}
}

// grantStatus maps grant lifecycle errors onto HTTP codes.
func grantStatus(err error) int {
	switch {
	case errors.Is(err, notionsync.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, notionsync.ErrNotConnected):
		return http.StatusBadRequest
	case errors.Is(err, notionsync.ErrTokenExpired), errors.Is(err, notionsync.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, notionsync.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Authorize begins the OAuth handshake and returns the provider URL.
func (h *NotionHandler) Authorize(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	url, err := h.grants.BeginAuthorization(ctx, userID)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to begin authorization: %w", err))
		ctx.JSON(grantStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, &AuthorizeResponse{URL: url})
}

// Callback is the public OAuth redirect target. The user is identified
// by the state nonce, not by a session.
func (h *NotionHandler) Callback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "code and state are required"})
		return
	}

	_, grant, err := h.grants.CompleteAuthorization(ctx, code, state)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to complete authorization: %w", err))
		ctx.JSON(grantStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, &StatusResponse{
		Connected:     true,
		WorkspaceID:   grant.WorkspaceID,
		WorkspaceName: grant.WorkspaceName,
		ExpiresAt:     grant.ExpiresAt,
	})
}

// Status reports the stored connection without probing the provider.
func (h *NotionHandler) Status(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	grant, err := h.grants.Grant(ctx, userID)
	if errors.Is(err, notionsync.ErrNotConnected) {
		ctx.JSON(http.StatusOK, &StatusResponse{Connected: false})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, &StatusResponse{
		Connected:     true,
		WorkspaceID:   grant.WorkspaceID,
		WorkspaceName: grant.WorkspaceName,
		ExpiresAt:     grant.ExpiresAt,
	})
}

// Disconnect drops the stored grant. Safe to call when not connected.
func (h *NotionHandler) Disconnect(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	if err := h.grants.Disconnect(ctx, userID); err != nil {
		ctx.Error(fmt.Errorf("failed to disconnect: %w", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *NotionHandler) ListDatabases(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	results, err := h.publisher.ListDatabases(ctx, userID)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to list databases: %w", err))
		ctx.JSON(grantStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, listing(results))
}

func (h *NotionHandler) ListPages(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	results, err := h.publisher.ListPages(ctx, userID)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to list pages: %w", err))
		ctx.JSON(grantStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, listing(results))
}

func listing(results []notionsdk.SearchResult) []ListingEntry {
	out := make([]ListingEntry, 0, len(results))
	for _, r := range results {
		title := notionsdk.PlainString(r.Title)
		if title == "" {
			title = r.Props.TitleValue()
		}
		out = append(out, ListingEntry{ID: r.ID, Title: title, URL: r.URL})
	}
	return out
}
