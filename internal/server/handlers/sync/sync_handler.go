package sync

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nretro/retrosync/internal/notionsync"
	"github.com/nretro/retrosync/internal/server/middlewares"
	"github.com/nretro/retrosync/internal/store"
)

// SyncHandler serves publishing and tracked sync runs.
type SyncHandler struct {
	store     *store.Store
	publisher *notionsync.Publisher
}

func New(st *store.Store, publisher *notionsync.Publisher) *SyncHandler {
	return &SyncHandler{
		store:     st,
		publisher: publisher,
	}
}

func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func publishStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, notionsync.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, notionsync.ErrNotConnected):
		return http.StatusBadRequest
	case errors.Is(err, notionsync.ErrTokenExpired), errors.Is(err, notionsync.ErrTokenInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublishCollection mirrors a collection as a workspace page.
func (h *SyncHandler) PublishCollection(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _ := middlewares.UserID(ctx)

	ref, err := h.publisher.PublishCollection(ctx, userID, id)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to publish collection: %w", err))
		ctx.JSON(publishStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, ref)
}

// UnpublishCollection removes the mirrored page of a collection.
func (h *SyncHandler) UnpublishCollection(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _ := middlewares.UserID(ctx)

	if err := h.publisher.RemoveCollectionPage(ctx, userID, id); err != nil {
		ctx.Error(fmt.Errorf("failed to unpublish collection: %w", err))
		ctx.JSON(publishStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// PublishActivity mirrors an activity as a nested workspace page.
func (h *SyncHandler) PublishActivity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _ := middlewares.UserID(ctx)

	ref, err := h.publisher.PublishActivity(ctx, userID, id)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to publish activity: %w", err))
		ctx.JSON(publishStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, ref)
}

// StartSync kicks off a background reconciliation and returns its id.
func (h *SyncHandler) StartSync(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _ := middlewares.UserID(ctx)

	syncID, err := h.publisher.StartSync(ctx, userID, id)
	if err != nil {
		ctx.Error(fmt.Errorf("failed to start sync: %w", err))
		ctx.JSON(publishStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"syncId": syncID})
}

// SyncStatus reports one tracked run.
func (h *SyncHandler) SyncStatus(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _ := middlewares.UserID(ctx)

	sync, err := h.store.Syncs.ByID(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sync not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sync)
}

// SyncHistory lists the user's recent runs, newest first.
func (h *SyncHandler) SyncHistory(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)

	out, err := h.store.Syncs.History(ctx, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		out = []store.Sync{}
	}
	ctx.JSON(http.StatusOK, out)
}
