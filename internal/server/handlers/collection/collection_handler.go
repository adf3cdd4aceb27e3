package collection

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nretro/retrosync/internal/server/middlewares"
	"github.com/nretro/retrosync/internal/store"
)

// CollectionHandler serves the collection, todo and activity CRUD.
// Every operation is scoped to the authenticated user; foreign rows
// read as absent.
type CollectionHandler struct {
	store *store.Store
}

func New(st *store.Store) *CollectionHandler {
	return &CollectionHandler{store: st}
}

func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// owned loads a collection and enforces ownership.
func (h *CollectionHandler) owned(ctx *gin.Context, collectionID int64) (*store.Collection, bool) {
	userID, _ := middlewares.UserID(ctx)
	coll, err := h.store.Collections.ByID(ctx, collectionID)
	if err == nil && coll.UserID != userID {
		err = store.ErrNotFound
	}
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return nil, false
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return coll, true
}

func (h *CollectionHandler) List(ctx *gin.Context) {
	userID, _ := middlewares.UserID(ctx)
	out, err := h.store.Collections.ByUser(ctx, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		out = []store.Collection{}
	}
	ctx.JSON(http.StatusOK, out)
}

func (h *CollectionHandler) Create(ctx *gin.Context) {
	var req CollectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middlewares.UserID(ctx)
	coll := &store.Collection{
		UserID:  userID,
		Title:   req.Title,
		Summary: req.Summary,
	}
	id, err := h.store.Collections.Create(ctx, coll)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.Collections.ByID(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

func (h *CollectionHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	coll, ok := h.owned(ctx, id)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, coll)
}

func (h *CollectionHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	coll, ok := h.owned(ctx, id)
	if !ok {
		return
	}

	var req CollectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coll.Title = req.Title
	coll.Summary = req.Summary
	if err := h.store.Collections.Update(ctx, coll); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, coll)
}

func (h *CollectionHandler) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.owned(ctx, id); !ok {
		return
	}
	if err := h.store.Collections.Delete(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *CollectionHandler) ListTodos(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.owned(ctx, id); !ok {
		return
	}
	out, err := h.store.Todos.ByCollection(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		out = []store.Todo{}
	}
	ctx.JSON(http.StatusOK, out)
}

func (h *CollectionHandler) CreateTodo(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.owned(ctx, id); !ok {
		return
	}

	var req TodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo := &store.Todo{
		CollectionID: id,
		Title:        req.Title,
		Completed:    req.Completed,
	}
	todoID, err := h.store.Todos.Create(ctx, todo)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.Todos.ByID(ctx, todoID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// ownedTodo loads a todo and checks the owning collection.
func (h *CollectionHandler) ownedTodo(ctx *gin.Context, todoID int64) (*store.Todo, bool) {
	todo, err := h.store.Todos.ByID(ctx, todoID)
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return nil, false
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if _, ok := h.owned(ctx, todo.CollectionID); !ok {
		return nil, false
	}
	return todo, true
}

func (h *CollectionHandler) UpdateTodo(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	todo, ok := h.ownedTodo(ctx, id)
	if !ok {
		return
	}

	var req TodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo.Title = req.Title
	todo.Completed = req.Completed
	if err := h.store.Todos.Update(ctx, todo); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, todo)
}

func (h *CollectionHandler) DeleteTodo(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.ownedTodo(ctx, id); !ok {
		return
	}
	if err := h.store.Todos.Delete(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *CollectionHandler) ListActivities(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.owned(ctx, id); !ok {
		return
	}
	out, err := h.store.Activities.ByCollection(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out == nil {
		out = []store.Activity{}
	}
	ctx.JSON(http.StatusOK, out)
}

func (h *CollectionHandler) CreateActivity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.owned(ctx, id); !ok {
		return
	}

	var req ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity := &store.Activity{
		CollectionID: id,
		Title:        req.Title,
		Summary:      req.Summary,
		Facilitator:  req.Facilitator,
		Participants: req.Participants,
		Actions:      req.Actions,
	}
	activityID, err := h.store.Activities.Create(ctx, activity)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.Activities.ByID(ctx, activityID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// ownedActivity loads an activity and checks the owning collection.
func (h *CollectionHandler) ownedActivity(ctx *gin.Context, activityID int64) (*store.Activity, bool) {
	activity, err := h.store.Activities.ByID(ctx, activityID)
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return nil, false
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if _, ok := h.owned(ctx, activity.CollectionID); !ok {
		return nil, false
	}
	return activity, true
}

func (h *CollectionHandler) GetActivity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	activity, ok := h.ownedActivity(ctx, id)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, activity)
}

func (h *CollectionHandler) UpdateActivity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	activity, ok := h.ownedActivity(ctx, id)
	if !ok {
		return
	}

	var req ActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity.Title = req.Title
	activity.Summary = req.Summary
	activity.Facilitator = req.Facilitator
	activity.Participants = req.Participants
	activity.Actions = req.Actions
	if err := h.store.Activities.Update(ctx, activity); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, activity)
}

func (h *CollectionHandler) DeleteActivity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if _, ok := h.ownedActivity(ctx, id); !ok {
		return
	}
	if err := h.store.Activities.Delete(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}
