package collection

import "github.com/nretro/retrosync/internal/store"

// CollectionRequest creates or updates a collection.
type CollectionRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// TodoRequest creates or updates a todo.
type TodoRequest struct {
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

// ActivityRequest creates or updates an activity.
type ActivityRequest struct {
	Title        string         `json:"title" binding:"required"`
	Summary      string         `json:"summary"`
	Facilitator  string         `json:"facilitator"`
	Participants []string       `json:"participants"`
	Actions      []store.Action `json:"actions"`
}
