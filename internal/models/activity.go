package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a named thing a user tracks time against. Activities are
// immutable after creation and visible only to their owner.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
