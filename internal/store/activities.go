package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timevault/api/internal/docstore"
	"github.com/timevault/api/internal/models"
)

const collectionActivities = "activities"

// ActivityRepository handles activity persistence.
type ActivityRepository struct {
	store docstore.Store
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(store docstore.Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Create persists a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.store.Set(ctx, collectionActivities, activity.ID.String(), activity); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by ID regardless of owner. Callers decide
// whether ownership matters.
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	data, err := r.store.Get(ctx, collectionActivities, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return decodeActivity(data)
}

// ListByUser retrieves all activities owned by a user.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string) ([]*models.Activity, error) {
	docs, err := r.store.Query(ctx, collectionActivities, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "user_id", Op: docstore.OpEq, Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	activities := make([]*models.Activity, 0, len(docs))
	for _, data := range docs {
		activity, err := decodeActivity(data)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

// decodeActivity unmarshals an activity document and validates its required
// fields. A missing created_at is tolerated and backfilled with the current
// time, matching how pre-existing records without one are served.
func decodeActivity(data json.RawMessage) (*models.Activity, error) {
	var activity models.Activity
	if err := json.Unmarshal(data, &activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}
	if activity.ID == uuid.Nil {
		return nil, fmt.Errorf("activity document missing id")
	}
	if activity.Name == "" {
		return nil, fmt.Errorf("activity %s missing name", activity.ID)
	}
	if activity.UserID == "" {
		return nil, fmt.Errorf("activity %s missing user_id", activity.ID)
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	} else {
		activity.CreatedAt = activity.CreatedAt.UTC()
	}
	return &activity, nil
}
