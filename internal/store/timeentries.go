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

const collectionTimeEntries = "time_entries"

// EntryListOptions narrows a user's time entry listing. Nil fields are not
// applied. Range bounds are inclusive on both ends and compare against
// start_datetime.
type EntryListOptions struct {
	ActivityID *uuid.UUID
	StartFrom  *time.Time
	StartTo    *time.Time
	Tag        *string
}

// TimeEntryRepository handles time entry persistence.
type TimeEntryRepository struct {
	store docstore.Store
}

// NewTimeEntryRepository creates a new time entry repository.
func NewTimeEntryRepository(store docstore.Store) *TimeEntryRepository {
	return &TimeEntryRepository{store: store}
}

// Create persists a new time entry. A conflict from the store (another
// running entry for the same user) passes through for the caller to map.
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if err := r.store.Set(ctx, collectionTimeEntries, entry.ID.String(), entry); err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}
	return nil
}

// GetByID retrieves a time entry by ID regardless of owner.
func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	data, err := r.store.Get(ctx, collectionTimeEntries, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return decodeTimeEntry(data)
}

// Update merges fields into a stored time entry.
func (r *TimeEntryRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if err := r.store.Update(ctx, collectionTimeEntries, id.String(), fields); err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's time entries newest first by start datetime.
func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID string, opts EntryListOptions) ([]*models.TimeEntry, error) {
	q := docstore.Query{
		Filters: []docstore.Filter{
			{Field: "user_id", Op: docstore.OpEq, Value: userID},
		},
		OrderBy:    "start_datetime",
		Descending: true,
	}
	if opts.ActivityID != nil {
		q.Filters = append(q.Filters, docstore.Filter{Field: "activity_id", Op: docstore.OpEq, Value: opts.ActivityID.String()})
	}
	if opts.StartFrom != nil {
		q.Filters = append(q.Filters, docstore.Filter{Field: "start_datetime", Op: docstore.OpGte, Value: *opts.StartFrom})
	}
	if opts.StartTo != nil {
		q.Filters = append(q.Filters, docstore.Filter{Field: "start_datetime", Op: docstore.OpLte, Value: *opts.StartTo})
	}
	if opts.Tag != nil {
		q.Filters = append(q.Filters, docstore.Filter{Field: "tags", Op: docstore.OpContains, Value: *opts.Tag})
	}

	return r.queryEntries(ctx, q)
}

// Running retrieves a user's running time entries.
func (r *TimeEntryRepository) Running(ctx context.Context, userID string) ([]*models.TimeEntry, error) {
	return r.queryEntries(ctx, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "user_id", Op: docstore.OpEq, Value: userID},
			{Field: "is_running", Op: docstore.OpEq, Value: true},
		},
	})
}

func (r *TimeEntryRepository) queryEntries(ctx context.Context, q docstore.Query) ([]*models.TimeEntry, error) {
	docs, err := r.store.Query(ctx, collectionTimeEntries, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}

	entries := make([]*models.TimeEntry, 0, len(docs))
	for _, data := range docs {
		entry, err := decodeTimeEntry(data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// decodeTimeEntry unmarshals a time entry document, validates required
// fields, and normalizes its timestamps to UTC.
func decodeTimeEntry(data json.RawMessage) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time entry: %w", err)
	}
	if entry.ID == uuid.Nil {
		return nil, fmt.Errorf("time entry document missing id")
	}
	if entry.ActivityID == uuid.Nil {
		return nil, fmt.Errorf("time entry %s missing activity_id", entry.ID)
	}
	if entry.UserID == "" {
		return nil, fmt.Errorf("time entry %s missing user_id", entry.ID)
	}
	if entry.StartDatetime.IsZero() {
		return nil, fmt.Errorf("time entry %s missing start_datetime", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		return nil, fmt.Errorf("time entry %s missing created_at", entry.ID)
	}

	entry.StartDatetime = entry.StartDatetime.UTC()
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.EndDatetime != nil {
		end := entry.EndDatetime.UTC()
		entry.EndDatetime = &end
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	return &entry, nil
}
