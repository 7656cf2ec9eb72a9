package tracking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/timevault/api/internal/models"
	"github.com/timevault/api/internal/store"
)

// EntryFilter describes one retrieval path for the entry listing:
// everything, narrowed by activity, a start-time window, or tag
// membership. Each HTTP variant supplies a different descriptor.
type EntryFilter struct {
	ActivityID *uuid.UUID
	StartFrom  *time.Time
	StartTo    *time.Time
	Tag        *string
}

// ListEntries returns the matching entries ordered by start descending,
// with resolved activity names and duration totals. Running entries
// contribute nothing to the totals.
func (s *Service) ListEntries(ctx context.Context, owner string, filter EntryFilter) (*models.TimeEntryList, error) {
	entries, err := s.entries.ListByUser(ctx, owner, store.EntryListOptions{
		ActivityID: filter.ActivityID,
		StartFrom:  filter.StartFrom,
		StartTo:    filter.StartTo,
		Tag:        filter.Tag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	totalMinutes := 0
	for _, entry := range entries {
		if entry.DurationMinutes != nil {
			totalMinutes += *entry.DurationMinutes
		}
	}

	return &models.TimeEntryList{
		Entries:      s.resolveNames(ctx, entries),
		TotalMinutes: totalMinutes,
		TotalHours:   hoursFromMinutes(totalMinutes),
	}, nil
}

// RunningEntries returns the user's currently running entries as a
// plain list, no totals.
func (s *Service) RunningEntries(ctx context.Context, owner string) ([]models.TimeEntryWithActivity, error) {
	entries, err := s.entries.Running(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list running entries: %w", err)
	}
	return s.resolveNames(ctx, entries), nil
}

// resolveNames joins each entry with its activity name, looking every
// distinct activity up once per call.
func (s *Service) resolveNames(ctx context.Context, entries []*models.TimeEntry) []models.TimeEntryWithActivity {
	names := make(map[uuid.UUID]string)
	out := make([]models.TimeEntryWithActivity, 0, len(entries))
	for _, entry := range entries {
		name, ok := names[entry.ActivityID]
		if !ok {
			name = s.activityName(ctx, entry.ActivityID)
			names[entry.ActivityID] = name
		}
		out = append(out, entry.WithActivity(name))
	}
	return out
}

// hoursFromMinutes converts minutes to hours rounded to two decimals.
func hoursFromMinutes(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
