package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timevault/api/internal/docstore"
	logpkg "github.com/timevault/api/internal/logger"
	"github.com/timevault/api/internal/models"
	"github.com/timevault/api/internal/notes"
	"github.com/timevault/api/internal/observability"
	"github.com/timevault/api/internal/store"
	"github.com/timevault/api/internal/timeutil"
)

const activityNameUnknown = "Unknown"

// Service owns the time-entry lifecycle: creating entries with an
// explicit range, the start/stop running-timer workflow, patch updates
// with their tag merge rules, and the query/aggregation paths.
type Service struct {
	activities *store.ActivityRepository
	entries    *store.TimeEntryRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a tracking service.
func NewService(activities *store.ActivityRepository, entries *store.TimeEntryRepository, logger *zap.Logger) *Service {
	return &Service{
		activities: activities,
		entries:    entries,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddEntryInput is the payload for creating an entry with an explicit
// range. End, notes, and tags are optional.
type AddEntryInput struct {
	ActivityID uuid.UUID
	Start      time.Time
	End        *time.Time
	Notes      string
	Tags       []string
}

// EntryPatch is a partial update to a time entry. Nil fields are left
// untouched; the distinction between an absent field and an empty value
// matters for the tag merge rules.
type EntryPatch struct {
	End   *time.Time
	Notes *string
	Tags  *[]string
}

// CreateActivity creates a new activity owned by the given user.
func (s *Service) CreateActivity(ctx context.Context, owner, name string, description *string) (*models.Activity, error) {
	activity := &models.Activity{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		UserID:      owner,
		CreatedAt:   s.now(),
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("activity_created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("user_id", logpkg.SanitizeUserID(owner)))

	return activity, nil
}

// ListActivities returns all activities owned by the given user.
func (s *Service) ListActivities(ctx context.Context, owner string) ([]*models.Activity, error) {
	activities, err := s.activities.ListByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// AddEntry creates a time entry with an explicit start and optional end.
// Hashtags in the notes become tags; the stored tag set is the union of
// supplied and extracted tags. An entry without an end is running.
func (s *Service) AddEntry(ctx context.Context, owner string, input AddEntryInput) (*models.TimeEntryWithActivity, error) {
	activity, err := s.ownedActivity(ctx, owner, input.ActivityID)
	if err != nil {
		return nil, err
	}

	cleanNotes, extracted := notes.Extract(input.Notes)

	start := timeutil.ToUTC(input.Start)
	var end *time.Time
	var durationMinutes *int
	if input.End != nil {
		e := timeutil.ToUTC(*input.End)
		end = &e
		d := timeutil.DurationMinutes(start, e)
		durationMinutes = &d
	}

	entry := &models.TimeEntry{
		ID:              uuid.New(),
		ActivityID:      input.ActivityID,
		StartDatetime:   start,
		EndDatetime:     end,
		DurationMinutes: durationMinutes,
		Notes:           optionalText(cleanNotes),
		Tags:            mergeTags(input.Tags, extracted),
		IsRunning:       end == nil,
		CreatedAt:       s.now(),
		UserID:          owner,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		// An open-ended entry is a running one, so the store's
		// uniqueness guard applies here as well.
		if errors.Is(err, docstore.ErrConflict) {
			observability.RecordStartConflict()
			return nil, ErrEntryRunning
		}
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	observability.RecordEntryCreated()
	s.logger.Info("time_entry_created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("activity_id", input.ActivityID.String()),
		zap.Bool("is_running", entry.IsRunning))

	return withName(entry, activity.Name), nil
}

// StartEntry starts the running timer against an activity. Only one
// entry per user may run at a time.
func (s *Service) StartEntry(ctx context.Context, owner string, activityID uuid.UUID) (*models.TimeEntryWithActivity, error) {
	activity, err := s.ownedActivity(ctx, owner, activityID)
	if err != nil {
		return nil, err
	}

	running, err := s.entries.Running(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to check running entries: %w", err)
	}
	if len(running) > 0 {
		observability.RecordStartConflict()
		return nil, ErrEntryRunning
	}

	current := s.now()
	entry := &models.TimeEntry{
		ID:            uuid.New(),
		ActivityID:    activityID,
		StartDatetime: current,
		Tags:          []string{},
		IsRunning:     true,
		CreatedAt:     current,
		UserID:        owner,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		// The store's uniqueness guard catches starts that raced past
		// the check above.
		if errors.Is(err, docstore.ErrConflict) {
			observability.RecordStartConflict()
			return nil, ErrEntryRunning
		}
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	observability.RecordEntryStarted()
	s.logger.Info("time_entry_started",
		zap.String("entry_id", entry.ID.String()),
		zap.String("activity_id", activityID.String()))

	return withName(entry, activity.Name), nil
}

// StopEntry closes a running entry at the current time and computes its
// duration.
func (s *Service) StopEntry(ctx context.Context, owner string, entryID uuid.UUID) (*models.TimeEntryWithActivity, error) {
	entry, err := s.ownedEntry(ctx, owner, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.IsRunning {
		return nil, ErrEntryNotRunning
	}

	end := s.now()
	duration := timeutil.DurationMinutes(entry.StartDatetime, end)

	err = s.entries.Update(ctx, entryID, map[string]any{
		"end_datetime":     end,
		"duration_minutes": duration,
		"is_running":       false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stop time entry: %w", err)
	}

	entry.EndDatetime = &end
	entry.DurationMinutes = &duration
	entry.IsRunning = false

	observability.RecordEntryStopped()
	s.logger.Info("time_entry_stopped",
		zap.String("entry_id", entryID.String()),
		zap.Int("duration_minutes", duration))

	return withName(entry, s.activityName(ctx, entry.ActivityID)), nil
}

// UpdateEntry applies a partial update. Patching notes re-extracts
// hashtags and unions them with stored and supplied tags; patching tags
// without notes replaces the tag set wholesale; patching end recomputes
// the duration against the stored start and closes the entry. An empty
// patch writes nothing.
func (s *Service) UpdateEntry(ctx context.Context, owner string, entryID uuid.UUID, patch EntryPatch) (*models.TimeEntryWithActivity, error) {
	entry, err := s.ownedEntry(ctx, owner, entryID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if patch.Notes != nil {
		cleanNotes, extracted := notes.Extract(*patch.Notes)
		newNotes := optionalText(cleanNotes)

		var supplied []string
		if patch.Tags != nil {
			supplied = *patch.Tags
		}
		merged := mergeTags(entry.Tags, supplied, extracted)

		fields["notes"] = newNotes
		fields["tags"] = merged
		entry.Notes = newNotes
		entry.Tags = merged
	} else if patch.Tags != nil {
		replaced := mergeTags(*patch.Tags)
		fields["tags"] = replaced
		entry.Tags = replaced
	}

	if patch.End != nil {
		end := timeutil.ToUTC(*patch.End)
		duration := timeutil.DurationMinutes(entry.StartDatetime, end)

		fields["end_datetime"] = end
		fields["duration_minutes"] = duration
		fields["is_running"] = false
		entry.EndDatetime = &end
		entry.DurationMinutes = &duration
		entry.IsRunning = false
	}

	if len(fields) > 0 {
		if err := s.entries.Update(ctx, entryID, fields); err != nil {
			return nil, fmt.Errorf("failed to update time entry: %w", err)
		}
		s.logger.Info("time_entry_updated",
			zap.String("entry_id", entryID.String()))
	}

	return withName(entry, s.activityName(ctx, entry.ActivityID)), nil
}

// ownedActivity loads an activity and checks ownership. A missing or
// foreign activity is reported the same way.
func (s *Service) ownedActivity(ctx context.Context, owner string, activityID uuid.UUID) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	if activity.UserID != owner {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ownedEntry loads a time entry and checks ownership. Unlike activities,
// a foreign entry is distinguished from a missing one.
func (s *Service) ownedEntry(ctx context.Context, owner string, entryID uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to load time entry: %w", err)
	}
	if entry.UserID != owner {
		return nil, ErrNotOwner
	}
	return entry, nil
}

// activityName resolves an activity's name, falling back to "Unknown"
// when the activity is gone. Non-fatal: the name is cosmetic.
func (s *Service) activityName(ctx context.Context, activityID uuid.UUID) string {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return activityNameUnknown
	}
	return activity.Name
}

func withName(entry *models.TimeEntry, name string) *models.TimeEntryWithActivity {
	joined := entry.WithActivity(name)
	return &joined
}

// mergeTags unions tag sets, dedupes, and sorts for deterministic
// output.
func mergeTags(sets ...[]string) []string {
	seen := make(map[string]struct{})
	merged := []string{}
	for _, set := range sets {
		for _, tag := range set {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	sort.Strings(merged)
	return merged
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
