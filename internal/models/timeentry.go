package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a span of time logged against an activity. An entry with no
// end datetime is running: EndDatetime and DurationMinutes are nil and
// IsRunning is true, and the three always change together. A user has at
// most one running entry.
type TimeEntry struct {
	ID              uuid.UUID  `json:"id"`
	ActivityID      uuid.UUID  `json:"activity_id"`
	StartDatetime   time.Time  `json:"start_datetime"`
	EndDatetime     *time.Time `json:"end_datetime"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           *string    `json:"notes"`
	Tags            []string   `json:"tags"`
	IsRunning       bool       `json:"is_running"`
	CreatedAt       time.Time  `json:"created_at"`
	UserID          string     `json:"user_id"`
}

// TimeEntryWithActivity is the wire form of a time entry: the entry joined
// with its activity's name ("Unknown" when the activity no longer exists).
// The owner id stays internal.
type TimeEntryWithActivity struct {
	ID              uuid.UUID  `json:"id"`
	ActivityID      uuid.UUID  `json:"activity_id"`
	ActivityName    string     `json:"activity_name"`
	StartDatetime   time.Time  `json:"start_datetime"`
	EndDatetime     *time.Time `json:"end_datetime"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           *string    `json:"notes"`
	Tags            []string   `json:"tags"`
	IsRunning       bool       `json:"is_running"`
	CreatedAt       time.Time  `json:"created_at"`
}

// WithActivity joins an entry with a resolved activity name.
func (e *TimeEntry) WithActivity(name string) TimeEntryWithActivity {
	return TimeEntryWithActivity{
		ID:              e.ID,
		ActivityID:      e.ActivityID,
		ActivityName:    name,
		StartDatetime:   e.StartDatetime,
		EndDatetime:     e.EndDatetime,
		DurationMinutes: e.DurationMinutes,
		Notes:           e.Notes,
		Tags:            e.Tags,
		IsRunning:       e.IsRunning,
		CreatedAt:       e.CreatedAt,
	}
}

// TimeEntryList is a queried set of entries with aggregate totals.
// TotalMinutes sums the durations of closed entries; TotalHours is the same
// span in hours rounded to two decimals.
type TimeEntryList struct {
	Entries      []TimeEntryWithActivity `json:"entries"`
	TotalMinutes int                     `json:"total_minutes"`
	TotalHours   float64                 `json:"total_hours"`
}
