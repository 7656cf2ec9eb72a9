package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/timevault/api/internal/models"
)

func createActivity(t *testing.T, f *apiFixture, userID, name string) uuid.UUID {
	t.Helper()
	w := f.do(t, userID, "POST", "/activities", map[string]any{"name": name})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to create activity: status %d (body %s)", w.Code, w.Body.String())
	}
	var activity models.Activity
	decodeBody(t, w, &activity)
	return activity.ID
}

func addEntry(t *testing.T, f *apiFixture, userID string, body map[string]any) models.TimeEntryWithActivity {
	t.Helper()
	w := f.do(t, userID, "POST", "/time_entries", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to add time entry: status %d (body %s)", w.Code, w.Body.String())
	}
	var entry models.TimeEntryWithActivity
	decodeBody(t, w, &entry)
	return entry
}

func TestCreateTimeEntry(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	entry := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T10:30:00Z",
		"notes":          "Pairing session with #client #urgent",
		"tags":           []string{"billable"},
	})

	if entry.ActivityID != activityID {
		t.Errorf("ActivityID = %s, want %s", entry.ActivityID, activityID)
	}
	if entry.ActivityName != "Coding" {
		t.Errorf("ActivityName = %q, want Coding", entry.ActivityName)
	}
	if entry.DurationMinutes == nil || *entry.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", entry.DurationMinutes)
	}
	if entry.IsRunning {
		t.Error("Expected a closed entry")
	}
	if entry.Notes == nil || *entry.Notes != "Pairing session with" {
		t.Errorf("Notes = %v, want hashtags stripped", entry.Notes)
	}
	want := []string{"billable", "client", "urgent"}
	if !reflect.DeepEqual(entry.Tags, want) {
		t.Errorf("Tags = %v, want %v", entry.Tags, want)
	}
	if !entry.StartDatetime.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDatetime = %s", entry.StartDatetime)
	}
}

func TestCreateTimeEntry_NaiveTimestampIsUTC(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	w := f.do(t, "user-1", "POST", "/time_entries", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"start_datetime":"2024-03-10T09:00:00Z"`) {
		t.Errorf("Expected naive timestamp echoed as UTC, body %s", w.Body.String())
	}
}

func TestCreateTimeEntry_WithoutEnd(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	w := f.do(t, "user-1", "POST", "/time_entries", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	body := w.Body.String()

	var entry models.TimeEntryWithActivity
	decodeBody(t, w, &entry)
	if !entry.IsRunning {
		t.Error("Expected a running entry")
	}
	if entry.EndDatetime != nil || entry.DurationMinutes != nil {
		t.Errorf("Expected open end, got end=%v duration=%v", entry.EndDatetime, entry.DurationMinutes)
	}
	if entry.Tags == nil || len(entry.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", entry.Tags)
	}

	for _, fragment := range []string{`"end_datetime":null`, `"duration_minutes":null`, `"notes":null`, `"tags":[]`} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Expected body to contain %s, body %s", fragment, body)
		}
	}
}

func TestCreateTimeEntry_ActivityNotFound(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	foreign := createActivity(t, f, "user-2", "Running")

	for name, activityID := range map[string]uuid.UUID{
		"missing activity": uuid.New(),
		"foreign activity": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(t, "user-1", "POST", "/time_entries", map[string]any{
				"activity_id":    activityID,
				"start_datetime": "2024-03-10T09:00:00Z",
			})
			wantDetail(t, w, http.StatusNotFound, "Activity not found")
		})
	}
}

func TestCreateTimeEntry_BadRequests(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	tests := []struct {
		name   string
		body   any
		detail string
	}{
		{
			"missing start",
			map[string]any{"activity_id": activityID},
			"start_datetime is required",
		},
		{
			"garbage timestamp",
			map[string]any{"activity_id": activityID, "start_datetime": "bananas"},
			"Invalid request body",
		},
		{
			"not an object",
			"nope",
			"Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "user-1", "POST", "/time_entries", tt.body)
			wantDetail(t, w, http.StatusBadRequest, tt.detail)
		})
	}

	t.Run("missing activity_id", func(t *testing.T) {
		w := f.do(t, "user-1", "POST", "/time_entries", map[string]any{
			"start_datetime": "2024-03-10T09:00:00Z",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d (body %s)", w.Code, w.Body.String())
		}
	})
}

func TestStartAndStopEntry(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	w := f.do(t, "user-1", "POST", "/time_entries/start/"+activityID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var started models.TimeEntryWithActivity
	decodeBody(t, w, &started)
	if !started.IsRunning {
		t.Error("Expected a running entry")
	}
	if started.ActivityName != "Coding" {
		t.Errorf("ActivityName = %q, want Coding", started.ActivityName)
	}
	if !started.StartDatetime.Equal(started.CreatedAt) {
		t.Errorf("StartDatetime %s != CreatedAt %s", started.StartDatetime, started.CreatedAt)
	}
	if started.EndDatetime != nil || started.DurationMinutes != nil || started.Notes != nil {
		t.Error("Expected empty end, duration, and notes on start")
	}

	w = f.do(t, "user-1", "POST", "/time_entries/start/"+activityID.String(), nil)
	wantDetail(t, w, http.StatusBadRequest, "Another time entry is already running. Please stop it first.")

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+started.ID.String()+"/stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var stopped models.TimeEntryWithActivity
	decodeBody(t, w, &stopped)
	if stopped.IsRunning {
		t.Error("Expected a closed entry")
	}
	if stopped.EndDatetime == nil || stopped.DurationMinutes == nil {
		t.Fatal("Expected end datetime and duration after stop")
	}
	if *stopped.DurationMinutes < 0 {
		t.Errorf("DurationMinutes = %d, want >= 0", *stopped.DurationMinutes)
	}

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+started.ID.String()+"/stop", nil)
	wantDetail(t, w, http.StatusBadRequest, "Time entry is not running")
}

func TestStartEntry_Failures(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	foreign := createActivity(t, f, "user-2", "Running")

	w := f.do(t, "user-1", "POST", "/time_entries/start/not-a-uuid", nil)
	wantDetail(t, w, http.StatusBadRequest, "Invalid activity ID")

	w = f.do(t, "user-1", "POST", "/time_entries/start/"+uuid.NewString(), nil)
	wantDetail(t, w, http.StatusNotFound, "Activity not found")

	w = f.do(t, "user-1", "POST", "/time_entries/start/"+foreign.String(), nil)
	wantDetail(t, w, http.StatusNotFound, "Activity not found")
}

func TestStopEntry_Failures(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-2", "Running")

	w := f.do(t, "user-2", "POST", "/time_entries/start/"+activityID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to start entry: status %d (body %s)", w.Code, w.Body.String())
	}
	var running models.TimeEntryWithActivity
	decodeBody(t, w, &running)

	w = f.do(t, "user-1", "PATCH", "/time_entries/not-a-uuid/stop", nil)
	wantDetail(t, w, http.StatusBadRequest, "Invalid time entry ID")

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+uuid.NewString()+"/stop", nil)
	wantDetail(t, w, http.StatusNotFound, "Time entry not found")

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+running.ID.String()+"/stop", nil)
	wantDetail(t, w, http.StatusForbidden, "Access denied")
}

func TestUpdateEntry_NotesUnionTags(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")
	entry := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T10:00:00Z",
		"tags":           []string{"alpha"},
	})

	w := f.do(t, "user-1", "PATCH", "/time_entries/"+entry.ID.String(), map[string]any{
		"notes": "wrap up #review",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var updated models.TimeEntryWithActivity
	decodeBody(t, w, &updated)
	if updated.Notes == nil || *updated.Notes != "wrap up" {
		t.Errorf("Notes = %v, want wrap up", updated.Notes)
	}
	want := []string{"alpha", "review"}
	if !reflect.DeepEqual(updated.Tags, want) {
		t.Errorf("Tags = %v, want %v", updated.Tags, want)
	}
}

func TestUpdateEntry_TagsAloneReplace(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")
	entry := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T10:00:00Z",
		"tags":           []string{"alpha", "beta"},
	})

	w := f.do(t, "user-1", "PATCH", "/time_entries/"+entry.ID.String(), map[string]any{
		"tags": []string{"gamma"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var updated models.TimeEntryWithActivity
	decodeBody(t, w, &updated)
	if !reflect.DeepEqual(updated.Tags, []string{"gamma"}) {
		t.Errorf("Tags = %v, want [gamma]", updated.Tags)
	}
}

func TestUpdateEntry_EndClosesEntry(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")
	entry := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
	})

	w := f.do(t, "user-1", "PATCH", "/time_entries/"+entry.ID.String(), map[string]any{
		"end_datetime": "2024-03-10T09:45:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var updated models.TimeEntryWithActivity
	decodeBody(t, w, &updated)
	if updated.IsRunning {
		t.Error("Expected a closed entry")
	}
	if updated.DurationMinutes == nil || *updated.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %v, want 45", updated.DurationMinutes)
	}
}

func TestUpdateEntry_Failures(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-2", "Running")
	entry := addEntry(t, f, "user-2", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
	})

	w := f.do(t, "user-1", "PATCH", "/time_entries/not-a-uuid", map[string]any{"notes": "x"})
	wantDetail(t, w, http.StatusBadRequest, "Invalid time entry ID")

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+uuid.NewString(), map[string]any{"notes": "x"})
	wantDetail(t, w, http.StatusNotFound, "Time entry not found")

	w = f.do(t, "user-1", "PATCH", "/time_entries/"+entry.ID.String(), map[string]any{"notes": "x"})
	wantDetail(t, w, http.StatusForbidden, "Access denied")
}

func TestListEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	first := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T09:30:00Z",
	})
	second := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T11:00:00Z",
		"end_datetime":   "2024-03-10T11:45:00Z",
	})
	running := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T13:00:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if list.TotalMinutes != 75 {
		t.Errorf("TotalMinutes = %d, want 75", list.TotalMinutes)
	}
	if list.TotalHours != 1.25 {
		t.Errorf("TotalHours = %v, want 1.25", list.TotalHours)
	}

	wantOrder := []uuid.UUID{running.ID, second.ID, first.ID}
	if len(list.Entries) != len(wantOrder) {
		t.Fatalf("Expected %d entries, got %d", len(wantOrder), len(list.Entries))
	}
	for i, id := range wantOrder {
		if list.Entries[i].ID != id {
			t.Errorf("Entries[%d].ID = %s, want %s", i, list.Entries[i].ID, id)
		}
		if list.Entries[i].ActivityName != "Coding" {
			t.Errorf("Entries[%d].ActivityName = %q, want Coding", i, list.Entries[i].ActivityName)
		}
	}
}

func TestListEntries_ActivityFilter(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	coding := createActivity(t, f, "user-1", "Coding")
	reading := createActivity(t, f, "user-1", "Reading")

	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    coding,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T09:30:00Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    reading,
		"start_datetime": "2024-03-10T11:00:00Z",
		"end_datetime":   "2024-03-10T11:20:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries?activity_id="+reading.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if len(list.Entries) != 1 || list.Entries[0].ActivityID != reading {
		t.Fatalf("Expected only the reading entry, got %+v", list.Entries)
	}
	if list.TotalMinutes != 20 {
		t.Errorf("TotalMinutes = %d, want 20", list.TotalMinutes)
	}

	w = f.do(t, "user-1", "GET", "/time_entries?activity_id=not-a-uuid", nil)
	wantDetail(t, w, http.StatusBadRequest, "Invalid activity ID")
}

func TestDateEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	onLowerBound := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T00:00:00Z",
		"end_datetime":   "2024-03-10T00:30:00Z",
	})
	lateInDay := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T23:59:59Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-11T00:00:00Z",
		"end_datetime":   "2024-03-11T01:00:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries/date/2024-03-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if len(list.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(list.Entries))
	}
	if list.Entries[0].ID != lateInDay.ID || list.Entries[1].ID != onLowerBound.ID {
		t.Errorf("Unexpected order: %s then %s", list.Entries[0].ID, list.Entries[1].ID)
	}

	w = f.do(t, "user-1", "GET", "/time_entries/date/garbage", nil)
	wantDetail(t, w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
}

func TestTodayEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	f.entries.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	today := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-08T09:00:00Z",
		"end_datetime":   "2024-03-08T10:00:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries/today", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if len(list.Entries) != 1 || list.Entries[0].ID != today.ID {
		t.Fatalf("Expected only today's entry, got %+v", list.Entries)
	}
}

// The current-day window follows the server's calendar date, not the UTC
// date. At 00:30 March 10 in UTC+13 the UTC clock still reads March 9; an
// entry logged during March 10's UTC day must be served and March 9's not.
func TestTodayEntries_LocalDateAnchor(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	zone := time.FixedZone("UTC+13", 13*60*60)
	f.entries.now = func() time.Time { return time.Date(2024, 3, 10, 0, 30, 0, 0, zone) }

	localDay := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-09T11:00:00Z",
		"end_datetime":   "2024-03-09T11:30:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries/today", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if len(list.Entries) != 1 || list.Entries[0].ID != localDay.ID {
		t.Fatalf("Expected only the local-date entry, got %+v", list.Entries)
	}
}

func TestMonthAndYearEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	f.entries.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	current := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-05T09:00:00Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2023-03-05T09:00:00Z",
		"end_datetime":   "2023-03-05T10:00:00Z",
	})

	for _, path := range []string{"/time_entries/month", "/time_entries/year"} {
		w := f.do(t, "user-1", "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d (body %s)", path, w.Code, w.Body.String())
		}
		var list models.TimeEntryList
		decodeBody(t, w, &list)
		if len(list.Entries) != 1 || list.Entries[0].ID != current.ID {
			t.Fatalf("GET %s: expected only the current entry, got %+v", path, list.Entries)
		}
	}
}

// Just after local midnight on New Year's Day the month and year windows
// follow the local date into January even though UTC is still in December.
func TestMonthAndYearEntries_LocalDateAnchor(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	zone := time.FixedZone("UTC+13", 13*60*60)
	f.entries.now = func() time.Time { return time.Date(2025, 1, 1, 0, 30, 0, 0, zone) }

	january := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2025-01-05T10:00:00Z",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-12-31T11:00:00Z",
		"end_datetime":   "2024-12-31T11:30:00Z",
	})

	for _, path := range []string{"/time_entries/month", "/time_entries/year"} {
		w := f.do(t, "user-1", "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d (body %s)", path, w.Code, w.Body.String())
		}
		var list models.TimeEntryList
		decodeBody(t, w, &list)
		if len(list.Entries) != 1 || list.Entries[0].ID != january.ID {
			t.Fatalf("GET %s: expected only the local-January entry, got %+v", path, list.Entries)
		}
	}
}

func TestTagEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	tagged := addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T09:30:00Z",
		"notes":          "sync with #client",
	})
	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T11:00:00Z",
		"end_datetime":   "2024-03-10T11:30:00Z",
	})

	w := f.do(t, "user-1", "GET", "/time_entries/tags/client", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}

	var list models.TimeEntryList
	decodeBody(t, w, &list)
	if len(list.Entries) != 1 || list.Entries[0].ID != tagged.ID {
		t.Fatalf("Expected only the tagged entry, got %+v", list.Entries)
	}

	// Tag matching is case-sensitive.
	w = f.do(t, "user-1", "GET", "/time_entries/tags/Client", nil)
	var empty models.TimeEntryList
	decodeBody(t, w, &empty)
	if len(empty.Entries) != 0 {
		t.Errorf("Expected no entries for mismatched case, got %d", len(empty.Entries))
	}
}

func TestRunningEntries(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	activityID := createActivity(t, f, "user-1", "Coding")

	addEntry(t, f, "user-1", map[string]any{
		"activity_id":    activityID,
		"start_datetime": "2024-03-10T09:00:00Z",
		"end_datetime":   "2024-03-10T09:30:00Z",
	})
	f.do(t, "user-1", "POST", "/time_entries/start/"+activityID.String(), nil)

	w := f.do(t, "user-1", "GET", "/time_entries/running", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (body %s)", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(w.Body.String()), "[") {
		t.Fatalf("Expected a bare list body, got %s", w.Body.String())
	}

	var entries []models.TimeEntryWithActivity
	decodeBody(t, w, &entries)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 running entry, got %d", len(entries))
	}
	if !entries[0].IsRunning || entries[0].ActivityName != "Coding" {
		t.Errorf("Unexpected running entry: %+v", entries[0])
	}
}

func TestTimeEntries_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/time_entries"},
		{"GET", "/time_entries"},
		{"POST", "/time_entries/start/" + id},
		{"PATCH", "/time_entries/" + id + "/stop"},
		{"PATCH", "/time_entries/" + id},
		{"GET", "/time_entries/today"},
		{"GET", "/time_entries/running"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := f.do(t, "", tt.method, tt.path, nil)
			wantDetail(t, w, http.StatusUnauthorized, "Not authenticated")
		})
	}
}
