package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type testDoc struct {
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	Started time.Time  `json:"start_datetime"`
	Ended   *time.Time `json:"end_datetime"`
	Tags    []string   `json:"tags"`
	Running bool       `json:"is_running"`
}

func TestMemory_SetGet(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	doc := testDoc{
		ID:      "e1",
		UserID:  "u1",
		Started: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		Tags:    []string{"work"},
		Running: true,
	}
	if err := store.Set(ctx, "time_entries", "e1", doc); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := store.Get(ctx, "time_entries", "e1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var got testDoc
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to unmarshal document: %v", err)
	}
	if got.ID != "e1" || got.UserID != "u1" || !got.Running {
		t.Errorf("Document round trip mismatch: %+v", got)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	t.Parallel()

	store := NewMemory()

	_, err := store.Get(context.Background(), "time_entries", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemory_Update(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	doc := testDoc{
		ID:      "e1",
		UserID:  "u1",
		Started: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		Running: true,
		Tags:    []string{},
	}
	if err := store.Set(ctx, "time_entries", "e1", doc); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	end := time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC)
	err := store.Update(ctx, "time_entries", "e1", map[string]any{
		"end_datetime": end,
		"is_running":   false,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := store.Get(ctx, "time_entries", "e1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var got testDoc
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to unmarshal document: %v", err)
	}
	if got.Running {
		t.Error("Expected is_running to be false after update")
	}
	if got.Ended == nil || !got.Ended.Equal(end) {
		t.Errorf("Expected end_datetime %v, got %v", end, got.Ended)
	}
	if got.UserID != "u1" {
		t.Errorf("Expected untouched fields to survive the merge, got %+v", got)
	}
}

func TestMemory_UpdateMissing(t *testing.T) {
	t.Parallel()

	store := NewMemory()

	err := store.Update(context.Background(), "time_entries", "nope", map[string]any{"is_running": false})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemory_Query(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	day := func(d int, hour int) time.Time {
		return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
	}

	seed := func(t *testing.T) *Memory {
		t.Helper()
		store := NewMemory()
		docs := []testDoc{
			{ID: "e1", UserID: "u1", Started: day(10, 9), Tags: []string{"work"}, Running: false},
			{ID: "e2", UserID: "u1", Started: day(10, 14), Tags: []string{"work", "deep"}, Running: false},
			{ID: "e3", UserID: "u1", Started: day(11, 8), Tags: []string{}, Running: true},
			{ID: "e4", UserID: "u2", Started: day(10, 12), Tags: []string{"work"}, Running: false},
		}
		for _, d := range docs {
			if err := store.Set(ctx, "time_entries", d.ID, d); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		}
		return store
	}

	tests := []struct {
		name    string
		query   Query
		wantIDs []string
	}{
		{
			name: "equality on owner",
			query: Query{
				Filters: []Filter{{Field: "user_id", Op: OpEq, Value: "u2"}},
			},
			wantIDs: []string{"e4"},
		},
		{
			name: "time range with descending sort",
			query: Query{
				Filters: []Filter{
					{Field: "user_id", Op: OpEq, Value: "u1"},
					{Field: "start_datetime", Op: OpGte, Value: day(10, 0)},
					{Field: "start_datetime", Op: OpLte, Value: day(10, 23)},
				},
				OrderBy:    "start_datetime",
				Descending: true,
			},
			wantIDs: []string{"e2", "e1"},
		},
		{
			name: "range includes both bounds",
			query: Query{
				Filters: []Filter{
					{Field: "user_id", Op: OpEq, Value: "u1"},
					{Field: "start_datetime", Op: OpGte, Value: day(10, 9)},
					{Field: "start_datetime", Op: OpLte, Value: day(10, 14)},
				},
				OrderBy:    "start_datetime",
				Descending: true,
			},
			wantIDs: []string{"e2", "e1"},
		},
		{
			name: "array contains",
			query: Query{
				Filters: []Filter{
					{Field: "user_id", Op: OpEq, Value: "u1"},
					{Field: "tags", Op: OpContains, Value: "deep"},
				},
			},
			wantIDs: []string{"e2"},
		},
		{
			name: "boolean equality",
			query: Query{
				Filters: []Filter{
					{Field: "user_id", Op: OpEq, Value: "u1"},
					{Field: "is_running", Op: OpEq, Value: true},
				},
			},
			wantIDs: []string{"e3"},
		},
		{
			name: "no matches",
			query: Query{
				Filters: []Filter{{Field: "user_id", Op: OpEq, Value: "nobody"}},
			},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := seed(t)
			docs, err := store.Query(ctx, "time_entries", tt.query)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			gotIDs := make([]string, 0, len(docs))
			for _, data := range docs {
				var d testDoc
				if err := json.Unmarshal(data, &d); err != nil {
					t.Fatalf("Failed to unmarshal document: %v", err)
				}
				gotIDs = append(gotIDs, d.ID)
			}

			if tt.query.OrderBy == "" {
				// Unordered queries compare as sets.
				if len(gotIDs) != len(tt.wantIDs) {
					t.Fatalf("Expected %d documents, got %d (%v)", len(tt.wantIDs), len(gotIDs), gotIDs)
				}
				want := make(map[string]bool, len(tt.wantIDs))
				for _, id := range tt.wantIDs {
					want[id] = true
				}
				for _, id := range gotIDs {
					if !want[id] {
						t.Errorf("Unexpected document %s in results %v", id, gotIDs)
					}
				}
				return
			}

			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("Expected %v, got %v", tt.wantIDs, gotIDs)
			}
			for i := range tt.wantIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("Expected %v, got %v", tt.wantIDs, gotIDs)
					break
				}
			}
		})
	}
}
