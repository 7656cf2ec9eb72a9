package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store keeping documents in a map. It applies the
// same query semantics as the postgres implementation but enforces no
// constraints beyond document identity.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]json.RawMessage)}
}

// Ping always succeeds; the store lives in process.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Get returns the document data or ErrNotFound.
func (m *Memory) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

// Set creates or replaces a document.
func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]json.RawMessage)
	}
	m.collections[collection][id] = data
	return nil
}

// Update merges fields into an existing document.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	// Round-trip the fields through JSON so merged values carry the same
	// encoding Set would give them.
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}
	var patchMap map[string]any
	if err := json.Unmarshal(patch, &patchMap); err != nil {
		return fmt.Errorf("failed to unmarshal fields: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}

	var docMap map[string]any
	if err := json.Unmarshal(doc, &docMap); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for k, v := range patchMap {
		docMap[k] = v
	}

	merged, err := json.Marshal(docMap)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	m.collections[collection][id] = merged
	return nil
}

// Query returns the documents matching q.
func (m *Memory) Query(ctx context.Context, collection string, q Query) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		data json.RawMessage
		doc  map[string]any
	}
	var matches []scored

	for _, data := range m.collections[collection] {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}

		ok, err := matchesFilters(doc, q.Filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		out := make(json.RawMessage, len(data))
		copy(out, data)
		matches = append(matches, scored{data: out, doc: doc})
	}

	if q.OrderBy != "" {
		field := q.OrderBy
		sort.SliceStable(matches, func(i, j int) bool {
			less := lessByField(matches[i].doc, matches[j].doc, field)
			if q.Descending {
				return !less && !equalByField(matches[i].doc, matches[j].doc, field)
			}
			return less
		})
	}

	results := make([]json.RawMessage, 0, len(matches))
	for _, sc := range matches {
		results = append(results, sc.data)
	}
	return results, nil
}

func matchesFilters(doc map[string]any, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matchFilter(doc, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchFilter(doc map[string]any, f Filter) (bool, error) {
	val, present := doc[f.Field]

	switch f.Op {
	case OpEq:
		if !present {
			return false, nil
		}
		switch want := f.Value.(type) {
		case bool:
			got, ok := val.(bool)
			return ok && got == want, nil
		case string:
			got, ok := val.(string)
			return ok && got == want, nil
		default:
			return fmt.Sprintf("%v", val) == fmt.Sprintf("%v", f.Value), nil
		}

	case OpGte, OpLte:
		if !present || val == nil {
			return false, nil
		}
		cmp, err := compareValues(val, f.Value)
		if err != nil {
			return false, err
		}
		if f.Op == OpGte {
			return cmp >= 0, nil
		}
		return cmp <= 0, nil

	case OpContains:
		arr, ok := val.([]any)
		if !ok {
			return false, nil
		}
		want := fmt.Sprintf("%v", f.Value)
		for _, item := range arr {
			if s, ok := item.(string); ok && s == want {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("unsupported filter op %q", f.Op)
	}
}

// compareValues compares a decoded document value against a filter value,
// returning -1, 0, or 1. Timestamp filters compare as instants; the stored
// side is an RFC 3339 string.
func compareValues(docVal, filterVal any) (int, error) {
	switch want := filterVal.(type) {
	case time.Time:
		s, ok := docVal.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T against time", docVal)
		}
		got, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
		}
		if got.Before(want) {
			return -1, nil
		}
		if got.After(want) {
			return 1, nil
		}
		return 0, nil
	case float64:
		got, ok := docVal.(float64)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T against number", docVal)
		}
		switch {
		case got < want:
			return -1, nil
		case got > want:
			return 1, nil
		}
		return 0, nil
	case string:
		got, ok := docVal.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T against string", docVal)
		}
		switch {
		case got < want:
			return -1, nil
		case got > want:
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported filter value type %T", filterVal)
	}
}

func lessByField(a, b map[string]any, field string) bool {
	av, _ := a[field].(string)
	bv, _ := b[field].(string)
	at, aerr := time.Parse(time.RFC3339Nano, av)
	bt, berr := time.Parse(time.RFC3339Nano, bv)
	if aerr == nil && berr == nil {
		return at.Before(bt)
	}
	return av < bv
}

func equalByField(a, b map[string]any, field string) bool {
	av, _ := a[field].(string)
	bv, _ := b[field].(string)
	at, aerr := time.Parse(time.RFC3339Nano, av)
	bt, berr := time.Parse(time.RFC3339Nano, bv)
	if aerr == nil && berr == nil {
		return at.Equal(bt)
	}
	return av == bv
}

var _ Store = (*Memory)(nil)
