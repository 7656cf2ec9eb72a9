package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Postgres is a Store backed by a single JSONB documents table. A partial
// unique index guards the one-running-entry-per-user invariant: the losing
// insert of a race surfaces as ErrConflict.
type Postgres struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// DB exposes the underlying connection for migrations.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping checks database reachability.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Get returns the document data or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return data, nil
}

// Set creates or replaces a document.
func (p *Postgres) Set(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, collection, id, data)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("set %s/%s: %w", collection, id, ErrConflict)
		}
		return fmt.Errorf("failed to set document: %w", err)
	}
	return nil
}

// Update merges fields into an existing document.
func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	result, err := p.db.ExecContext(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, patch)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("update %s/%s: %w", collection, id, ErrConflict)
		}
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// Query returns the documents matching q.
func (p *Postgres) Query(ctx context.Context, collection string, q Query) ([]json.RawMessage, error) {
	query, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// buildQuery assembles the SQL for a Query. Field names are repository
// constants, so they are interpolated; values always bind as parameters.
func buildQuery(collection string, q Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT data FROM documents WHERE collection = $1`)
	args := []any{collection}

	for _, f := range q.Filters {
		n := len(args) + 1
		switch f.Op {
		case OpEq:
			if b, ok := f.Value.(bool); ok {
				fmt.Fprintf(&sb, " AND (data->>'%s')::boolean = $%d", f.Field, n)
				args = append(args, b)
			} else {
				fmt.Fprintf(&sb, " AND data->>'%s' = $%d", f.Field, n)
				args = append(args, fmt.Sprintf("%v", f.Value))
			}
		case OpGte, OpLte:
			op := ">="
			if f.Op == OpLte {
				op = "<="
			}
			if t, ok := f.Value.(time.Time); ok {
				fmt.Fprintf(&sb, " AND (data->>'%s')::timestamptz %s $%d", f.Field, op, n)
				args = append(args, t.UTC().Format(time.RFC3339Nano))
			} else {
				fmt.Fprintf(&sb, " AND data->>'%s' %s $%d", f.Field, op, n)
				args = append(args, fmt.Sprintf("%v", f.Value))
			}
		case OpContains:
			fmt.Fprintf(&sb, " AND data->'%s' ? $%d", f.Field, n)
			args = append(args, fmt.Sprintf("%v", f.Value))
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY (data->>'%s')::timestamptz %s", q.OrderBy, dir)
	}

	return sb.String(), args, nil
}

var _ Store = (*Postgres)(nil)
