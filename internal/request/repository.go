package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for request queue persistence.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	ListByUser(ctx context.Context, username string) ([]Request, error)
	ListPending(ctx context.Context) ([]Request, error)
	CountPending(ctx context.Context, category string) (int, error)
	Process(ctx context.Context, id string, status Status) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed request repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const requestColumns = "id, username, category, details, status, created_at, estimated_completion, processed_at"

// Create inserts a new request. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, req *Request) error {
	if req.ID == "" {
		req.ID = "req-" + uuid.NewString()[:8]
	}
	if req.Status == "" {
		req.Status = StatusPending
	}

	now := time.Now().UTC().Format(time.RFC3339)
	req.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO requests (id, username, category, details, status, created_at, estimated_completion)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Username, req.Category, req.Details, string(req.Status),
		now, req.EstimatedCompletion.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by its ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = ?", id)

	req, err := scanRequest(row)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListByUser returns a user's requests, newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, username string) ([]Request, error) {
	return r.list(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE username = ? ORDER BY created_at DESC, id DESC",
		username)
}

// ListPending returns all pending requests, oldest first (queue order).
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]Request, error) {
	return r.list(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE status = ? ORDER BY created_at ASC, id ASC",
		string(StatusPending))
}

// CountPending returns the number of pending requests in a category.
func (r *SQLiteRepository) CountPending(ctx context.Context, category string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE category = ? AND status = ?",
		category, string(StatusPending)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending requests: %w", err)
	}
	return count, nil
}

// Process moves a pending request to a terminal status and stamps
// processed_at. The status guard in the WHERE clause makes concurrent
// processing of the same request first-writer-wins.
func (r *SQLiteRepository) Process(ctx context.Context, id string, status Status) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"UPDATE requests SET status = ?, processed_at = ? WHERE id = ? AND status = ?",
		string(status), now, id, string(StatusPending))
	if err != nil {
		return fmt.Errorf("processing request: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		// distinguish missing from already-processed
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyProcessed
	}
	return nil
}

// list executes a query and scans all request results.
func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}

	if requests == nil {
		requests = []Request{}
	}
	return requests, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanRequest scans a request from any scanner (Row or Rows).
func scanRequest(s scanner) (*Request, error) {
	var req Request
	var status string
	var createdAt, estimated string
	var processedAt sql.NullString

	err := s.Scan(&req.ID, &req.Username, &req.Category, &req.Details,
		&status, &createdAt, &estimated, &processedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning request: %w", err)
	}

	req.Status = Status(status)
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)           //nolint:errcheck // format is controlled
	req.EstimatedCompletion, _ = time.Parse(time.RFC3339, estimated) //nolint:errcheck // format is controlled
	if processedAt.Valid {
		t, _ := time.Parse(time.RFC3339, processedAt.String) //nolint:errcheck // format is controlled
		req.ProcessedAt = &t
	}

	return &req, nil
}
