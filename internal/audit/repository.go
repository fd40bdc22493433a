// Package audit provides access to the dispatch_history table for
// recording and querying executed voice commands.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dispatch statuses stored in the history table.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry represents a single dispatch history record.
type Entry struct {
	ID           string    `json:"id"`
	DispatchedAt time.Time `json:"dispatched_at"`
	Target       string    `json:"target"`
	Action       string    `json:"action"`
	DeviceID     string    `json:"device_id,omitempty"`
	DeviceName   string    `json:"device_name,omitempty"`
	Domain       string    `json:"domain,omitempty"`
	Primitive    string    `json:"primitive,omitempty"`
	Score        float64   `json:"score,omitempty"`
	Attempts     int       `json:"attempts"`
	Healed       bool      `json:"healed"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Advisory     string    `json:"advisory,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
}

// Filter controls which history entries to return.
type Filter struct {
	DeviceID string // optional: filter by resolved device ID
	Action   string // optional: filter by spoken action
	Status   string // optional: completed or failed
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult contains the paginated dispatch history results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for dispatch history operations.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores dispatch history in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new dispatch history repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a history entry. The ID and DispatchedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "dsp-" + uuid.NewString()[:8]
	}
	if entry.DispatchedAt.IsZero() {
		entry.DispatchedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dispatch_history
		 (id, dispatched_at, target, action, device_id, device_name, domain,
		  primitive, score, attempts, healed, status, error_kind, advisory, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.DispatchedAt.Format(time.RFC3339), entry.Target, entry.Action,
		nullableString(entry.DeviceID), nullableString(entry.DeviceName),
		nullableString(entry.Domain), nullableString(entry.Primitive),
		entry.Score, entry.Attempts, entry.Healed, entry.Status,
		nullableString(entry.ErrorKind), nullableString(entry.Advisory),
		entry.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch history: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns history entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dispatch_history"+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting dispatch history: %w", err)
	}

	query := `SELECT id, dispatched_at, target, action, device_id, device_name,
	          domain, primitive, score, attempts, healed, status, error_kind,
	          advisory, duration_ms
	          FROM dispatch_history` + where +
		" ORDER BY dispatched_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dispatch history: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var dispatchedAt string
	var deviceID, deviceName, domain, primitive, errorKind, advisory sql.NullString
	var score sql.NullFloat64
	var durationMS sql.NullInt64

	err := rows.Scan(
		&entry.ID, &dispatchedAt, &entry.Target, &entry.Action,
		&deviceID, &deviceName, &domain, &primitive,
		&score, &entry.Attempts, &entry.Healed, &entry.Status,
		&errorKind, &advisory, &durationMS,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("scanning dispatch history row: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, dispatchedAt); err == nil {
		entry.DispatchedAt = t
	}
	entry.DeviceID = deviceID.String
	entry.DeviceName = deviceName.String
	entry.Domain = domain.String
	entry.Primitive = primitive.String
	entry.Score = score.Float64
	entry.ErrorKind = errorKind.String
	entry.Advisory = advisory.String
	entry.DurationMS = durationMS.Int64

	return entry, nil
}
