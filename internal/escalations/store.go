// Package escalations persists chat turns that were flagged for human
// follow-up, so support staff can work through them later.
package escalations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/support-bot/internal/db"
)

// Record is one escalated chat turn.
type Record struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Reason      string    `json:"reason"`
	Confidence  float64   `json:"confidence"`
	Provider    string    `json:"provider"`
	Resolved    bool      `json:"resolved"`
}

// ListFilter controls which records List returns.
type ListFilter struct {
	SessionID      string
	UnresolvedOnly bool
	Limit          int
	Offset         int
}

// Store provides access to escalation records.
type Store struct {
	db *db.DB
}

// NewStore creates a store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Add persists a new escalation record and returns it with ID and timestamp set.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escalations (id, created_at, session_id, user_message, bot_response, reason, confidence, provider, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.SessionID, rec.UserMessage,
		rec.BotResponse, rec.Reason, rec.Confidence, rec.Provider, boolToInt(rec.Resolved),
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting escalation: %w", err)
	}
	return rec, nil
}

// List returns escalation records, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT id, created_at, session_id, user_message, bot_response, reason, confidence, provider, resolved
		FROM escalations WHERE 1=1`
	var args []any

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.UnresolvedOnly {
		query += " AND resolved = 0"
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing escalations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		var resolved int
		if err := rows.Scan(&rec.ID, &createdAt, &rec.SessionID, &rec.UserMessage,
			&rec.BotResponse, &rec.Reason, &rec.Confidence, &rec.Provider, &resolved); err != nil {
			return nil, fmt.Errorf("scanning escalation: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.Resolved = resolved != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Resolve marks a record as handled.
func (s *Store) Resolve(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE escalations SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolving escalation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("escalation %s not found", id)
	}
	return nil
}

// Count returns the number of unresolved escalations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM escalations WHERE resolved = 0`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
