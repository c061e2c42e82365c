// Package activity keeps a local audit trail of user actions in a
// SQLite database: transaction changes, logins, exports. The trail is
// informational, failures here never block the action being logged.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Activity types recorded in the trail.
const (
	TypeTransactionCreated = "TRANSACTION_CREATED"
	TypeTransactionDeleted = "TRANSACTION_DELETED"
	TypeTransactionUpdated = "TRANSACTION_UPDATED"
	TypeReportExported     = "REPORT_EXPORTED"
	TypeLogin              = "LOGIN"
	TypeLogout             = "LOGOUT"
	TypeRegister           = "REGISTER"
)

// Entry is one line of the activity trail.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"activityType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists activity entries in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the activity database at dbPath
// and applies pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert writes one entry. A missing ID or timestamp is filled in.
func (s *Store) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, user_id, activity_type, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Type, e.Description, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert activity: %w", err)
	}
	return e, nil
}

// ListRecent returns the newest entries for a user, most recent first.
func (s *Store) ListRecent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, activity_type, description, created_at
		 FROM activity_log
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Description, &created); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}
	return entries, nil
}

// Count returns the total number of entries for a user.
func (s *Store) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE user_id = ?`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}
