// Package moderation persists the append-only log of flagged pastoral
// guidance exchanges.
package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxQuestionLen  = 500
	maxUserAgentLen = 256
)

// Entry is one immutable moderation log record. Entries are insert-only; this
// subsystem never updates or deletes them.
type Entry struct {
	ID           string    `json:"id"`
	Type         string    `json:"moderation_type"`
	Question     string    `json:"user_question"`
	ClientIP     string    `json:"user_ip"`
	UserAgent    string    `json:"user_agent"`
	ResponseSent string    `json:"response_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store appends moderation log entries.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
}

// PostgresStore writes entries to the moderation_events table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert appends one entry. Oversized question and user-agent values are
// truncated rather than rejected so a hostile payload cannot block logging.
func (s *PostgresStore) Insert(ctx context.Context, entry Entry) error {
	entry = normalize(entry)

	query := `
		INSERT INTO moderation_events (
			id, moderation_type, user_question, user_ip, user_agent,
			response_sent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Type,
		entry.Question,
		nullString(entry.ClientIP),
		nullString(entry.UserAgent),
		nullString(entry.ResponseSent),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("moderation: failed to insert entry: %w", err)
	}

	return nil
}

// MemoryStore keeps entries in memory. Used in dev mode and tests where no
// database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, normalize(entry))
	return nil
}

// Entries returns a copy of everything inserted so far.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*MemoryStore)(nil)

func normalize(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Question = truncate(entry.Question, maxQuestionLen)
	entry.UserAgent = truncate(entry.UserAgent, maxUserAgentLen)
	return entry
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
