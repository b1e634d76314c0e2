package moderation

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO moderation_events").
		WithArgs(
			sqlmock.AnyArg(),
			"abusive",
			"why is this religion so stupid",
			"203.0.113.7",
			"Mozilla/5.0",
			"canned reply",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	err = store.Insert(context.Background(), Entry{
		Type:         "abusive",
		Question:     "why is this religion so stupid",
		ClientIP:     "203.0.113.7",
		UserAgent:    "Mozilla/5.0",
		ResponseSent: "canned reply",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO moderation_events").
		WillReturnError(assert.AnError)

	store := NewPostgresStore(db)
	err = store.Insert(context.Background(), Entry{Type: "spam", Question: "buy now"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderation")
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	store := NewMemoryStore()

	err := store.Insert(context.Background(), Entry{Type: "off-topic", Question: "fix my car"})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "off-topic", entries[0].Type)
	assert.NotEmpty(t, entries[0].ID)
	assert.WithinDuration(t, time.Now().UTC(), entries[0].CreatedAt, 5*time.Second)
}

func TestInsertTruncatesOversizedFields(t *testing.T) {
	store := NewMemoryStore()

	err := store.Insert(context.Background(), Entry{
		Type:      "spam",
		Question:  strings.Repeat("q", 2000),
		UserAgent: strings.Repeat("u", 1000),
	})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Question, maxQuestionLen)
	assert.Len(t, entries[0].UserAgent, maxUserAgentLen)
}

func TestTruncatePreservesRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"ascii exact", "abcdef", 4, "abcd"},
		{"ascii short enough", "abc", 4, "abc"},
		{"cut lands mid rune", "aé", 2, "a"},
		{"cut lands on rune start", "éé", 2, "é"},
		{"three byte runes", strings.Repeat("…", 4), 8, "……"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestInsertNeverSplitsMultiByteQuestion(t *testing.T) {
	store := NewMemoryStore()

	// 3-byte runes that do not divide the 500-byte cap evenly.
	err := store.Insert(context.Background(), Entry{
		Type:     "spam",
		Question: strings.Repeat("…", 300),
	})
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.True(t, utf8.ValidString(entries[0].Question))
	assert.LessOrEqual(t, len(entries[0].Question), maxQuestionLen)
}
