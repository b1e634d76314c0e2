package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/guidance"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/moderation"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []AlertEmail
	err  error
}

func (s *recordingSender) Send(_ context.Context, alert AlertEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, alert)
	return nil
}

func (s *recordingSender) alerts() []AlertEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AlertEmail, len(s.sent))
	copy(out, s.sent)
	return out
}

func testEvent() guidance.EscalationEvent {
	age := 15
	return guidance.EscalationEvent{
		Type:         guidance.NotifyMinorAbuse,
		Urgency:      guidance.UrgencyFor(guidance.NotifyMinorAbuse),
		Subject:      guidance.SubjectFor(guidance.NotifyMinorAbuse),
		Question:     "I'm 15 and my stepdad hits me",
		Answer:       "I'm so glad you told me. You deserve to be safe.",
		SessionID:    "sess-1",
		ClientIP:     "203.0.113.7",
		UserAgent:    "Mozilla/5.0",
		FirstName:    "Jordan",
		MentionedAge: &age,
		History: []guidance.ConversationTurn{
			{Role: guidance.RoleUser, Content: "I'm 15 and my stepdad hits me"},
			{Role: guidance.RoleAssistant, Content: "I'm so glad you told me. You deserve to be safe."},
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestDispatchSendsEmailWithFullContext(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil, DispatcherConfig{
		Recipient: "pastor@example.org",
		BaseURL:   "https://busypreacher.app/",
	}, nil)

	d.Dispatch(testEvent())
	d.Wait()

	msgs := sender.alerts()
	require.Len(t, msgs, 1)
	msg := msgs[0]

	assert.Equal(t, "pastor@example.org", msg.To)
	assert.Contains(t, msg.Subject, "minor abuse")
	assert.Contains(t, msg.HTML, "stepdad hits me")
	assert.Contains(t, msg.HTML, "You deserve to be safe")
	assert.Contains(t, msg.HTML, "15")
	assert.Contains(t, msg.HTML, "https://busypreacher.app/admin/moderation")
	assert.Contains(t, msg.Text, "[user]")
	assert.Contains(t, msg.Text, "[assistant]")
}

func TestDispatchFallsBackToDefaultRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil, DispatcherConfig{}, nil)

	d.Dispatch(testEvent())
	d.Wait()

	msgs := sender.alerts()
	require.Len(t, msgs, 1)
	assert.Equal(t, fallbackRecipient, msgs[0].To)
}

func TestDispatchSwallowsSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("sendgrid down")}
	d := NewDispatcher(sender, nil, DispatcherConfig{}, nil)

	assert.NotPanics(t, func() {
		d.Dispatch(testEvent())
		d.Wait()
	})
}

func TestDispatchWithoutSenderDoesNothing(t *testing.T) {
	d := NewDispatcher(nil, nil, DispatcherConfig{}, nil)
	assert.NotPanics(t, func() {
		d.Dispatch(testEvent())
		d.Wait()
	})
}

func TestLogInsertsModerationEntry(t *testing.T) {
	store := moderation.NewMemoryStore()
	d := NewDispatcher(nil, store, DispatcherConfig{}, nil)

	d.Log(moderation.Entry{Type: "abusive", Question: "why is this so stupid"})
	d.Wait()

	entries := store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "abusive", entries[0].Type)
}

func TestLogWithoutStoreDoesNothing(t *testing.T) {
	d := NewDispatcher(nil, nil, DispatcherConfig{}, nil)
	assert.NotPanics(t, func() {
		d.Log(moderation.Entry{Type: "spam"})
		d.Wait()
	})
}

func TestHTMLEscapesUserContent(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil, DispatcherConfig{}, nil)

	event := testEvent()
	event.Question = `<script>alert("x")</script>`
	d.Dispatch(event)
	d.Wait()

	msgs := sender.alerts()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].HTML, "<script>")
	assert.Contains(t, msgs[0].HTML, "&lt;script&gt;")
}
