package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSenderRequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender("", "alerts@busypreacher.app", "", nil))
	assert.Nil(t, NewSendGridSender("   ", "alerts@busypreacher.app", "", nil))

	sender := NewSendGridSender("SG.test-key", "alerts@busypreacher.app", "", nil)
	require.NotNil(t, sender)
}

func TestNilSendGridSenderRefusesToSend(t *testing.T) {
	var sender *SendGridSender
	err := sender.Send(context.Background(), AlertEmail{To: "pastor@example.org"})
	assert.Error(t, err)
}

func TestLogSenderNeverFails(t *testing.T) {
	sender := NewLogSender(nil)
	err := sender.Send(context.Background(), AlertEmail{
		To:      "pastor@example.org",
		Subject: "Crisis conversation",
		Text:    "body",
	})
	assert.NoError(t, err)
}
