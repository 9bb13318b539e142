package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_SendStoresAndPreviews(t *testing.T) {
	outbox := NewOutbox("http://localhost:8080")

	result, err := outbox.Send(context.Background(), "alice@ex.com", "Your verification code", "code: 123456", "<p>123456</p>")
	require.NoError(t, err)
	assert.Contains(t, result.Preview, "http://localhost:8080/api/dev/mail/")

	id := result.Preview[len("http://localhost:8080/api/dev/mail/"):]
	msg, ok := outbox.Get(id)
	require.True(t, ok)
	assert.Equal(t, "alice@ex.com", msg.To)
	assert.Equal(t, "code: 123456", msg.Text)
}

func TestOutbox_GetUnknown(t *testing.T) {
	outbox := NewOutbox("http://localhost:8080")
	_, ok := outbox.Get("nope")
	assert.False(t, ok)
}

func TestOutbox_LastReturnsMostRecent(t *testing.T) {
	outbox := NewOutbox("http://x")

	_, err := outbox.Send(context.Background(), "a@ex.com", "first", "1", "")
	require.NoError(t, err)
	_, err = outbox.Send(context.Background(), "b@ex.com", "second", "2", "")
	require.NoError(t, err)

	last, ok := outbox.Last()
	require.True(t, ok)
	assert.Equal(t, "second", last.Subject)
}

func TestOutbox_SendHonorsCancelledContext(t *testing.T) {
	outbox := NewOutbox("http://x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := outbox.Send(ctx, "a@ex.com", "s", "t", "")
	assert.Error(t, err)
}
