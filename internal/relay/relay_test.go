package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply    string
	err      error
	delay    time.Duration
	messages []Message
}

func (s *stubProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	s.messages = messages
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func TestRelay_PassesReplyThroughVerbatim(t *testing.T) {
	stub := &stubProvider{reply: "Take with food."}
	r, err := New(stub, DefaultConfig(), nil)
	require.NoError(t, err)

	reply, err := r.Relay(context.Background(), "How should I take aspirin?", nil)
	require.NoError(t, err)
	require.Equal(t, "Take with food.", reply)

	require.Len(t, stub.messages, 1)
	require.Equal(t, RoleUser, stub.messages[0].Role)
	require.Equal(t, "How should I take aspirin?", stub.messages[0].Content)
}

func TestRelay_EmptyMessage(t *testing.T) {
	r, err := New(&stubProvider{reply: "ok"}, DefaultConfig(), nil)
	require.NoError(t, err)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := r.Relay(context.Background(), msg, nil)
		require.Error(t, err)
		require.Equal(t, CodeInvalidArgument, CodeOf(err))
		require.Equal(t, "message must not be empty", DetailOf(err))
	}
}

func TestRelay_AppendsHistoryBeforeMessage(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	r, err := New(stub, DefaultConfig(), nil)
	require.NoError(t, err)

	history := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	_, err = r.Relay(context.Background(), "next", history)
	require.NoError(t, err)

	require.Len(t, stub.messages, 3)
	require.Equal(t, "hi", stub.messages[0].Content)
	require.Equal(t, "hello", stub.messages[1].Content)
	require.Equal(t, "next", stub.messages[2].Content)
}

func TestRelay_CapsHistory(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	cfg := DefaultConfig()
	cfg.MaxHistoryTurns = 2
	r, err := New(stub, cfg, nil)
	require.NoError(t, err)

	history := []Message{
		{Role: RoleUser, Content: "oldest"},
		{Role: RoleAssistant, Content: "mid"},
		{Role: RoleUser, Content: "newest"},
	}
	_, err = r.Relay(context.Background(), "msg", history)
	require.NoError(t, err)

	// Oldest turn dropped, order preserved.
	require.Len(t, stub.messages, 3)
	require.Equal(t, "mid", stub.messages[0].Content)
	require.Equal(t, "newest", stub.messages[1].Content)
	require.Equal(t, "msg", stub.messages[2].Content)
}

func TestRelay_UpstreamFailure(t *testing.T) {
	r, err := New(&stubProvider{err: errors.New("connection refused")}, DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = r.Relay(context.Background(), "hello", nil)
	require.Error(t, err)
	require.Equal(t, CodeUpstreamError, CodeOf(err))
	require.Equal(t, "chat provider request failed", DetailOf(err))
}

func TestRelay_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	r, err := New(&stubProvider{reply: "late", delay: 500 * time.Millisecond}, cfg, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = r.Relay(context.Background(), "hello", nil)
	require.Error(t, err)
	require.Equal(t, CodeUpstreamTimeout, CodeOf(err))
	require.Equal(t, "chat provider timed out", DetailOf(err))
	require.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestRelay_EmptyReplyIsUpstreamError(t *testing.T) {
	r, err := New(&stubProvider{reply: ""}, DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = r.Relay(context.Background(), "hello", nil)
	require.Error(t, err)
	require.Equal(t, CodeUpstreamError, CodeOf(err))
}
