package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medisure/go-coverage/internal/relay"
)

type stubProvider struct {
	reply string
	err   error
	delay time.Duration
}

func (s *stubProvider) Complete(ctx context.Context, _ []relay.Message) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func newChatRouter(t *testing.T, provider relay.Provider, cfg relay.Config) http.Handler {
	t.Helper()
	r, err := relay.New(provider, cfg, nil)
	require.NoError(t, err)
	return NewChatHandler(r, nil, nil).Routes()
}

func TestChat(t *testing.T) {
	h := newChatRouter(t, &stubProvider{reply: "Take with food."}, relay.DefaultConfig())

	rr := doJSON(t, h, http.MethodPost, "/", `{"message":"How should I take aspirin?"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[ChatResponse](t, rr)
	require.Equal(t, "Take with food.", resp.Reply)
}

func TestChat_EmptyMessage(t *testing.T) {
	h := newChatRouter(t, &stubProvider{reply: "ok"}, relay.DefaultConfig())

	rr := doJSON(t, h, http.MethodPost, "/", `{"message":"   "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Equal(t, "message must not be empty", out["detail"])
}

func TestChat_InvalidBody(t *testing.T) {
	h := newChatRouter(t, &stubProvider{reply: "ok"}, relay.DefaultConfig())

	rr := doJSON(t, h, http.MethodPost, "/", `not-json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChat_UpstreamFailure(t *testing.T) {
	h := newChatRouter(t, &stubProvider{err: errors.New("boom")}, relay.DefaultConfig())

	rr := doJSON(t, h, http.MethodPost, "/", `{"message":"hello"}`)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Equal(t, "chat provider request failed", out["detail"])
}

func TestChat_UpstreamTimeout(t *testing.T) {
	cfg := relay.DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	h := newChatRouter(t, &stubProvider{reply: "late", delay: 500 * time.Millisecond}, cfg)

	rr := doJSON(t, h, http.MethodPost, "/", `{"message":"hello"}`)
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Equal(t, "chat provider timed out", out["detail"])
}
