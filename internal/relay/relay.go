package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medisure/go-coverage/pkg/circuitbreaker"
)

// Config holds relay tunables.
type Config struct {
	// Timeout bounds the single upstream attempt.
	Timeout time.Duration
	// MaxHistoryTurns caps caller-supplied prior turns; older turns are
	// dropped silently. Zero means no cap.
	MaxHistoryTurns int
}

// DefaultConfig returns relay defaults: one attempt, few-second timeout.
func DefaultConfig() Config {
	return Config{
		Timeout:         8 * time.Second,
		MaxHistoryTurns: 20,
	}
}

// Relay forwards a user message to the completion provider. Each call is
// a single bounded attempt through a circuit breaker; failures normalize
// to UpstreamError or UpstreamTimeout with a client-safe detail.
type Relay struct {
	provider Provider
	breaker  *circuitbreaker.CircuitBreaker
	cfg      Config
	logger   *zap.Logger
}

// New creates a relay over the given provider.
func New(provider Provider, cfg Config, logger *zap.Logger) (*Relay, error) {
	if provider == nil {
		return nil, errors.New("relay: provider must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("chat-provider"), logger)
	if err != nil {
		return nil, err
	}

	return &Relay{provider: provider, breaker: breaker, cfg: cfg, logger: logger}, nil
}

// Relay sends the message (and optional prior turns) upstream and returns
// the provider's reply.
func (r *Relay) Relay(ctx context.Context, message string, history []Message) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", newError(CodeInvalidArgument, "message must not be empty", nil)
	}

	if max := r.cfg.MaxHistoryTurns; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	result, err := r.breaker.Execute(ctx, func() (interface{}, error) {
		return r.provider.Complete(ctx, messages)
	})
	if err != nil {
		return "", r.normalize(ctx, err)
	}

	reply, ok := result.(string)
	if !ok || reply == "" {
		return "", newError(CodeUpstreamError, "chat provider returned an empty reply", nil)
	}
	return reply, nil
}

// normalize maps provider failures onto the relay error taxonomy. The
// detail strings are surfaced verbatim by the client, so raw upstream
// errors stay in logs only.
func (r *Relay) normalize(ctx context.Context, err error) error {
	switch {
	case circuitbreaker.ErrOpen(err):
		r.logger.Warn("chat provider circuit open")
		return newError(CodeUpstreamError, "chat provider is temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.logger.Warn("chat provider timed out", zap.Duration("timeout", r.cfg.Timeout))
		return newError(CodeUpstreamTimeout, "chat provider timed out", err)
	default:
		r.logger.Error("chat provider request failed", zap.Error(err))
		return newError(CodeUpstreamError, "chat provider request failed", err)
	}
}
