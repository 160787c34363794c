// Package relay forwards chat messages to a text-completion provider and
// normalizes its failures. It holds no conversation state: callers supply
// the full history on every call.
package relay

import "context"

// Chat roles understood by completion providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a provider-agnostic chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is an opaque text-completion backend.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
