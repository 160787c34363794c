package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/medisure/go-coverage/internal/api/middleware"
	"github.com/medisure/go-coverage/internal/observability/metrics"
	"github.com/medisure/go-coverage/internal/relay"
)

// ChatHandler handles the chat relay endpoint.
type ChatHandler struct {
	relay   *relay.Relay
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewChatHandler creates a new handler. Metrics may be nil.
func NewChatHandler(r *relay.Relay, m *metrics.Metrics, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{relay: r, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Chat)
	return r
}

// ChatRequest is the request body for a chat turn. History is optional;
// the relay is stateless so callers resend the conversation every time.
type ChatRequest struct {
	Message string          `json:"message"`
	History []relay.Message `json:"history,omitempty"`
}

// ChatResponse is the reply envelope.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonDetail(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if h.metrics != nil {
		h.metrics.ChatRelayRequests.Inc()
	}

	reply, err := h.relay.Relay(ctx, req.Message, req.History)
	if h.metrics != nil {
		h.metrics.ChatRelayDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		code := relay.CodeOf(err)
		if h.metrics != nil {
			h.metrics.ChatRelayFailures.WithLabelValues(string(code)).Inc()
		}
		h.logger.Warn("chat relay failed",
			zap.String("code", string(code)),
			zap.String("request_id", middleware.GetRequestID(ctx)),
		)
		h.jsonDetail(w, relay.DetailOf(err), statusForRelayCode(code))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{Reply: reply})
}

func statusForRelayCode(code relay.Code) int {
	switch code {
	case relay.CodeInvalidArgument:
		return http.StatusBadRequest
	case relay.CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *ChatHandler) jsonDetail(w http.ResponseWriter, detail string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
