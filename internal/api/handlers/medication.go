// Package handlers provides HTTP handlers for the coverage API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/medisure/go-coverage/internal/api/middleware"
	"github.com/medisure/go-coverage/internal/domain/medication"
	"github.com/medisure/go-coverage/internal/observability/metrics"
)

// MedicationHandler handles medication endpoints.
type MedicationHandler struct {
	svc     *medication.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMedicationHandler creates a new handler. Metrics may be nil.
func NewMedicationHandler(svc *medication.Service, m *metrics.Metrics, logger *zap.Logger) *MedicationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicationHandler{svc: svc, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *MedicationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.Query)
	r.Put("/{code}", h.Update)
	r.Delete("/{code}", h.Delete)
	return r
}

// CreateRequest is the request body for creating a medication.
type CreateRequest struct {
	Code               string   `json:"code,omitempty"`
	Name               string   `json:"name"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	Deductible         float64  `json:"deductible"`
	BasePrice          *float64 `json:"base_price,omitempty"`
}

// UpdateRequest is the request body for a partial medication update.
type UpdateRequest struct {
	Name               *string  `json:"name,omitempty"`
	CoveragePercentage *float64 `json:"coverage_percentage,omitempty"`
	Deductible         *float64 `json:"deductible,omitempty"`
	BasePrice          *float64 `json:"base_price,omitempty"`
}

// Create handles POST /medications.
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("medication-handler")
	ctx, span := tracer.Start(ctx, "create_medication")
	defer span.End()

	start := time.Now()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonDetail(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Create(ctx, medication.CreateInput{
		Code:               req.Code,
		Name:               req.Name,
		CoveragePercentage: req.CoveragePercentage,
		Deductible:         req.Deductible,
		BasePrice:          req.BasePrice,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	span.SetAttributes(attribute.String("medication_code", resp.Code))

	if h.metrics != nil {
		h.metrics.MedicationsCreated.Inc()
		h.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}
	h.logger.Info("medication created",
		zap.String("code", resp.Code),
		zap.String("request_id", middleware.GetRequestID(ctx)),
	)

	h.writeJSON(w, http.StatusCreated, resp)
}

// Query handles GET /medications?code=&name=.
func (h *MedicationHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	code := r.URL.Query().Get("code")
	name := r.URL.Query().Get("name")

	resp, err := h.svc.Query(ctx, code, name)
	if err != nil {
		if h.metrics != nil && medication.CodeOf(err) == medication.CodeNotFound {
			h.metrics.LookupMisses.Inc()
		}
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LookupHits.Inc()
		h.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Update handles PUT /medications/{code}.
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonDetail(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Update(ctx, code, medication.UpdateInput{
		Name:               req.Name,
		CoveragePercentage: req.CoveragePercentage,
		Deductible:         req.Deductible,
		BasePrice:          req.BasePrice,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MedicationsUpdated.Inc()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /medications/{code}.
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	rec, err := h.svc.Delete(ctx, code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MedicationsDeleted.Inc()
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"detail": "medication deleted successfully",
		"code":   rec.Code,
	})
}

// writeError maps domain errors onto the stable {detail} envelope.
func (h *MedicationHandler) writeError(w http.ResponseWriter, err error) {
	code := medication.CodeOf(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		h.logger.Error("medication request failed", zap.Error(err))
	}
	h.jsonDetail(w, medication.DetailOf(err), status)
}

func statusForCode(code medication.Code) int {
	switch code {
	case medication.CodeInvalidArgument:
		return http.StatusBadRequest
	case medication.CodeNotFound:
		return http.StatusNotFound
	case medication.CodeConflict, medication.CodeAmbiguousQuery:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *MedicationHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *MedicationHandler) jsonDetail(w http.ResponseWriter, detail string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
