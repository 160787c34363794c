package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medisure/go-coverage/internal/domain/medication"
	"github.com/medisure/go-coverage/internal/infrastructure/memory"
)

func newMedicationRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := medication.NewService(memory.NewStore(), medication.DefaultServiceConfig(), nil)
	return NewMedicationHandler(svc, nil, nil).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestMedicationCreate(t *testing.T) {
	h := newMedicationRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/",
		`{"code":"M1234","name":"Aspirin1","coverage_percentage":80,"deductible":10}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[medication.Response](t, rr)
	require.Equal(t, "M1234", resp.Code)
	require.Equal(t, "Aspirin1", resp.MedicationName)
	require.Equal(t, 100.00, resp.BasePrice)
	require.Equal(t, 30.00, resp.TotalCost)
}

func TestMedicationCreate_InvalidBody(t *testing.T) {
	h := newMedicationRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/", `not-json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Equal(t, "invalid request body", out["detail"])
}

func TestMedicationCreate_InvalidCoverage(t *testing.T) {
	h := newMedicationRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/",
		`{"code":"M1234","name":"Aspirin1","coverage_percentage":150,"deductible":10}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Contains(t, out["detail"], "coverage_percentage")
}

func TestMedicationCreate_DuplicateConflicts(t *testing.T) {
	h := newMedicationRouter(t)
	body := `{"code":"M1234","name":"Aspirin1","coverage_percentage":80,"deductible":10}`

	rr := doJSON(t, h, http.MethodPost, "/", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, h, http.MethodPost, "/", body)
	require.Equal(t, http.StatusConflict, rr.Code)

	out := decode[map[string]string](t, rr)
	require.Equal(t, "medication with this code already exists", out["detail"])
}

func TestMedicationQuery(t *testing.T) {
	h := newMedicationRouter(t)
	doJSON(t, h, http.MethodPost, "/",
		`{"code":"M1234","name":"Aspirin1","coverage_percentage":80,"deductible":10}`)

	rr := doJSON(t, h, http.MethodGet, "/?code=M1234", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[medication.Response](t, rr)
	require.Equal(t, 30.00, resp.TotalCost)

	rr = doJSON(t, h, http.MethodGet, "/?name=Aspirin1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[medication.Response](t, rr)
	require.Equal(t, "M1234", resp.Code)
}

func TestMedicationQuery_ErrorStatuses(t *testing.T) {
	h := newMedicationRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	out := decode[map[string]string](t, rr)
	require.Equal(t, "either code or name must be provided", out["detail"])

	rr = doJSON(t, h, http.MethodGet, "/?code=M9999", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	out = decode[map[string]string](t, rr)
	require.Equal(t, "medication not found", out["detail"])
}

func TestMedicationUpdate(t *testing.T) {
	h := newMedicationRouter(t)
	doJSON(t, h, http.MethodPost, "/",
		`{"code":"M1234","name":"Aspirin1","coverage_percentage":80,"deductible":10}`)

	rr := doJSON(t, h, http.MethodPut, "/M1234", `{"coverage_percentage":50}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[medication.Response](t, rr)
	require.Equal(t, 60.00, resp.TotalCost)

	rr = doJSON(t, h, http.MethodPut, "/M9999", `{"coverage_percentage":50}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMedicationDelete(t *testing.T) {
	h := newMedicationRouter(t)
	doJSON(t, h, http.MethodPost, "/",
		`{"code":"M1234","name":"Aspirin1","coverage_percentage":80,"deductible":10}`)

	rr := doJSON(t, h, http.MethodDelete, "/M1234", "")
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[map[string]string](t, rr)
	require.Equal(t, "medication deleted successfully", out["detail"])
	require.Equal(t, "M1234", out["code"])

	rr = doJSON(t, h, http.MethodDelete, "/M1234", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
