package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"launchpad/internal/gateway"
	"launchpad/internal/launcher"
	"launchpad/pkg/types"
)

type mockService struct {
	entries   []types.CatalogEntry
	launchErr error
	launched  []types.LaunchRequest
	running   map[string]json.RawMessage
	ready     bool
}

func (m *mockService) Catalog() []types.CatalogEntry {
	return append([]types.CatalogEntry(nil), m.entries...)
}

func (m *mockService) Entry(name string) (types.CatalogEntry, error) {
	for _, e := range m.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return types.CatalogEntry{}, gateway.ErrModelNotFound(name)
}

func (m *mockService) Options(name, format, size string) (types.OptionsResponse, error) {
	if _, err := m.Entry(name); err != nil {
		return types.OptionsResponse{}, err
	}
	resp := types.OptionsResponse{Formats: []string{"pytorch"}}
	if format != "" {
		resp.Sizes = []float64{7, 13}
	}
	if format != "" && size != "" {
		resp.Quantizations = []string{"int4", "int8"}
	}
	return resp, nil
}

func (m *mockService) Launch(ctx context.Context, req types.LaunchRequest) (types.LaunchResponse, error) {
	if m.launchErr != nil {
		return types.LaunchResponse{}, m.launchErr
	}
	m.launched = append(m.launched, req)
	return types.LaunchResponse{ModelUID: "uid-1", Endpoint: "http://backend/uid-1"}, nil
}

func (m *mockService) Running(ctx context.Context) (map[string]json.RawMessage, error) {
	return m.running, nil
}

func (m *mockService) Terminate(ctx context.Context, uid string) error {
	if uid == "missing" {
		return gateway.ErrModelNotFound(uid)
	}
	return nil
}

func (m *mockService) Status() types.StatusResponse {
	return types.StatusResponse{CatalogEntries: len(m.entries)}
}

func (m *mockService) Ready() bool { return m.ready }

func testService() *mockService {
	return &mockService{
		entries: []types.CatalogEntry{{
			Name:      "llama-2-chat",
			IsBuiltin: true,
			Variants: []types.VariantSpec{
				{Format: "pytorch", Size: 7, Quantizations: []string{"int4", "int8"}},
			},
		}},
		ready: true,
	}
}

func TestCatalogHandler(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.CatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 1 || body.Models[0].Name != "llama-2-chat" {
		t.Fatalf("body=%+v", body)
	}
}

func TestEntryHandler_NotFound(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Code != http.StatusNotFound {
		t.Fatalf("body=%+v", body)
	}
}

func TestOptionsHandler(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/llama-2-chat/options?format=pytorch&size=7", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.OptionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Formats) != 1 || len(body.Sizes) != 2 || len(body.Quantizations) != 2 {
		t.Fatalf("body=%+v", body)
	}
}

func launchBody() *bytes.Buffer {
	return bytes.NewBufferString(`{"model_name":"llama-2-chat","model_format":"pytorch","model_size_in_billions":"7","quantization":"int4"}`)
}

func TestLaunchHandler(t *testing.T) {
	svc := testService()
	r := NewMux(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch", launchBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.LaunchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.ModelUID != "uid-1" || body.Endpoint == "" {
		t.Fatalf("body=%+v", body)
	}
	if len(svc.launched) != 1 || svc.launched[0].ModelSizeInBillions != "7" {
		t.Fatalf("launched=%+v", svc.launched)
	}
}

func TestLaunchHandler_BadContentType(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/launch", launchBody()))
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLaunchHandler_BadJSON(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch", bytes.NewBufferString("not-json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLaunchHandler_MissingName(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch", bytes.NewBufferString(`{"model_format":"pytorch"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLaunchHandler_GuardConflict(t *testing.T) {
	svc := testService()
	gate := launcher.NewGate()
	if !gate.TryAcquire() {
		t.Fatalf("setup acquire failed")
	}
	// A held gate surfaces as the sequencer's in-progress error.
	seq := launcher.NewSequencer(launcher.SequencerConfig{Gate: gate})
	_, svc.launchErr = seq.Launch(context.Background(), svc.entries[0],
		types.Selection{Format: "pytorch", Size: "7", Quantization: "int4"})

	r := NewMux(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch", launchBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestLaunchHandler_IncompleteSelection(t *testing.T) {
	svc := testService()
	svc.launchErr = launcher.ErrSelectionIncomplete("quantization missing")
	r := NewMux(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/launch", launchBody())
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestModelsHandler(t *testing.T) {
	svc := testService()
	svc.running = map[string]json.RawMessage{"uid-1": json.RawMessage(`{"model_name":"llama-2-chat"}`)}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("body=%v", body)
	}
}

func TestTerminateHandler(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/models/uid-1", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/models/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.CatalogEntries != 1 {
		t.Fatalf("body=%+v", body)
	}
}

func TestHealthz(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	svc := testService()
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}

	svc.ready = false
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewMux(testService())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
