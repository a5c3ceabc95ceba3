package registry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/observability"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewStore()
	metrics, err := observability.NewMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	monitor := NewMonitor(store, config.MonitorConfig{}, metrics)
	handler := NewHandler(store, monitor, "test", metrics)

	r := gin.New()
	handler.RegisterRoutes(r)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body: %s)", err, w.Body.String())
	}
	return envelope.Error.Code
}

func TestHandler_Register_CreateThenUpsert(t *testing.T) {
	r, _ := newTestRouter(t)
	payload := sampleRegister("billing")

	w := doJSON(t, r, http.MethodPost, "/api/registry/register", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create, got %d: %s", w.Code, w.Body.String())
	}
	var first Service
	decodeData(t, w, &first)
	if first.Name != "billing" || first.ID == "" {
		t.Errorf("unexpected created record: %+v", first)
	}

	w = doJSON(t, r, http.MethodPost, "/api/registry/register", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for upsert, got %d", w.Code)
	}
	var second Service
	decodeData(t, w, &second)
	if second.ID != first.ID {
		t.Error("upsert must keep the record id")
	}
}

func TestHandler_Register_InvalidPayload(t *testing.T) {
	r, _ := newTestRouter(t)

	payload := sampleRegister("Bad Name!")
	w := doJSON(t, r, http.MethodPost, "/api/registry/register", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %s", code)
	}
}

func TestHandler_Register_ResponseHidesAPIKey(t *testing.T) {
	r, _ := newTestRouter(t)
	payload := sampleRegister("billing")
	payload.APIKey = "super-secret"

	w := doJSON(t, r, http.MethodPost, "/api/registry/register", payload)
	if bytes.Contains(w.Body.Bytes(), []byte("super-secret")) {
		t.Error("api_key must never appear in responses")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"url":"http://localhost:9001/"`)) {
		t.Errorf("response must include the computed url: %s", w.Body.String())
	}
}

func TestHandler_Heartbeat(t *testing.T) {
	r, store := newTestRouter(t)
	svc, _ := store.Register(sampleRegister("billing"))

	w := doJSON(t, r, http.MethodPost, "/api/registry/heartbeat", HeartbeatRequest{ServiceID: svc.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/registry/heartbeat", HeartbeatRequest{ServiceID: "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown service, got %d", w.Code)
	}
}

func TestHandler_ListServices_DefaultsToActiveOnly(t *testing.T) {
	r, store := newTestRouter(t)
	a, _ := store.Register(sampleRegister("billing"))
	store.Register(sampleRegister("user-profile"))
	if err := store.Deregister(a.ID); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/registry/services", nil)
	var active []Service
	decodeData(t, w, &active)
	if len(active) != 1 || active[0].Name != "user-profile" {
		t.Errorf("default list must be active-only: %+v", active)
	}

	w = doJSON(t, r, http.MethodGet, "/api/registry/services?active_only=false", nil)
	var all []Service
	decodeData(t, w, &all)
	if len(all) != 2 {
		t.Errorf("expected 2 records with active_only=false, got %d", len(all))
	}
}

func TestHandler_GetByIDAndName(t *testing.T) {
	r, store := newTestRouter(t)
	svc, _ := store.Register(sampleRegister("billing"))

	w := doJSON(t, r, http.MethodGet, "/api/registry/services/"+svc.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get by id failed: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/registry/services/by-name/billing", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get by name failed: %d", w.Code)
	}
	var got Service
	decodeData(t, w, &got)
	if got.ID != svc.ID {
		t.Error("by-name lookup returned a different record")
	}

	w = doJSON(t, r, http.MethodGet, "/api/registry/services/by-name/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestHandler_UpdateService(t *testing.T) {
	r, store := newTestRouter(t)
	svc, _ := store.Register(sampleRegister("billing"))

	w := doJSON(t, r, http.MethodPut, "/api/registry/services/"+svc.ID, map[string]any{
		"display_name": "Billing v2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got Service
	decodeData(t, w, &got)
	if got.DisplayName != "Billing v2" {
		t.Errorf("display_name not updated: %q", got.DisplayName)
	}
}

func TestHandler_DeleteService(t *testing.T) {
	r, store := newTestRouter(t)
	svc, _ := store.Register(sampleRegister("billing"))

	w := doJSON(t, r, http.MethodDelete, "/api/registry/services/"+svc.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/registry/services/"+svc.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted record must 404, got %d", w.Code)
	}
}

func TestHandler_HealthSweep(t *testing.T) {
	r, store := newTestRouter(t)
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base.Add(-10 * time.Minute) }
	store.Register(sampleRegister("billing"))
	store.now = func() time.Time { return base }

	w := doJSON(t, r, http.MethodGet, "/api/registry/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var report SweepReport
	decodeData(t, w, &report)
	if report.Count != 1 || len(report.Stale) != 1 || report.Stale[0].Name != "billing" {
		t.Errorf("unexpected sweep report: %+v", report)
	}
}

func TestHandler_Info(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var info map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info["service"] != "service-registry" || info["status"] != "healthy" {
		t.Errorf("unexpected info payload: %v", info)
	}
}
