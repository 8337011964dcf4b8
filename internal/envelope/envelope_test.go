package envelope

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) (any, map[string]any) {
	t.Helper()
	var env struct {
		Data any            `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Data, env.Meta
}

func TestSuccessEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithTraceID(req.Context(), "trace-9"))
	rec := httptest.NewRecorder()

	Success(rec, req, map[string]any{"id": "abc"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	data, meta := decodeBody(t, rec)
	if data.(map[string]any)["id"] != "abc" {
		t.Errorf("data = %v", data)
	}
	if meta["success"] != true || meta["trace_id"] != "trace-9" {
		t.Errorf("meta = %v", meta)
	}
	if _, ok := meta["errors"]; ok {
		t.Error("success envelope must not carry errors")
	}
}

func TestSuccessMetaMergesExtraKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	SuccessMeta(rec, req, nil, map[string]any{"idempotent": true})

	_, meta := decodeBody(t, rec)
	if meta["idempotent"] != true {
		t.Errorf("meta = %v", meta)
	}
	if meta["success"] != true {
		t.Error("extra keys must not displace success")
	}
	// Without the trace middleware the id is simply empty.
	if meta["trace_id"] != "" {
		t.Errorf("trace_id = %v", meta["trace_id"])
	}
}

func TestFailureEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithTraceID(req.Context(), "trace-10"))
	rec := httptest.NewRecorder()

	Failure(rec, req, http.StatusNotFound, "NOT_FOUND", "Vazifa topilmadi.")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	data, meta := decodeBody(t, rec)
	if data != nil {
		t.Errorf("data = %v, want null", data)
	}
	if meta["success"] != false || meta["trace_id"] != "trace-10" {
		t.Errorf("meta = %v", meta)
	}
	errs := meta["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	first := errs[0].(map[string]any)
	if first["code"] != "NOT_FOUND" || first["message"] != "Vazifa topilmadi." {
		t.Errorf("error entry = %v", first)
	}
}

func TestFailureFieldsCarriesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	FailureFields(rec, req, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title majburiy.",
		map[string]any{"title": "required"})

	_, meta := decodeBody(t, rec)
	first := meta["errors"].([]any)[0].(map[string]any)
	fields := first["fields"].(map[string]any)
	if fields["title"] != "required" {
		t.Errorf("fields = %v", fields)
	}
}
