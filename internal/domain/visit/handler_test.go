package visit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

func newTestHandler(repo *mockVisitRepo) (*Handler, *echo.Echo) {
	return NewHandler(NewService(repo)), echo.New()
}

// -- REST Handler Tests --

func TestHandler_Record(t *testing.T) {
	repo := &mockVisitRepo{}
	h, e := newTestHandler(repo)

	body := `{"patientPhone":"5551234567","date":"2026-01-05","symptoms":"2026-01-05; headache","diagnosis":"migraine","prescription":"Belladonna 30, "}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Record(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var saved Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected recorded visit to carry an ID")
	}
	if saved.Diagnosis != "migraine" {
		t.Errorf("expected diagnosis echoed, got %q", saved.Diagnosis)
	}
	if len(repo.saved) != 1 {
		t.Errorf("expected 1 visit stored, got %d", len(repo.saved))
	}
}

func TestHandler_Record_MissingPhone(t *testing.T) {
	h, e := newTestHandler(&mockVisitRepo{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2026-01-05"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Record(c)
	if err == nil {
		t.Fatal("expected error for missing phone")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandler_Record_BridgeNotConfigured(t *testing.T) {
	h, e := newTestHandler(&mockVisitRepo{err: bridge.ErrNotConfigured})

	body := `{"patientPhone":"5551234567"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Record(c)
	if err == nil {
		t.Fatal("expected error when bridge is unconfigured")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", httpErr.Code)
	}
}

func TestHandler_Record_BridgeUnavailable(t *testing.T) {
	h, e := newTestHandler(&mockVisitRepo{err: bridge.ErrUnavailable})

	body := `{"patientPhone":"5551234567"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Record(c)
	if err == nil {
		t.Fatal("expected error when bridge is down")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", httpErr.Code)
	}
}
