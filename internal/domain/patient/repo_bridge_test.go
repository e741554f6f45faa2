package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

func newBridgeRepo(t *testing.T, url string) *BridgeRepo {
	t.Helper()
	client, err := bridge.New(url, 5*time.Second)
	if err != nil {
		t.Fatalf("failed to build bridge client: %v", err)
	}
	return NewBridgeRepo(client)
}

func TestBridgeRepo_Lookup_Found(t *testing.T) {
	var gotAction, gotPhone string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.URL.Query().Get("action")
		gotPhone = r.URL.Query().Get("phone")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"patient": {"phone":"5551234567","firstName":"Ana","lastName":"Reyes","sex":"Female","city":"Fresno","state":"CA","dob":"1988-04-02","age":0},
			"history": [
				{"date":"2026-01-05","symptoms":"2026-01-05; headache","diagnosis":"migraine","prescription":"Belladonna 30, "}
			]
		}`))
	}))
	defer ts.Close()

	repo := newBridgeRepo(t, ts.URL)
	result, err := repo.Lookup(context.Background(), "5551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAction != "getPatient" {
		t.Errorf("expected action getPatient, got %q", gotAction)
	}
	if gotPhone != "5551234567" {
		t.Errorf("expected phone in query, got %q", gotPhone)
	}
	if result.Patient.FirstName != "Ana" {
		t.Errorf("expected patient decoded, got %+v", result.Patient)
	}
	if len(result.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(result.History))
	}
	if result.History[0].Prescription != "Belladonna 30, " {
		t.Errorf("unexpected history prescription: %q", result.History[0].Prescription)
	}
}

func TestBridgeRepo_Lookup_CleanMiss(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"not_found"}`))
	}))
	defer ts.Close()

	repo := newBridgeRepo(t, ts.URL)
	_, err := repo.Lookup(context.Background(), "5550000000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBridgeRepo_Lookup_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer ts.Close()

	repo := newBridgeRepo(t, ts.URL)
	_, err := repo.Lookup(context.Background(), "5551234567")
	if !errors.Is(err, bridge.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for malformed body, got %v", err)
	}
}

func TestBridgeRepo_Lookup_NotConfigured(t *testing.T) {
	repo := newBridgeRepo(t, "")
	_, err := repo.Lookup(context.Background(), "5551234567")
	if !errors.Is(err, bridge.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBridgeRepo_Save_PostsEnvelope(t *testing.T) {
	var envelope struct {
		Action string  `json:"action"`
		Data   Patient `json:"data"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	repo := newBridgeRepo(t, ts.URL)
	p := &Patient{Phone: "5551234567", FirstName: "Ana", Sex: "Female", City: "Fresno", State: "CA"}
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if envelope.Action != "savePatient" {
		t.Errorf("expected savePatient action, got %q", envelope.Action)
	}
	if envelope.Data.Phone != "5551234567" {
		t.Errorf("expected patient in data, got %+v", envelope.Data)
	}
}
