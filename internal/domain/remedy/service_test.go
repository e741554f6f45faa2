package remedy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/clinicdesk/clinicdesk/internal/platform/sheets"
	"github.com/clinicdesk/clinicdesk/internal/platform/websocket"
)

// -- Mock Repository --

type mockCatalogRepo struct {
	remedies []Remedy
	sheetURL string
	hasURL   bool
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{}
}

func (m *mockCatalogRepo) Replace(_ context.Context, remedies []Remedy) error {
	m.remedies = remedies
	return nil
}

func (m *mockCatalogRepo) All(_ context.Context) ([]Remedy, error) {
	return m.remedies, nil
}

func (m *mockCatalogRepo) Count(_ context.Context) (int, error) {
	return len(m.remedies), nil
}

func (m *mockCatalogRepo) SheetURL(_ context.Context) (string, bool, error) {
	return m.sheetURL, m.hasURL, nil
}

func (m *mockCatalogRepo) SetSheetURL(_ context.Context, url string) error {
	m.sheetURL = url
	m.hasURL = true
	return nil
}

// -- Fixture Fetcher --

type fixtureFetcher struct {
	table   *sheets.Table
	err     error
	lastURL string
}

func (f *fixtureFetcher) Fetch(_ context.Context, url string) (*sheets.Table, error) {
	f.lastURL = url
	if strings.TrimSpace(url) == "" {
		return nil, sheets.ErrNoURL
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

// -- Event Capture --

type capturePublisher struct {
	events []websocket.Event
}

func (p *capturePublisher) Publish(_ context.Context, event websocket.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestCatalogService(defaultURL string) (*Service, *mockCatalogRepo, *fixtureFetcher) {
	repo := newMockCatalogRepo()
	fetcher := &fixtureFetcher{table: catalogTable()}
	return NewService(repo, fetcher, defaultURL), repo, fetcher
}

// -- Service Tests --

func TestSync_ReplacesCatalog(t *testing.T) {
	svc, repo, fetcher := newTestCatalogService("")

	result, err := svc.Sync(context.Background(), "https://sheets.example/export?format=csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 3 {
		t.Errorf("expected count 3, got %d", result.Count)
	}
	if len(repo.remedies) != 3 {
		t.Errorf("expected 3 cached remedies, got %d", len(repo.remedies))
	}
	if fetcher.lastURL != "https://sheets.example/export?format=csv" {
		t.Errorf("expected fetch from request URL, got %q", fetcher.lastURL)
	}
	if repo.sheetURL != "https://sheets.example/export?format=csv" {
		t.Errorf("expected sheet URL remembered, got %q", repo.sheetURL)
	}
}

func TestSync_ReusesLastURL(t *testing.T) {
	svc, _, fetcher := newTestCatalogService("https://default.example/export")

	if _, err := svc.Sync(context.Background(), "https://sheets.example/one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Sync(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.lastURL != "https://sheets.example/one" {
		t.Errorf("expected re-sync to reuse last URL, got %q", fetcher.lastURL)
	}
}

func TestSync_FallsBackToDefault(t *testing.T) {
	svc, _, fetcher := newTestCatalogService("https://default.example/export")

	if _, err := svc.Sync(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.lastURL != "https://default.example/export" {
		t.Errorf("expected fallback to default URL, got %q", fetcher.lastURL)
	}
}

func TestSync_NoURLAnywhere(t *testing.T) {
	svc, _, _ := newTestCatalogService("")

	_, err := svc.Sync(context.Background(), "")
	if !errors.Is(err, sheets.ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestSync_FetchError(t *testing.T) {
	repo := newMockCatalogRepo()
	fetcher := &fixtureFetcher{err: fmt.Errorf("%w: status 500", sheets.ErrFetch)}
	svc := NewService(repo, fetcher, "")

	_, err := svc.Sync(context.Background(), "https://sheets.example/export")
	if !errors.Is(err, sheets.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if len(repo.remedies) != 0 {
		t.Error("expected catalog untouched after failed fetch")
	}
	if repo.hasURL {
		t.Error("expected sheet URL not remembered after failed fetch")
	}
}

func TestSync_PublishesEvent(t *testing.T) {
	svc, _, _ := newTestCatalogService("")
	pub := &capturePublisher{}
	svc.SetEventPublisher(pub)

	if _, err := svc.Sync(context.Background(), "https://sheets.example/export"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != "catalog.synced" {
		t.Errorf("expected catalog.synced, got %q", ev.Type)
	}
	if ev.Topic != websocket.TopicCatalog {
		t.Errorf("expected catalog topic, got %q", ev.Topic)
	}
}

func seedCatalog(t *testing.T, repo *mockCatalogRepo, remedies []Remedy) {
	t.Helper()
	if err := repo.Replace(context.Background(), remedies); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
}

func TestSearch_MatchesName(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{
		{Name: "Arnica Montana", Potency: "200"},
		{Name: "Belladonna", Potency: "30"},
	})

	results, err := svc.Search(context.Background(), "arn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "Arnica Montana" {
		t.Errorf("expected Arnica Montana, got %q", results[0].Name)
	}
}

func TestSearch_MatchesLabel(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{
		{Name: "Arnica Montana", Potency: "200"},
		{Name: "Arnica Montana", Potency: "1M"},
	})

	// "arnica montana 2" only matches the name-plus-potency form of the 200.
	results, err := svc.Search(context.Background(), "arnica montana 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Potency != "200" {
		t.Errorf("expected the 200 potency, got %q", results[0].Potency)
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{{Name: "Nux Vomica", Potency: "30"}})

	results, err := svc.Search(context.Background(), "NUX vom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_EmptyTerm(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{{Name: "Sulphur", Potency: "200"}})

	results, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for blank term, got %d", len(results))
	}
}

func TestSearch_CapsAtLimit(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	var many []Remedy
	for i := 0; i < SearchLimit+10; i++ {
		many = append(many, Remedy{Name: fmt.Sprintf("Arnica %d", i), Potency: "30"})
	}
	seedCatalog(t, repo, many)

	results, err := svc.Search(context.Background(), "arnica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != SearchLimit {
		t.Errorf("expected %d results, got %d", SearchLimit, len(results))
	}
}

func TestSearch_SetsLabelAndReference(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{{Name: "Arnica Montana", Potency: "200", Availability: "y", Available: true}})

	results, err := svc.Search(context.Background(), "arnica")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	s := results[0]
	if s.Label != "Arnica Montana 200" {
		t.Errorf("expected label, got %q", s.Label)
	}
	if s.Reference != ReferenceBaseURL+"arnica-montana" {
		t.Errorf("expected reference URL, got %q", s.Reference)
	}
	if !s.Available {
		t.Error("expected availability carried through")
	}
}

func TestList_Pagination(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{
		{Name: "Arnica Montana"}, {Name: "Belladonna"}, {Name: "Nux Vomica"},
		{Name: "Pulsatilla"}, {Name: "Sepia"},
	})

	page, total, err := svc.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Errorf("expected page of 2 with total 5, got %d of %d", len(page), total)
	}

	page, total, err = svc.List(context.Background(), 10, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(page) != 1 {
		t.Errorf("expected final page of 1, got %d of %d", len(page), total)
	}

	page, total, err = svc.List(context.Background(), 10, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(page) != 0 {
		t.Errorf("expected empty page past end, got %d of %d", len(page), total)
	}
}

func TestCount(t *testing.T) {
	svc, repo, _ := newTestCatalogService("")
	seedCatalog(t, repo, []Remedy{{Name: "Arnica Montana"}, {Name: "Belladonna"}})

	n, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}
