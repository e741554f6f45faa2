package remedy

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/clinicdesk/clinicdesk/internal/platform/sheets"
	"github.com/clinicdesk/clinicdesk/internal/platform/websocket"
)

// SearchLimit caps autocomplete results, matching what fits in the finder panel.
const SearchLimit = 15

// CatalogFetcher downloads and parses a catalog export. *sheets.Fetcher
// implements it; tests substitute fixtures.
type CatalogFetcher interface {
	Fetch(ctx context.Context, url string) (*sheets.Table, error)
}

type Service struct {
	repo       Repository
	fetcher    CatalogFetcher
	defaultURL string
	events     websocket.EventPublisher
}

func NewService(repo Repository, fetcher CatalogFetcher, defaultURL string) *Service {
	return &Service{repo: repo, fetcher: fetcher, defaultURL: defaultURL}
}

// SetEventPublisher attaches an optional event feed for catalog.synced events.
func (s *Service) SetEventPublisher(events websocket.EventPublisher) {
	s.events = events
}

// Sync fetches the CSV export, replaces the cached catalog wholesale, and
// remembers the URL used. An empty rawURL falls back to the last-used URL,
// then to the configured default.
func (s *Service) Sync(ctx context.Context, rawURL string) (*SyncResult, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		last, ok, err := s.repo.SheetURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("load last sheet url: %w", err)
		}
		if ok {
			url = last
		}
	}
	if url == "" {
		url = s.defaultURL
	}

	table, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	remedies := FromTable(table)
	if err := s.repo.Replace(ctx, remedies); err != nil {
		return nil, err
	}
	if err := s.repo.SetSheetURL(ctx, url); err != nil {
		return nil, err
	}

	result := &SyncResult{Count: len(remedies), URL: url}
	if s.events != nil {
		_ = s.events.Publish(ctx, websocket.NewEvent("catalog.synced", websocket.TopicCatalog, "", result))
	}
	return result, nil
}

// Search filters the cached catalog by a prescription fragment. A remedy
// matches when its name or its "name potency" label contains the term,
// case-insensitively. An empty term yields no results. Results are capped
// at SearchLimit.
func (s *Service) Search(ctx context.Context, term string) ([]Suggestion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	needle := strings.ToLower(term)
	matched := make([]Remedy, 0, SearchLimit)
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Label()), needle) {
			matched = append(matched, r)
			if len(matched) == SearchLimit {
				break
			}
		}
	}

	return lo.Map(matched, func(r Remedy, _ int) Suggestion {
		return Suggestion{Remedy: r, Label: r.Label(), Reference: r.ReferenceURL()}
	}), nil
}

// List returns a page of the cached catalog plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Remedy, int, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load catalog: %w", err)
	}

	total := len(all)
	if offset >= total {
		return []Remedy{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Count returns the number of cached catalog entries.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
