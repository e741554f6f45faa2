// Package sheets fetches a spreadsheet CSV export and exposes it as a
// header-addressed table. Column resolution is deliberately fuzzy: catalog
// spreadsheets are hand-maintained and their header spellings drift.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNoURL = errors.New("sheet export URL is not configured")
	// ErrFetch wraps transport and HTTP status failures.
	ErrFetch = errors.New("sheet export unavailable")
)

// Row is one data row, aligned with the table headers.
type Row []string

// Table is a parsed CSV export: a header row plus data rows. Short rows are
// padded so every row is addressable by header index.
type Table struct {
	Headers []string
	Rows    []Row
}

// Column returns the index of the first column whose name contains one of
// the candidate names, compared case-insensitively after trimming.
// Candidates are tried in order, so more specific names go first. Returns -1
// when nothing matches.
func (t *Table) Column(candidates ...string) int {
	for _, cand := range candidates {
		want := strings.ToLower(strings.TrimSpace(cand))
		if want == "" {
			continue
		}
		for i, h := range t.Headers {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), want) {
				return i
			}
		}
	}
	return -1
}

// Value resolves a cell of r by fuzzy header match, returning "" when no
// candidate matches any column.
func (t *Table) Value(r Row, candidates ...string) string {
	i := t.Column(candidates...)
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Parse reads CSV text into a Table. The first record is the header row;
// ragged data rows are tolerated and padded to the header width.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv export has no header row")
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	t := &Table{Headers: headers, Rows: make([]Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := Row(rec)
		for len(row) < len(headers) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client used for export fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// Fetcher downloads CSV exports.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher builds a Fetcher whose default client uses the given timeout.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads the CSV export at rawURL and parses it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Table, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetch, resp.StatusCode, string(body))
	}

	return Parse(resp.Body)
}
