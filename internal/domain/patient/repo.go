package patient

import (
	"context"
	"errors"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// ErrNotFound is a clean miss: the endpoint answered but knows no patient
// under that phone number. Callers treat it as an invitation to register,
// not as a failure.
var ErrNotFound = errors.New("patient not found")

// LookupResult is a found patient together with their visit history.
type LookupResult struct {
	Patient Patient       `json:"patient"`
	History []visit.Visit `json:"history"`
}

// Repository fetches and stores patient records. The production
// implementation talks to the external scripting endpoint, which owns all
// patient storage.
type Repository interface {
	Lookup(ctx context.Context, phone string) (*LookupResult, error)
	Save(ctx context.Context, p *Patient) error
}
