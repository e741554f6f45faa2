package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/internal/platform/bridge"
)

// BridgeRepo reads and writes patient records through the scripting endpoint.
type BridgeRepo struct {
	client *bridge.Client
}

func NewBridgeRepo(client *bridge.Client) *BridgeRepo {
	return &BridgeRepo{client: client}
}

// lookupResponse is the endpoint's getPatient document. Any status other
// than "success" is a clean miss.
type lookupResponse struct {
	Status  string        `json:"status"`
	Patient Patient       `json:"patient"`
	History []visit.Visit `json:"history"`
}

func (r *BridgeRepo) Lookup(ctx context.Context, phone string) (*LookupResult, error) {
	raw, err := r.client.Get(ctx, bridge.ActionGetPatient, url.Values{"phone": {phone}})
	if err != nil {
		return nil, err
	}

	var resp lookupResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode getPatient response: %v", bridge.ErrUnavailable, err)
	}
	if resp.Status != "success" {
		return nil, ErrNotFound
	}
	return &LookupResult{Patient: resp.Patient, History: resp.History}, nil
}

// Save posts the patient as a savePatient action. The endpoint's response
// body is not interpreted; any accepted write counts as stored.
func (r *BridgeRepo) Save(ctx context.Context, p *Patient) error {
	return r.client.Post(ctx, bridge.ActionSavePatient, p)
}
