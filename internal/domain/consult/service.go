package consult

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/remedy"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// Service drives consultation workspaces through the lookup, registration,
// drafting, autocomplete, and completion flow.
type Service struct {
	store    Store
	patients *patient.Service
	visits   *visit.Service
	remedies *remedy.Service
}

func NewService(store Store, patients *patient.Service, visits *visit.Service, remedies *remedy.Service) *Service {
	return &Service{store: store, patients: patients, visits: visits, remedies: remedies}
}

func today() string {
	return time.Now().Format(visit.DateLayout)
}

// Start opens a new workspace with today's date and a seeded draft.
func (s *Service) Start(ctx context.Context) (*Workspace, error) {
	ws := NewWorkspace(uuid.New().String(), today(), time.Now())
	if err := s.store.Create(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Get returns a workspace snapshot.
func (s *Service) Get(ctx context.Context, id string) (*Workspace, error) {
	return s.store.Get(ctx, id)
}

// Discard drops a workspace.
func (s *Service) Discard(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Lookup fetches the patient behind phone and installs them, with their
// visit history, as the workspace's active patient. A clean miss clears the
// active patient and reports found=false so the desk can register instead.
// Bridge failures propagate and leave the workspace untouched.
func (s *Service) Lookup(ctx context.Context, id, phone string) (*Workspace, bool, error) {
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	result, err := s.patients.Lookup(ctx, phone)
	switch {
	case err == nil:
		ws.Patient = &result.Patient
		ws.History = result.History
		if ws.History == nil {
			ws.History = []visit.Visit{}
		}
	case errors.Is(err, patient.ErrNotFound):
		ws.Patient = nil
		ws.History = []visit.Visit{}
	default:
		return nil, false, err
	}

	ws.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, false, err
	}
	return ws, ws.Patient != nil, nil
}

// RegisterPatient saves the patient record and makes it the workspace's
// active patient. Validation failures surface before anything reaches the
// endpoint.
func (s *Service) RegisterPatient(ctx context.Context, id string, p *patient.Patient) (*Workspace, error) {
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.patients.Register(ctx, p); err != nil {
		return nil, err
	}

	ws.Patient = p
	ws.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// UpdateDraft replaces the draft fields wholesale. A blank date keeps the
// one already on the draft.
func (s *Service) UpdateDraft(ctx context.Context, id string, d Draft) (*Workspace, error) {
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.Date == "" {
		d.Date = ws.Draft.Date
	}
	ws.Draft = d
	ws.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Suggest filters the catalog by the draft prescription's trailing segment.
func (s *Service) Suggest(ctx context.Context, id string) ([]remedy.Suggestion, error) {
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.remedies.Search(ctx, ws.Draft.SearchTerm())
}

// ApplyRequest names the remedy being taken into the prescription.
type ApplyRequest struct {
	Name      string `json:"name"`
	Potency   string `json:"potency"`
	Available bool   `json:"available"`
}

// Apply takes a remedy into the draft. An available remedy replaces the
// trailing in-progress segment with its label; an unavailable one leaves the
// prescription untouched. Either way the reference target moves to the
// remedy's materia medica page.
func (s *Service) Apply(ctx context.Context, id string, req ApplyRequest) (*Workspace, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r := remedy.Remedy{Name: req.Name, Potency: req.Potency}
	if req.Available {
		ws.Draft.ApplyLabel(r.Label())
	}
	ws.Reference = r.ReferenceURL()
	ws.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Repeat copies a past visit's prescription into the draft. The visit is
// matched by ID, falling back to its date; histories imported from the sheet
// may not carry IDs.
func (s *Service) Repeat(ctx context.Context, id, visitKey string) (*Workspace, error) {
	if visitKey == "" {
		return nil, fmt.Errorf("visitId is required")
	}
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var past *visit.Visit
	for i := range ws.History {
		if ws.History[i].ID == visitKey {
			past = &ws.History[i]
			break
		}
	}
	if past == nil {
		for i := range ws.History {
			if ws.History[i].Date == visitKey {
				past = &ws.History[i]
				break
			}
		}
	}
	if past == nil {
		return nil, fmt.Errorf("visit %s is not in this workspace's history", visitKey)
	}

	ws.Draft.Prescription = past.Prescription
	ws.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Complete records the draft as a visit for the active patient, then resets
// the workspace to its defaults. The reset happens only after the endpoint
// accepts the save.
func (s *Service) Complete(ctx context.Context, id string) (*Workspace, error) {
	ws, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.Patient == nil {
		return nil, fmt.Errorf("no active patient; search or register first")
	}

	v := visit.Visit{
		PatientPhone: ws.Patient.Phone,
		Date:         ws.Draft.Date,
		Symptoms:     ws.Draft.Symptoms,
		Diagnosis:    ws.Draft.Diagnosis,
		Prescription: ws.Draft.Prescription,
	}
	if err := s.visits.Record(ctx, &v); err != nil {
		return nil, err
	}

	ws.Reset(today())
	ws.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}
