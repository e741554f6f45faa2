package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/internal/platform/websocket"
)

type Service struct {
	patients Repository
	events   websocket.EventPublisher
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// SetEventPublisher attaches an optional event feed for patient.saved events.
func (s *Service) SetEventPublisher(events websocket.EventPublisher) {
	s.events = events
}

// Lookup fetches a patient and their visit history by phone number.
func (s *Service) Lookup(ctx context.Context, phone string) (*LookupResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	return s.patients.Lookup(ctx, phone)
}

// Register validates and stores a patient record. All required fields are
// checked before anything goes over the wire; an invalid registration never
// reaches the endpoint. Records are overwritten wholesale, so registering an
// existing phone number updates that patient.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if missing := p.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !validSexes[p.Sex] {
		return fmt.Errorf("invalid sex: %s", p.Sex)
	}
	if p.Age < 0 || p.Age > 120 {
		return fmt.Errorf("age out of range: %d", p.Age)
	}
	if p.DOB != "" {
		if _, err := time.Parse(visit.DateLayout, p.DOB); err != nil {
			return fmt.Errorf("invalid dob: %s", p.DOB)
		}
	}
	if p.State == "" {
		p.State = DefaultState
	}

	if err := s.patients.Save(ctx, p); err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, websocket.NewEvent("patient.saved", websocket.TopicPatients, p.Phone, p))
	}
	return nil
}
