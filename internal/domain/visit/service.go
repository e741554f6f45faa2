package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/websocket"
)

type Service struct {
	visits Repository
	events websocket.EventPublisher
}

func NewService(visits Repository) *Service {
	return &Service{visits: visits}
}

// SetEventPublisher attaches an optional event feed for visit.saved events.
func (s *Service) SetEventPublisher(events websocket.EventPublisher) {
	s.events = events
}

// Record validates and stores one consultation visit. The date defaults to
// today and an ID is stamped when the caller did not provide one.
func (s *Service) Record(ctx context.Context, v *Visit) error {
	if v.PatientPhone == "" {
		return fmt.Errorf("patientPhone is required")
	}
	if v.Date == "" {
		v.Date = time.Now().Format(DateLayout)
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	if err := s.visits.Save(ctx, v); err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, websocket.NewEvent("visit.saved", websocket.TopicVisits, v.ID, v))
	}
	return nil
}
