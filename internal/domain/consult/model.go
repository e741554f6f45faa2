package consult

import (
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/remedy"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// Draft is the in-progress visit being composed inside a workspace.
type Draft struct {
	Date         string `json:"date"`
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
}

// NewDraft returns an empty draft for the given date. The symptoms field is
// seeded "<date>; ", matching how consultation notes are written.
func NewDraft(date string) Draft {
	return Draft{Date: date, Symptoms: date + "; "}
}

// SearchTerm is the in-progress fragment of the prescription: whatever
// follows the last comma, trimmed. An empty term means nothing to search.
func (d Draft) SearchTerm() string {
	parts := strings.Split(d.Prescription, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// ApplyLabel rewrites the prescription so the trailing in-progress segment
// becomes " <label>", appending a new segment when the trailing one is
// blank, then reopens the field with ", " for the next entry.
func (d *Draft) ApplyLabel(label string) {
	parts := strings.Split(d.Prescription, ",")
	if strings.TrimSpace(parts[len(parts)-1]) != "" {
		parts[len(parts)-1] = " " + label
	} else {
		parts = append(parts, " "+label)
	}
	d.Prescription = strings.TrimSpace(strings.Join(parts, ",")) + ", "
}

// Workspace is one consultation session: the active patient (if any), their
// visit history, the draft under composition, and the current reference
// lookup target.
type Workspace struct {
	ID        string           `json:"id"`
	Patient   *patient.Patient `json:"patient,omitempty"`
	History   []visit.Visit    `json:"history"`
	Draft     Draft            `json:"draft"`
	Reference string           `json:"reference"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewWorkspace returns a fresh workspace seeded for the given date.
func NewWorkspace(id, date string, now time.Time) *Workspace {
	return &Workspace{
		ID:        id,
		History:   []visit.Visit{},
		Draft:     NewDraft(date),
		Reference: remedy.ReferenceBaseURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset returns the workspace to its initial defaults: no active patient, no
// history, a freshly seeded draft, and the base reference target.
func (w *Workspace) Reset(date string) {
	w.Patient = nil
	w.History = []visit.Visit{}
	w.Draft = NewDraft(date)
	w.Reference = remedy.ReferenceBaseURL
}

// clone returns a copy safe to hand across goroutines.
func (w *Workspace) clone() *Workspace {
	c := *w
	if w.Patient != nil {
		p := *w.Patient
		c.Patient = &p
	}
	c.History = append([]visit.Visit{}, w.History...)
	return &c
}
