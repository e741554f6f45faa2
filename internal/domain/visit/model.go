package visit

// DateLayout is the wire format for visit dates.
const DateLayout = "2006-01-02"

// Visit is one dated consultation record linked to a patient by phone.
// All narrative fields are free text; the prescription references catalog
// remedies by name only.
type Visit struct {
	ID           string `json:"id,omitempty"`
	PatientPhone string `json:"patientPhone"`
	Date         string `json:"date"`
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
}
