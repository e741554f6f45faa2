package patient

import "strings"

// DefaultState is stamped on registrations that do not specify a state.
const DefaultState = "CA"

// Patient is a clinic client record keyed by phone number. The field names
// mirror the scripting endpoint's savePatient payload.
type Patient struct {
	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Sex       string `json:"sex"`
	City      string `json:"city"`
	State     string `json:"state"`
	DOB       string `json:"dob"` // YYYY-MM-DD, empty when unknown
	Age       int    `json:"age"` // used when DOB is unknown
}

var validSexes = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

// MissingRequired lists the required registration fields that are empty, in
// form order. Registration is blocked while any are missing.
func (p Patient) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(p.FirstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(p.Sex) == "" {
		missing = append(missing, "sex")
	}
	if strings.TrimSpace(p.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// DisplayName is the patient's name as shown on the active-patient card.
func (p Patient) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
