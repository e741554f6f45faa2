package remedy

import "strings"

// ReferenceBaseURL is the materia medica index remedies link out to.
const ReferenceBaseURL = "https://www.materiamedica.info/en/materia-medica/john-henry-clarke/"

// Remedy is one row of the stocked-remedies catalog sheet.
type Remedy struct {
	Name         string `json:"name"`
	Potency      string `json:"potency"`
	Box          string `json:"box"`
	Section      string `json:"section,omitempty"`
	Type         string `json:"type,omitempty"`
	BottleSize   string `json:"bottleSize,omitempty"`
	BottleType   string `json:"bottleType,omitempty"`
	Availability string `json:"availability"`
	Available    bool   `json:"available"`
	Reorder      bool   `json:"reorder,omitempty"`
	ReorderDate  string `json:"reorderDate,omitempty"`
}

// Availability cell values that count as in stock, lowercased and trimmed.
var availableValues = map[string]bool{
	"y":         true,
	"yes":       true,
	"1":         true,
	"available": true,
	"true":      true,
}

// Label is the form a remedy takes inside a prescription: "Name Potency".
func (r Remedy) Label() string {
	return strings.TrimSpace(r.Name + " " + r.Potency)
}

// ReferenceURL is the materia medica page for this remedy.
func (r Remedy) ReferenceURL() string {
	return ReferenceBaseURL + slugify(r.Name)
}

// Suggestion is one autocomplete hit for a prescription in progress.
type Suggestion struct {
	Remedy
	Label     string `json:"label"`
	Reference string `json:"reference"`
}

// SyncResult reports a completed catalog sync.
type SyncResult struct {
	Count int    `json:"count"`
	URL   string `json:"url"`
}

// slugify lowercases a remedy name and collapses runs of non-alphanumerics
// into single hyphens, matching the reference site's URL scheme.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
