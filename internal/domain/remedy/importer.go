package remedy

import (
	"strings"

	"github.com/samber/lo"

	"github.com/clinicdesk/clinicdesk/internal/platform/sheets"
)

// Candidate header names per catalog field. Sheets are hand-maintained, so
// each field lists the spellings seen in the wild, most specific first.
var (
	nameColumns        = []string{"Remedy Name", "Name"}
	potencyColumns     = []string{"Potency"}
	boxColumns         = []string{"BOX Number", "Box"}
	sectionColumns     = []string{"Section"}
	typeColumns        = []string{"Remedy Type", "Type"}
	bottleSizeColumns  = []string{"Bottle Size", "Size"}
	bottleTypeColumns  = []string{"Bottle Type"}
	availableColumns   = []string{"Available y/n", "Available"}
	reorderColumns     = []string{"Reorder y/n", "Reorder"}
	reorderDateColumns = []string{"Reorder Date"}
)

// FromTable maps a parsed CSV export to catalog records, one per data row.
// Rows are never dropped: a sheet with N data rows yields N records, with
// unmapped fields left empty.
func FromTable(t *sheets.Table) []Remedy {
	return lo.Map(t.Rows, func(row sheets.Row, _ int) Remedy {
		avail := strings.ToLower(strings.TrimSpace(t.Value(row, availableColumns...)))
		reorder := strings.ToLower(strings.TrimSpace(t.Value(row, reorderColumns...)))

		return Remedy{
			Name:         strings.TrimSpace(t.Value(row, nameColumns...)),
			Potency:      strings.TrimSpace(t.Value(row, potencyColumns...)),
			Box:          strings.TrimSpace(t.Value(row, boxColumns...)),
			Section:      strings.TrimSpace(t.Value(row, sectionColumns...)),
			Type:         strings.TrimSpace(t.Value(row, typeColumns...)),
			BottleSize:   strings.TrimSpace(t.Value(row, bottleSizeColumns...)),
			BottleType:   strings.TrimSpace(t.Value(row, bottleTypeColumns...)),
			Availability: avail,
			Available:    availableValues[avail],
			Reorder:      availableValues[reorder],
			ReorderDate:  strings.TrimSpace(t.Value(row, reorderDateColumns...)),
		}
	})
}
