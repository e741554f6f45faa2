package remedy

import (
	"strings"
	"testing"
)

func TestRemedy_Label(t *testing.T) {
	r := Remedy{Name: "Arnica Montana", Potency: "200"}
	if r.Label() != "Arnica Montana 200" {
		t.Errorf("expected %q, got %q", "Arnica Montana 200", r.Label())
	}
}

func TestRemedy_Label_NoPotency(t *testing.T) {
	r := Remedy{Name: "Arnica Montana"}
	if r.Label() != "Arnica Montana" {
		t.Errorf("expected trailing space trimmed, got %q", r.Label())
	}
}

func TestRemedy_ReferenceURL(t *testing.T) {
	tests := []struct {
		name string
		slug string
	}{
		{"Arnica Montana", "arnica-montana"},
		{"Nux Vomica", "nux-vomica"},
		{"Calc. Carb", "calc-carb"},
		{"Rhus Tox.", "rhus-tox"},
		{"  Belladonna  ", "belladonna"},
		{"Kali Bichromicum (Bich)", "kali-bichromicum-bich"},
		{"Ferrum Phos 6X", "ferrum-phos-6x"},
	}
	for _, tt := range tests {
		r := Remedy{Name: tt.name}
		got := r.ReferenceURL()
		if !strings.HasPrefix(got, ReferenceBaseURL) {
			t.Errorf("%q: expected prefix %q, got %q", tt.name, ReferenceBaseURL, got)
		}
		if got != ReferenceBaseURL+tt.slug {
			t.Errorf("%q: expected slug %q, got %q", tt.name, tt.slug, got)
		}
	}
}

func TestRemedy_ReferenceURL_EmptyName(t *testing.T) {
	r := Remedy{}
	if r.ReferenceURL() != ReferenceBaseURL {
		t.Errorf("expected bare base URL for empty name, got %q", r.ReferenceURL())
	}
}
