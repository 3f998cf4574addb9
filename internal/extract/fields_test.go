package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptSalary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"euro amount", "45 000 € / an", "45 000 € / an"},
		{"k notation", "40-45k€", "40-45k€"},
		{"monthly", "3 200 € / mois", "3 200 € / mois"},
		{"range wording", "entre 38 000 et 45 000 euros", "entre 38 000 et 45 000 euros"},
		{"english yearly", "55,000 EUR /year", "55,000 EUR /year"},
		{"number without marker", "39 heures", ""},
		{"marker without number", "salaire attractif", ""},
		{"plain text", "CDI temps plein", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, acceptSalary(tt.in))
		})
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantCity string
		wantDept string
	}{
		{"city dash department", "Paris - 75", "Paris", "75"},
		{"en dash", "Lyon – 69", "Lyon", "69"},
		{"multi word city", "Boulogne-Billancourt - 92", "Boulogne-Billancourt", "92"},
		{"city only", "Nantes", "Nantes", ""},
		{"no two-digit suffix", "Paris - France", "Paris - France", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, dept := splitLocation(tt.in)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantDept, dept)
		})
	}
}

func TestLabeledField(t *testing.T) {
	text := "Poste: Développeur Go Entreprise: Acme Lieu: Paris - 75"

	assert.Equal(t, "Développeur Go", labeledField(text, "Poste"))
	assert.Equal(t, "Acme", labeledField(text, "Entreprise"))
	assert.Equal(t, "", labeledField(text, "Salaire"))
	// First matching label wins
	assert.Equal(t, "Développeur Go", labeledField(text, "Poste", "Entreprise"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", normalizeText("  a \n\t b   c  "))
	assert.Equal(t, "", normalizeText("   "))
}
