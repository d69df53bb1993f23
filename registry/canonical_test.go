package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		surface string
		want    string
	}{
		{"lowercase", "Photosynthesis", "photosynthesis"},
		{"whitespace collapse", "  cell   division ", "cell_division"},
		{"hyphen as separator", "Krebs-cycle", "krebs_cycle"},
		{"diacritics stripped", "Fotosíntesis", "fotosintesis"},
		{"punctuation dropped", "it's", "its"},
		{"mixed", "Déjà,  Vu!", "deja_vu"},
		{"digits kept", "ATP synthase 2", "atp_synthase_2"},
		{"pure punctuation", "?!...", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalize(tt.surface))
		})
	}
}
