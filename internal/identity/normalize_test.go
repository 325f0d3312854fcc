package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "John Smith", "john smith"},
		{"punctuation", "Smith, John", "smith john"},
		{"extra whitespace", "  John   Smith ", "john smith"},
		{"mixed case", "JOHN smith", "john smith"},
		{"apostrophe", "O'Brien, Pat", "o brien pat"},
		{"hyphenated", "Mary-Jane Wells", "mary jane wells"},
		{"diacritics", "José Peña", "jose pena"},
		{"empty", "", ""},
		{"punctuation only", "-, .", ""},
		{"digits kept", "Crew 2 Lead", "crew 2 lead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Smith, John", "José Peña", "  A.  B.  C. ", "", "O'Brien"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize(normalize(%q))", in)
	}
}

func TestNormalize_CollidesIdenticalDrivers(t *testing.T) {
	// Two raw spellings of the same driver must produce the same merge key.
	assert.Equal(t, Normalize("Smith, John"), Normalize("smith john"))
	assert.Equal(t, Normalize("JOSÉ PEÑA"), Normalize("jose pena"))
}
