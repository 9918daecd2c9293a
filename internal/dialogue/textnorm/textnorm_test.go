package textnorm

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "ascii lower-cased", input: "SUV Golf", expected: "suv golf"},
		{name: "acute accents", input: "Olcsó Városi", expected: "olcso varosi"},
		{name: "double acute", input: "ŐRÜLT Űr", expected: "orult ur"},
		{name: "compound word", input: "Középméretű", expected: "kozepmeretu"},
		{name: "punctuation kept", input: "közép-méret, prémium!", expected: "kozep-meret, premium!"},
		{name: "arrows kept", input: "2025-10-23 → 2025-10-30", expected: "2025-10-23 → 2025-10-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Családi autó", "nagy csomagtér", "Hol vennéd fel?"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_NoMarksNoUpperCase(t *testing.T) {
	inputs := []string{
		"Szeretnék egy golf-ot bérelni",
		"ÁRVÍZTŰRŐ TÜKÖRFÚRÓGÉP",
		"e\u0301 a\u0308 o\u030b",
		"\u0300\u036f",
		"İstanbul ΣΟΦΙΑ Ǆungla",
		"Crème Brûlée à la carte",
		"\xff\xfeKÖZÉP\xc3",
		"日本語 テキスト",
	}

	for _, in := range inputs {
		out := Normalize(in)
		for _, r := range out {
			assert.False(t, r >= 0x0300 && r <= 0x036f, "%q kept mark %U", in, r)
			assert.Equal(t, unicode.ToLower(r), r, "%q kept upper-case %q", in, r)
		}
	}
}
