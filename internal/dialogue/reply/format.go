// Package reply renders the markdown-flavored Hungarian replies of the
// booking dialogue. Every function is pure and falls back to fixed text
// when optional catalog data is missing.
package reply

import (
	"strings"

	"booking-dialogue/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNumber groups digits the way hu-HU does.
func FormatNumber(n int) string {
	return message.NewPrinter(language.Hungarian).Sprintf("%d", n)
}

// FormatHUF renders an amount in forints, e.g. "63 000 Ft".
func FormatHUF(n int) string {
	return FormatNumber(n) + " Ft"
}

func formatDaily(n int) string {
	return FormatNumber(n) + " Ft/nap"
}

// categoryLabel returns the display label of a category key.
func categoryLabel(c models.Category) string {
	if c.Valid() {
		return c.Label()
	}
	return cases.Title(language.Hungarian).String(string(c))
}

func bullets(rows []string) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = "• " + r
	}
	return strings.Join(out, "\n")
}
