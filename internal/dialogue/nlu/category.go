// Package nlu holds the rule-based readers that turn a user message into an
// intent and slot values. Every matcher runs on textnorm.Normalize output.
package nlu

import (
	"regexp"

	"booking-dialogue/internal/dialogue/textnorm"
	"booking-dialogue/internal/models"
)

type matcher func(text string) bool

func pattern(expr string) matcher {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

func anyOf(ms ...matcher) matcher {
	return func(text string) bool {
		for _, m := range ms {
			if m(text) {
				return true
			}
		}
		return false
	}
}

var (
	kozepRe     = regexp.MustCompile(`kozep`)
	meretSuffix = regexp.MustCompile(`^(?:-| )?meret`)
)

// kozepNotMeret matches "kozep" only where it is not followed by an
// optional separator and "meret" ("kozepes" yes, "kozep-meret" no).
func kozepNotMeret(text string) bool {
	for _, loc := range kozepRe.FindAllStringIndex(text, -1) {
		if !meretSuffix.MatchString(text[loc[1]:]) {
			return true
		}
	}
	return false
}

type categoryRule struct {
	category models.Category
	match    matcher
}

// detectionRules are evaluated in order; the first hit wins.
var detectionRules = []categoryRule{
	{models.CategoryEconomy, pattern(`\beconomy\b`)},
	{models.CategoryEconomy, pattern(`\beco\b`)},
	{models.CategoryEconomy, pattern(`olcso|takarek|varos|varosi|kicsi|mini`)},
	{models.CategoryEconomy, pattern(`fiat 500|yaris|aygo|picanto|i10`)},

	{models.CategoryCompact, pattern(`\bcompact\b`)},
	{models.CategoryCompact, anyOf(pattern(`kompakt|golf|focus|astra|ceed`), kozepNotMeret)},

	{models.CategoryMidSize, pattern(`mid(?:-| )?size|midsize`)},
	{models.CategoryMidSize, pattern(`kozep(?:-| )?meret|kozepmeret|nagyobb mint kompakt|premium`)},
	{models.CategoryMidSize, pattern(`octavia|a4|3-as bmw|bmw 3|passat|mazda 6`)},

	{models.CategorySUV, pattern(`\bsuv\b`)},
	{models.CategorySUV, pattern(`terep|magas ules|csalad|nagy csomagter`)},
	{models.CategorySUV, pattern(`x3|q5|kodiaq|glc|tiguan|sportage|rav4`)},
}

var serviceRules = []categoryRule{
	{models.CategoryEconomy, pattern(`\beconomy\b|^eco$`)},
	{models.CategoryCompact, anyOf(pattern(`\bcompact\b|kompakt`), kozepNotMeret)},
	{models.CategoryMidSize, pattern(`mid(?:-| )?size|kozep(?:-| )?meret|midsize|premium`)},
	{models.CategorySUV, pattern(`\bsuv\b|terep|csalad`)},
}

func firstMatch(rules []categoryRule, normalized string) (models.Category, bool) {
	if normalized == "" {
		return "", false
	}
	for _, r := range rules {
		if r.match(normalized) {
			return r.category, true
		}
	}
	return "", false
}

// DetectCategoryFromText guesses a category from free text using keywords,
// Hungarian descriptors and well-known model names.
func DetectCategoryFromText(text string) (models.Category, bool) {
	return firstMatch(detectionRules, textnorm.Normalize(text))
}

// NormalizeServiceValue maps a spelling variant ("mid size", "Kompakt")
// onto its canonical category.
func NormalizeServiceValue(value string) (models.Category, bool) {
	return firstMatch(serviceRules, textnorm.Normalize(value))
}
