package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"booking-dialogue/internal/common/validation"
	"booking-dialogue/internal/dialogue/textnorm"
	"booking-dialogue/internal/models"
)

const dateLayout = "2006-01-02"

var (
	datePattern     = regexp.MustCompile(`\b(\d{4})[-./](\d{1,2})[-./](\d{1,2})\b`)
	dayCountPattern = regexp.MustCompile(`\b(\d{1,3})\s*(?:nap|napra|napig|days?)\b`)

	locationSeparator = regexp.MustCompile(`\s*(?:→|->|=>|,|;|\s+és\s+|\s+es\s+|\s+-\s+|\s+to\s+)\s*`)
	arrowSeparator    = regexp.MustCompile(`\s*(?:→|->|=>)\s*`)
	sameAsPickup      = pattern(`ugyanott|ugyanaz|ugyanoda|ugyanitt|same`)
)

// CaptureDates reads ISO-like dates and "N nap" durations from text.
// The first date is the start and the second the end; days is the whole-day
// difference, or the stated duration when only a start is known.
func CaptureDates(text string, e models.Entities) (models.Entities, bool) {
	out := e.Clone()
	captured := false

	var dates []time.Time
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		if d, ok := parseDate(m[1], m[2], m[3]); ok {
			dates = append(dates, d)
		}
	}

	if len(dates) > 0 {
		out.Date = dates[0].Format(dateLayout)
		out.DateEnd = ""
		out.Days = nil
		captured = true
	}
	if len(dates) > 1 && dates[1].After(dates[0]) {
		out.DateEnd = dates[1].Format(dateLayout)
		days := int(dates[1].Sub(dates[0]).Hours() / 24)
		out.Days = &days
	}

	if out.DateEnd == "" {
		if m := dayCountPattern.FindStringSubmatch(textnorm.Normalize(text)); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				out.Days = &n
				captured = true
				if start, err := time.Parse(dateLayout, out.Date); err == nil {
					out.DateEnd = start.AddDate(0, 0, n).Format(dateLayout)
				}
			}
		}
	}

	return out, captured
}

func parseDate(y, m, d string) (time.Time, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	t, err := time.Parse(dateLayout, fmt.Sprintf("%04d-%02d-%02d", year, month, day))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CaptureLocations fills pickup and return locations from an answer such as
// "Budapest → Debrecen", "Budapest, ugyanott" or a single place name.
// Values fill the first missing slot; "ugyanott" copies the pickup location.
func CaptureLocations(text string, e models.Entities) (models.Entities, bool) {
	out := e.Clone()
	captured := false

	// an arrow marks the pickup/return boundary; commas around it belong to
	// the place names
	separator := locationSeparator
	if arrowSeparator.MatchString(text) {
		separator = arrowSeparator
	}

	for _, part := range separator.Split(strings.TrimSpace(text), -1) {
		part = strings.Trim(part, " .!?\"'")
		if part == "" {
			continue
		}

		if sameAsPickup(textnorm.Normalize(part)) {
			if out.PickupLocation != "" && out.ReturnLocation == "" {
				out.ReturnLocation = out.PickupLocation
				captured = true
			}
			continue
		}

		switch {
		case out.PickupLocation == "":
			out.PickupLocation = part
			captured = true
		case out.ReturnLocation == "":
			out.ReturnLocation = part
			captured = true
		}
	}

	return out, captured
}

// CaptureContact extracts an email address and a phone number.
func CaptureContact(text string, e models.Entities) (models.Entities, bool) {
	out := e.Clone()
	captured := false

	if email, ok := validation.ExtractEmail(text); ok {
		out.Email = email
		captured = true
	}
	if phone, ok := validation.ExtractPhone(text); ok {
		out.Phone = phone
		captured = true
	}

	return out, captured
}

// MatchVehicle finds a vehicle from the inventory named in text, searching
// categories in display order. Brand and model together always match; a
// model alone only when it has at least three letters, so "500" or "i10"
// in a phone number or street name is not read as a car.
func MatchVehicle(text string, inv models.Inventory) (models.Category, models.Vehicle, bool) {
	t := textnorm.Normalize(text)
	if t == "" {
		return "", models.Vehicle{}, false
	}
	for _, c := range models.Categories {
		for _, v := range inv[c] {
			model := textnorm.Normalize(v.Model)
			if model == "" {
				continue
			}
			if strings.Contains(t, textnorm.Normalize(v.Brand+" "+v.Model)) {
				return c, v, true
			}
			if distinctiveModel(model) && containsWord(t, model) {
				return c, v, true
			}
		}
	}
	return "", models.Vehicle{}, false
}

func distinctiveModel(model string) bool {
	letters := 0
	for _, r := range model {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

func containsWord(text, word string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
