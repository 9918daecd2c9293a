package reply

import (
	"fmt"
	"strconv"
	"strings"

	"booking-dialogue/internal/models"
)

const (
	headerSummary  = "**Foglalási összefoglaló**"
	headerNextStep = "**Következő lépés**"
	confirmPrompt  = "Megerősíted a fenti adatokat? Írd: **Megerősítem**."
)

// FormatBookingReply renders the booking summary with only the fields that
// are present, followed by the first clarification or a confirmation prompt.
// agentType is accepted for per-agent layouts; the car rental layout is the
// only one today.
func FormatBookingReply(agentType string, n models.NLUResult, price *int) string {
	e := n.Entities
	lines := []string{headerSummary, ""}

	var rows []string
	switch {
	case e.CarModel != "":
		rows = append(rows, "**Autó**: "+e.CarModel)
	case e.Service != "":
		rows = append(rows, "**Kategória**: "+strings.ToUpper(e.Service))
	}

	switch {
	case e.Date != "" && e.DateEnd != "":
		days := "?"
		if e.Days != nil {
			days = strconv.Itoa(*e.Days)
		}
		rows = append(rows, fmt.Sprintf("**Időtartam**: %s → %s (%s nap)", e.Date, e.DateEnd, days))
	case e.Date != "":
		rows = append(rows, "**Dátum**: "+e.Date)
	}

	if e.PickupLocation != "" {
		rows = append(rows, "**Átvétel**: "+e.PickupLocation)
	}
	if e.ReturnLocation != "" {
		rows = append(rows, "**Leadás**: "+e.ReturnLocation)
	}
	if price != nil {
		rows = append(rows, "**Becsült ár**: "+FormatHUF(*price))
	}

	if len(rows) > 0 {
		lines = append(lines, bullets(rows))
	}
	lines = append(lines, "", headerNextStep)

	if len(n.Clarifications) > 0 {
		lines = append(lines, "– "+n.Clarifications[0])
	} else {
		lines = append(lines, "– "+confirmPrompt)
	}

	return strings.Join(lines, "\n")
}
