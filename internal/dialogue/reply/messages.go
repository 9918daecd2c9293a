package reply

import (
	"strings"

	"booking-dialogue/internal/models"
)

const (
	Greeting      = "Miben segíthetek? 😊"
	NotUnderstood = "Sajnálom, nem értettem. Miben segíthetek? 😊"
	ClarifyIntent = "Kérlek, írd le, hogy bérelni szeretnél-e, vagy csak érdeklődsz."
	Closing       = "Köszönöm, hogy nálunk foglaltál! Ha bármi kérdésed van, írj bátran. 😊"
	headerSaved   = "**Foglalás rögzítve**"
	savedFollowUp = "A visszaigazolást hamarosan elküldjük a megadott elérhetőségre."

	// BookingNotRecorded answers a confirmation that could not be stored.
	BookingNotRecorded = "Sajnálom, a foglalást most nem sikerült rögzíteni. Kérlek, erősítsd meg újra egy kis idő múlva."
)

// BookingSaved renders the final summary after the booking was stored.
// reference may be empty when persistence happens outside the dialogue.
func BookingSaved(n models.NLUResult, price *int, reference string) string {
	summary := FormatBookingReply("", models.NLUResult{Entities: n.Entities}, price)
	body := strings.SplitN(summary, "\n\n"+headerNextStep, 2)[0]
	body = strings.TrimPrefix(body, headerSummary)

	lines := []string{headerSaved}
	if reference != "" {
		lines = append(lines, "", "Foglalási azonosító: **"+reference+"**")
	}
	if strings.TrimSpace(body) != "" {
		lines = append(lines, "", strings.TrimSpace(body))
	}
	lines = append(lines, "", savedFollowUp)
	return strings.Join(lines, "\n")
}
