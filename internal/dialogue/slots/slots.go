// Package slots decides which booking details are still missing and how to
// ask for them.
package slots

import (
	"booking-dialogue/internal/models"
)

const (
	questionBothLocations = "Hol vennéd fel az autót, és hol szeretnéd leadni? (lehet ugyanaz is)"
	questionPickup        = "Hol vennéd fel az autót?"
	questionReturn        = "Hol szeretnéd leadni? (lehet ugyanaz is)"

	questionCategory = "Melyik kategóriát választod? (Economy, Compact, Mid-size, SUV)"
	questionDates    = "Mettől meddig bérelnéd? (pl. 2025-10-23 → 2025-10-30)"
	questionContact  = "Add meg az e-mail címedet vagy telefonszámodat a foglaláshoz."
	questionConfirm  = "Megerősíted a fenti adatokat? Írd: **Megerősítem**."
)

// NeedsLocations is true unless both pickup and return are known.
func NeedsLocations(e models.Entities) bool {
	return e.PickupLocation == "" || e.ReturnLocation == ""
}

// NextLocationQuestion returns the question for the missing location slots.
func NextLocationQuestion(e models.Entities) (string, bool) {
	switch {
	case e.PickupLocation == "" && e.ReturnLocation == "":
		return questionBothLocations, true
	case e.PickupLocation == "":
		return questionPickup, true
	case e.ReturnLocation == "":
		return questionReturn, true
	}
	return "", false
}

// HasCategory reports whether a car model or a canonical category is chosen.
func HasCategory(e models.Entities) bool {
	return e.CarModel != "" || models.Category(e.Service).Valid()
}

// HasDates reports whether at least a start date is known.
func HasDates(e models.Entities) bool {
	return e.Date != ""
}

// HasContact reports whether the customer can be reached.
func HasContact(e models.Entities) bool {
	return e.Email != "" || e.Phone != ""
}

// Gated reports whether leaving step requires a slot.
func Gated(step models.StepID) bool {
	switch step {
	case models.StepAskCategory, models.StepAskDates, models.StepAskLocations,
		models.StepAskUserData, models.StepConfirmBooking:
		return true
	}
	return false
}

// Satisfied reports whether the slot guarding step is filled.
// Steps without a gate are always satisfied.
func Satisfied(step models.StepID, e models.Entities) bool {
	switch step {
	case models.StepAskCategory:
		return HasCategory(e)
	case models.StepAskDates:
		return HasDates(e)
	case models.StepAskLocations:
		return !NeedsLocations(e)
	case models.StepAskUserData:
		return HasContact(e)
	case models.StepConfirmBooking:
		return e.Confirmed
	}
	return true
}

// Question returns the prompt for the slot guarding step.
func Question(step models.StepID, e models.Entities) (string, bool) {
	switch step {
	case models.StepAskCategory:
		return questionCategory, true
	case models.StepAskDates:
		return questionDates, true
	case models.StepAskLocations:
		return NextLocationQuestion(e)
	case models.StepAskUserData:
		return questionContact, true
	case models.StepConfirmBooking:
		return questionConfirm, true
	}
	return "", false
}

// Missing lists the booking slots still empty, in the order they are asked.
func Missing(e models.Entities) []string {
	var missing []string
	if !HasCategory(e) {
		missing = append(missing, "service")
	}
	if !HasDates(e) {
		missing = append(missing, "date")
	}
	if e.PickupLocation == "" {
		missing = append(missing, "pickupLocation")
	}
	if e.ReturnLocation == "" {
		missing = append(missing, "returnLocation")
	}
	if !HasContact(e) {
		missing = append(missing, "contact")
	}
	return missing
}
