package nlu

import "booking-dialogue/internal/models"

// EnrichNLU returns a copy of n with the service slot normalized.
// An explicit service is replaced only when it normalizes; an unknown value
// is kept as given. A missing service is filled from the message text.
func EnrichNLU(n models.NLUResult, userMessage string) models.NLUResult {
	out := n.Clone()

	if out.Entities.Service != "" {
		if fixed, ok := NormalizeServiceValue(out.Entities.Service); ok {
			out.Entities.Service = string(fixed)
		}
	}

	if out.Entities.Service == "" {
		if detected, ok := DetectCategoryFromText(userMessage); ok {
			out.Entities.Service = string(detected)
		}
	}

	return out
}
