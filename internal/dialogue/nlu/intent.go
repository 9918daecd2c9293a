package nlu

import (
	"booking-dialogue/internal/dialogue/textnorm"
	"booking-dialogue/internal/models"
)

var (
	bookingWords = pattern(`berel|berles|berlet|foglal|kolcsonoz|\bbook|\brent\b|\brental\b|reserv|autot szeretnek|szeretnek egy autot`)
	inquiryWords = pattern(`mennyi|mennyibe|\bar\b|\barak\b|araz|kerdes|erdeklod|milyen|informacio|ajanl|javasol|\binfo\b|\bprice\b|\bhow\b|\?`)

	recommendWords = pattern(`ajanl|javasol|recommend|melyik|mit valasszak|segits valasztani`)
	confirmWords   = pattern(`megerosit|\bigen\b|\brendben\b|\bok\b|\bokay\b|\bmehet\b|\bjo\b|\bconfirm|\byes\b`)
	rejectWords    = pattern(`\bnem\b|\bmegse\b|\bno\b|\bcancel`)
)

// DetectIntent classifies a message with keyword rules.
// Booking words win over question words.
func DetectIntent(text string) models.Intent {
	t := textnorm.Normalize(text)
	switch {
	case t == "":
		return models.IntentUnknown
	case bookingWords(t):
		return models.IntentBooking
	case inquiryWords(t):
		return models.IntentInquiry
	}
	return models.IntentUnknown
}

// WantsRecommendation reports whether the user asks the assistant to pick a car.
func WantsRecommendation(text string) bool {
	return recommendWords(textnorm.Normalize(text))
}

// IsConfirmation reports an affirmative answer that carries no negation.
func IsConfirmation(text string) bool {
	t := textnorm.Normalize(text)
	return confirmWords(t) && !rejectWords(t)
}
