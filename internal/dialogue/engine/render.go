package engine

import (
	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/dialogue/pricing"
	"booking-dialogue/internal/dialogue/reply"
	"booking-dialogue/internal/dialogue/slots"
	"booking-dialogue/internal/dialogue/workflow"
	"booking-dialogue/internal/models"
)

type renderInput struct {
	agentType string
	step      models.StepID
	fallback  workflow.Fallback
	message   string
	turn      models.NLUResult
	entities  models.Entities
	quote     *pricing.Quote
	catalog   Catalog
	reference string
}

// render picks the reply template for the step the turn ended on.
func render(in renderInput) (string, []string) {
	var price *int
	if in.quote != nil {
		p := in.quote.Price
		price = &p
	}
	summary := models.NLUResult{Intent: in.turn.Intent, Entities: in.entities}

	switch in.step {
	case models.StepDetectIntent:
		if in.turn.Intent == models.IntentUnknown {
			return reply.NotUnderstood, []string{reply.ClarifyIntent}
		}
		return reply.Greeting, nil

	case models.StepShowCategories, models.StepAnswerInquiry:
		return catalogReply(in), nil

	case models.StepAskCategory:
		q, _ := slots.Question(in.step, in.entities)
		return catalogReply(in), []string{q}

	case models.StepSaveBooking:
		return reply.BookingSaved(summary, price, in.reference), nil

	case models.StepDone:
		return reply.Closing, nil
	}

	clarifications := in.turn.Clarifications
	if q, ok := slots.Question(in.step, in.entities); ok {
		clarifications = append([]string{q}, in.turn.Clarifications...)
	}
	summary.Clarifications = clarifications
	return reply.FormatBookingReply(in.agentType, summary, price), clarifications
}

func catalogReply(in renderInput) string {
	if nlu.WantsRecommendation(in.message) {
		return reply.RecommendCar(in.catalog.Pricing, in.catalog.Inventory, in.message)
	}
	return reply.ListCarCategories(in.catalog.Pricing, in.catalog.Inventory)
}
