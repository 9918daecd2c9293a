// internal/workers/dialogue/process-dialogue-turn/models.go
package processdialogueturn

import (
	"booking-dialogue/internal/dialogue/pricing"
	"booking-dialogue/internal/models"
)

// Input is one user message together with the conversation variables of
// the process instance. Pricing and Inventory override the agent catalog.
type Input struct {
	ConversationID string                 `json:"conversationId"`
	AgentType      string                 `json:"agentType"`
	WorkflowType   string                 `json:"workflowType"`
	CurrentStep    models.StepID          `json:"currentStep"`
	Entities       models.Entities        `json:"entities"`
	UserMessage    string                 `json:"userMessage"`
	NLU            *models.NLUResult      `json:"nlu,omitempty"`
	Pricing        *models.PricingCatalog `json:"pricing,omitempty"`
	Inventory      models.Inventory       `json:"inventory,omitempty"`
	BookingID      string                 `json:"bookingId,omitempty"`
}

// Output is merged back into the process variables, so currentStep and
// entities feed the next turn.
type Output struct {
	Reply          string          `json:"reply"`
	Intent         models.Intent   `json:"intent"`
	NextStep       models.StepID   `json:"nextStep"`
	CurrentStep    models.StepID   `json:"currentStep"`
	WorkflowType   string          `json:"workflowType"`
	Entities       models.Entities `json:"entities"`
	Clarifications []string        `json:"clarifications"`
	Quote          *pricing.Quote  `json:"quote"`
	Fallback       string          `json:"fallback"`
	BookingReady   bool            `json:"bookingReady"`
	BookingID      string          `json:"bookingId,omitempty"`
}
