// internal/models/dialogue.go
package models

import (
	"strings"
	"time"
)

// Category is a canonical rental car category.
type Category string

const (
	CategoryEconomy Category = "economy"
	CategoryCompact Category = "compact"
	CategoryMidSize Category = "mid-size"
	CategorySUV     Category = "suv"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryEconomy, CategoryCompact, CategoryMidSize, CategorySUV}

// Label returns the display label used in replies.
func (c Category) Label() string {
	switch c {
	case CategoryEconomy:
		return "Economy"
	case CategoryCompact:
		return "Compact"
	case CategoryMidSize:
		return "Mid-size"
	case CategorySUV:
		return "SUV"
	}
	return string(c)
}

// Valid reports whether c is one of the four canonical literals.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Intent is the classified user goal for a turn.
type Intent string

const (
	IntentBooking Intent = "booking"
	IntentInquiry Intent = "inquiry"
	IntentUnknown Intent = "unknown"
)

// Intents lists every intent a branch table must resolve.
var Intents = []Intent{IntentBooking, IntentInquiry, IntentUnknown}

// ParseIntent maps free-form intent labels onto the closed set.
// Anything unrecognized becomes IntentUnknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentBooking:
		return IntentBooking
	case IntentInquiry:
		return IntentInquiry
	}
	return IntentUnknown
}

// StepID names a node of a workflow graph.
type StepID string

const (
	StepDetectIntent   StepID = "detect_intent"
	StepShowCategories StepID = "show_categories"
	StepAskCategory    StepID = "ask_category"
	StepAskDates       StepID = "ask_dates"
	StepAskLocations   StepID = "ask_locations"
	StepAskUserData    StepID = "ask_user_data"
	StepConfirmBooking StepID = "confirm_booking"
	StepSaveBooking    StepID = "save_booking"
	StepAnswerInquiry  StepID = "answer_inquiry"
	StepDone           StepID = "done"
)

// Entities is the slot set collected over a conversation.
// Service holds the raw or normalized category value and may be a
// non-canonical string when normalization failed.
type Entities struct {
	Service        string `json:"service,omitempty"`
	CarModel       string `json:"carModel,omitempty"`
	Date           string `json:"date,omitempty"`
	DateEnd        string `json:"dateEnd,omitempty"`
	Days           *int   `json:"days,omitempty"`
	PickupLocation string `json:"pickupLocation,omitempty"`
	ReturnLocation string `json:"returnLocation,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Confirmed      bool   `json:"confirmed,omitempty"`
}

// Clone returns a deep copy.
func (e Entities) Clone() Entities {
	out := e
	if e.Days != nil {
		d := *e.Days
		out.Days = &d
	}
	return out
}

// Merge returns a copy of e with every non-empty field of other applied on top.
func (e Entities) Merge(other Entities) Entities {
	out := e.Clone()
	if other.Service != "" {
		out.Service = other.Service
	}
	if other.CarModel != "" {
		out.CarModel = other.CarModel
	}
	if other.Date != "" {
		out.Date = other.Date
	}
	if other.DateEnd != "" {
		out.DateEnd = other.DateEnd
	}
	if other.Days != nil {
		d := *other.Days
		out.Days = &d
	}
	if other.PickupLocation != "" {
		out.PickupLocation = other.PickupLocation
	}
	if other.ReturnLocation != "" {
		out.ReturnLocation = other.ReturnLocation
	}
	if other.Name != "" {
		out.Name = other.Name
	}
	if other.Email != "" {
		out.Email = other.Email
	}
	if other.Phone != "" {
		out.Phone = other.Phone
	}
	if other.Confirmed {
		out.Confirmed = true
	}
	return out
}

// NLUResult is the structured reading of one user message.
type NLUResult struct {
	Intent         Intent   `json:"intent"`
	Entities       Entities `json:"entities"`
	Clarifications []string `json:"clarifications,omitempty"`
}

// Clone returns a deep copy so callers never share slot or clarification storage.
func (n NLUResult) Clone() NLUResult {
	out := NLUResult{
		Intent:   n.Intent,
		Entities: n.Entities.Clone(),
	}
	if n.Clarifications != nil {
		out.Clarifications = append([]string(nil), n.Clarifications...)
	}
	return out
}

// ConversationState is owned by the caller and round-tripped between turns.
type ConversationState struct {
	ConversationID string    `json:"conversationId,omitempty"`
	AgentType      string    `json:"agentType,omitempty"`
	WorkflowType   string    `json:"workflowType"`
	CurrentStep    StepID    `json:"currentStep"`
	Entities       Entities  `json:"entities"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}
