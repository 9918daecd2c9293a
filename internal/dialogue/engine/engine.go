// Package engine runs one dialogue turn: it reads the user message, fills
// booking slots, moves the conversation through its workflow and renders the
// reply. A turn is a pure function of its input.
package engine

import (
	"strings"

	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/dialogue/pricing"
	"booking-dialogue/internal/dialogue/slots"
	"booking-dialogue/internal/dialogue/workflow"
	"booking-dialogue/internal/models"
)

// FallbackSlotMissing reports a turn that stayed on a step because its slot
// is still empty.
const FallbackSlotMissing workflow.Fallback = "slot_missing"

// Catalog is the read-only agent data a turn may consult.
type Catalog struct {
	Pricing   *models.PricingCatalog
	Inventory models.Inventory
}

// TurnInput is everything a turn depends on.
type TurnInput struct {
	AgentType   string
	State       models.ConversationState
	UserMessage string
	// NLU holds an externally computed reading of the message. Its entities
	// win over the ones detected from the text.
	NLU     *models.NLUResult
	Catalog Catalog
	// BookingReference is shown in the reply when the turn reaches the
	// save step.
	BookingReference string
}

// TurnResult is the outcome of a turn. State is ready to be stored for the
// next turn. BookingReady is set once the conversation reaches the save step
// and the caller should persist the booking.
type TurnResult struct {
	Reply          string                   `json:"reply"`
	NextStep       models.StepID            `json:"nextStep"`
	Intent         models.Intent            `json:"intent"`
	Entities       models.Entities          `json:"entities"`
	Clarifications []string                 `json:"clarifications,omitempty"`
	Quote          *pricing.Quote           `json:"quote,omitempty"`
	Fallback       workflow.Fallback        `json:"fallback,omitempty"`
	BookingReady   bool                     `json:"bookingReady,omitempty"`
	State          models.ConversationState `json:"state"`
}

// Engine is safe for concurrent use; it only reads its registry.
type Engine struct {
	registry *workflow.Registry
}

// New returns an engine over registry, or over the built-in workflows when
// registry is nil.
func New(registry *workflow.Registry) *Engine {
	if registry == nil {
		registry = workflow.DefaultRegistry()
	}
	return &Engine{registry: registry}
}

// Registry returns the workflows the engine resolves against.
func (e *Engine) Registry() *workflow.Registry {
	return e.registry
}

// ProcessTurn advances the conversation by one user message.
func (e *Engine) ProcessTurn(in TurnInput) TurnResult {
	wf, fallback := e.registry.Lookup(in.State.WorkflowType)
	workflowType := in.State.WorkflowType
	if fallback == workflow.FallbackUnknownWorkflow {
		workflowType = e.registry.DefaultType()
	}

	agentType := firstNonEmpty(in.AgentType, in.State.AgentType, workflowType)

	current := in.State.CurrentStep
	entities := in.State.Entities.Clone()
	if current == "" {
		current = wf.Start()
	}
	if current == models.StepDone {
		current = wf.Start()
		entities.Confirmed = false
	}

	explicit := explicitService(in.NLU)
	turn := readMessage(in)
	if !explicit && !choosesCategory(current) {
		turn.Entities.Service = keepCategory(entities.Service, turn.Entities.Service, in.UserMessage)
	}
	previous := entities.Service
	entities = entities.Merge(turn.Entities)
	if entities.Service != previous && turn.Entities.CarModel == "" {
		entities.CarModel = ""
	}
	entities = captureSlots(current, in.UserMessage, entities, in.Catalog.Inventory, explicit)

	var next models.StepID
	if wf.Has(current) && slots.Gated(current) && !slots.Satisfied(current, entities) {
		next = current
		fallback = firstFallback(fallback, FallbackSlotMissing)
	} else {
		var resolved workflow.Fallback
		next, resolved = wf.Resolve(current, turn.Intent)
		fallback = firstFallback(fallback, resolved)
		next = skipFilled(wf, next, turn.Intent, entities)
	}

	quote, _ := pricing.QuoteForEntities(agentType, in.Catalog.Pricing, entities)

	res := TurnResult{
		NextStep: next,
		Intent:   turn.Intent,
		Entities: entities,
		Quote:    quote,
		Fallback: fallback,
	}
	res.Reply, res.Clarifications = render(renderInput{
		agentType: agentType,
		step:      next,
		fallback:  fallback,
		message:   in.UserMessage,
		turn:      turn,
		entities:  entities,
		quote:     quote,
		catalog:   in.Catalog,
		reference: in.BookingReference,
	})
	res.BookingReady = next == models.StepSaveBooking
	res.State = models.ConversationState{
		ConversationID: in.State.ConversationID,
		AgentType:      agentType,
		WorkflowType:   workflowType,
		CurrentStep:    next,
		Entities:       entities,
	}
	return res
}

// readMessage combines the external reading of the message, if any, with
// the rule-based one.
func readMessage(in TurnInput) models.NLUResult {
	var given models.NLUResult
	if in.NLU != nil {
		given = *in.NLU
	}
	out := nlu.EnrichNLU(given, in.UserMessage)

	switch intent := models.ParseIntent(string(given.Intent)); intent {
	case models.IntentBooking, models.IntentInquiry:
		out.Intent = intent
	default:
		out.Intent = nlu.DetectIntent(in.UserMessage)
	}

	// naming a category is enough to start a booking
	if out.Intent == models.IntentUnknown && models.Category(out.Entities.Service).Valid() {
		out.Intent = models.IntentBooking
	}
	return out
}

// captureSlots reads free-form answers that only make sense at step.
// Vehicle names are only looked for while the category is being chosen, and
// never when the caller named the category.
func captureSlots(step models.StepID, message string, e models.Entities, inv models.Inventory, explicit bool) models.Entities {
	e, _ = nlu.CaptureDates(message, e)

	if !explicit && choosesCategory(step) {
		if category, vehicle, ok := nlu.MatchVehicle(message, inv); ok {
			e = pickVehicle(e, category, vehicle)
		}
	}

	switch step {
	case models.StepAskLocations:
		e, _ = nlu.CaptureLocations(message, e)
	case models.StepAskUserData:
		e, _ = nlu.CaptureContact(message, e)
	case models.StepConfirmBooking:
		if nlu.IsConfirmation(message) {
			e.Confirmed = true
		}
	}
	return e
}

func choosesCategory(step models.StepID) bool {
	switch step {
	case models.StepDetectIntent, models.StepShowCategories, models.StepAskCategory:
		return true
	}
	return false
}

// pickVehicle records a named vehicle. A known category is kept; the
// vehicle is only taken when it belongs to it.
func pickVehicle(e models.Entities, category models.Category, vehicle models.Vehicle) models.Entities {
	if current := models.Category(e.Service); current.Valid() && current != category {
		return e
	}
	e.CarModel = vehicle.Brand + " " + vehicle.Model
	e.Service = string(category)
	return e
}

// keepCategory decides the service a later-step message may set. Once a
// category is known, only a category word ("inkább kompakt") changes it;
// model names and hints inside addresses or phone numbers do not.
func keepCategory(known, detected, message string) string {
	if detected == "" || detected == known || !models.Category(known).Valid() {
		return detected
	}
	if named, ok := nlu.NormalizeServiceValue(message); ok && string(named) == detected {
		return detected
	}
	return known
}

// explicitService reports whether the caller's NLU names a recognizable
// category.
func explicitService(given *models.NLUResult) bool {
	if given == nil || given.Entities.Service == "" {
		return false
	}
	_, ok := nlu.NormalizeServiceValue(given.Entities.Service)
	return ok
}

// skipFilled moves past steps whose slot is already known. The walk is
// bounded by the number of steps so a cyclic definition cannot loop.
func skipFilled(wf *workflow.Workflow, step models.StepID, intent models.Intent, e models.Entities) models.StepID {
	for i, n := 0, len(wf.Steps()); i < n; i++ {
		if !skippable(step, e) {
			return step
		}
		step = wf.NextStep(step, intent)
	}
	return step
}

func skippable(step models.StepID, e models.Entities) bool {
	if step == models.StepShowCategories {
		return slots.HasCategory(e)
	}
	return slots.Gated(step) && slots.Satisfied(step, e)
}

func firstFallback(current, next workflow.Fallback) workflow.Fallback {
	if current != workflow.FallbackNone {
		return current
	}
	return next
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
