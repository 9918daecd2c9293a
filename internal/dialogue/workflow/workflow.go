package workflow

import (
	"errors"
	"fmt"
	"sort"

	"booking-dialogue/internal/models"
)

// ErrInvalidDefinition is returned when a definition cannot be compiled.
var ErrInvalidDefinition = errors.New("WORKFLOW_DEFINITION_INVALID")

// Fallback names the recovery applied while resolving a transition.
type Fallback string

const (
	FallbackNone            Fallback = ""
	FallbackUnknownWorkflow Fallback = "unknown_workflow"
	FallbackUnknownStep     Fallback = "unknown_step"
	FallbackUnknownIntent   Fallback = "unknown_intent"
)

type stepKind int

const (
	kindTerminal stepKind = iota
	kindFixed
	kindBranch
)

type step struct {
	kind stepKind
	next models.StepID
	// table is exhaustive over models.Intents for branch steps.
	table map[models.Intent]models.StepID
	// explicit records which intents the definition named.
	explicit map[models.Intent]bool
}

// Workflow is a compiled, immutable Definition.
type Workflow struct {
	name  string
	start models.StepID
	steps map[models.StepID]step
}

// Compile validates def and builds its transition tables.
func Compile(def Definition) (*Workflow, error) {
	if def.Start == "" {
		return nil, fmt.Errorf("%w: %s: start step is required", ErrInvalidDefinition, def.Name)
	}
	if _, ok := def.Steps[def.Start]; !ok {
		return nil, fmt.Errorf("%w: %s: start step %q is not defined", ErrInvalidDefinition, def.Name, def.Start)
	}

	w := &Workflow{
		name:  def.Name,
		start: def.Start,
		steps: make(map[models.StepID]step, len(def.Steps)),
	}

	checkTarget := func(from, to models.StepID) error {
		if _, ok := def.Steps[to]; !ok {
			return fmt.Errorf("%w: %s: step %q points to undefined step %q", ErrInvalidDefinition, def.Name, from, to)
		}
		return nil
	}

	for id, sd := range def.Steps {
		switch {
		case sd == nil || sd.Next == nil || (sd.Next.Step == "" && len(sd.Next.Branches) == 0):
			w.steps[id] = step{kind: kindTerminal}

		case len(sd.Next.Branches) > 0:
			unknownTarget, ok := sd.Next.Branches[models.IntentUnknown]
			if !ok {
				return nil, fmt.Errorf("%w: %s: branch step %q has no %q entry", ErrInvalidDefinition, def.Name, id, models.IntentUnknown)
			}
			table := make(map[models.Intent]models.StepID, len(models.Intents))
			explicit := make(map[models.Intent]bool, len(sd.Next.Branches))
			for intent, target := range sd.Next.Branches {
				if models.ParseIntent(string(intent)) != intent {
					return nil, fmt.Errorf("%w: %s: step %q branches on unsupported intent %q", ErrInvalidDefinition, def.Name, id, intent)
				}
				if err := checkTarget(id, target); err != nil {
					return nil, err
				}
				table[intent] = target
				explicit[intent] = true
			}
			for _, intent := range models.Intents {
				if _, ok := table[intent]; !ok {
					table[intent] = unknownTarget
				}
			}
			w.steps[id] = step{kind: kindBranch, table: table, explicit: explicit}

		default:
			if err := checkTarget(id, sd.Next.Step); err != nil {
				return nil, err
			}
			w.steps[id] = step{kind: kindFixed, next: sd.Next.Step}
		}
	}

	return w, nil
}

// MustCompile is like Compile but panics on an invalid definition.
func MustCompile(def Definition) *Workflow {
	w, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *Workflow) Name() string         { return w.name }
func (w *Workflow) Start() models.StepID { return w.start }

// Has reports whether id is a step of w.
func (w *Workflow) Has(id models.StepID) bool {
	_, ok := w.steps[id]
	return ok
}

// Steps returns every step id in lexical order.
func (w *Workflow) Steps() []models.StepID {
	ids := make([]models.StepID, 0, len(w.steps))
	for id := range w.steps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Branches reports whether id is an intent-branching step.
func (w *Workflow) Branches(id models.StepID) bool {
	return w.steps[id].kind == kindBranch
}

// Resolve returns the step following current for intent.
// Unknown steps restart the workflow; terminal steps lead to "done".
func (w *Workflow) Resolve(current models.StepID, intent models.Intent) (models.StepID, Fallback) {
	s, ok := w.steps[current]
	if !ok {
		return w.start, FallbackUnknownStep
	}

	switch s.kind {
	case kindBranch:
		intent = models.ParseIntent(string(intent))
		next := s.table[intent]
		if !s.explicit[intent] || intent == models.IntentUnknown {
			return next, FallbackUnknownIntent
		}
		return next, FallbackNone
	case kindFixed:
		return s.next, FallbackNone
	}
	return models.StepDone, FallbackNone
}

// NextStep is Resolve without the fallback report.
func (w *Workflow) NextStep(current models.StepID, intent models.Intent) models.StepID {
	next, _ := w.Resolve(current, intent)
	return next
}
