// Package workflow models booking dialogues as step graphs and resolves the
// next step for a classified intent.
package workflow

import (
	"fmt"

	"booking-dialogue/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultType is the workflow used for unknown workflow types.
const DefaultType = "car-rental"

// Transition is the raw "next" of a step: a fixed step, an intent branch
// table, or nothing for a terminal step.
type Transition struct {
	Step     models.StepID                   `yaml:"-" json:"step,omitempty"`
	Branches map[models.Intent]models.StepID `yaml:"-" json:"branches,omitempty"`
}

// UnmarshalYAML accepts either a scalar step id or an intent mapping.
func (t *Transition) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var step string
		if err := node.Decode(&step); err != nil {
			return err
		}
		t.Step = models.StepID(step)
		return nil
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		t.Branches = make(map[models.Intent]models.StepID, len(raw))
		for intent, step := range raw {
			t.Branches[models.Intent(intent)] = models.StepID(step)
		}
		return nil
	}
	return fmt.Errorf("line %d: next must be a step id or an intent mapping", node.Line)
}

// StepDef is one node of a Definition.
type StepDef struct {
	Next *Transition `yaml:"next,omitempty" json:"next,omitempty"`
}

// Definition is the declarative form of a workflow.
type Definition struct {
	Name  string                     `yaml:"name" json:"name"`
	Start models.StepID              `yaml:"start" json:"start"`
	Steps map[models.StepID]*StepDef `yaml:"steps" json:"steps"`
}

func fixed(step models.StepID) *StepDef {
	return &StepDef{Next: &Transition{Step: step}}
}

// CarRental returns the built-in car rental booking dialogue.
func CarRental() Definition {
	return Definition{
		Name:  "car_rental_booking",
		Start: models.StepDetectIntent,
		Steps: map[models.StepID]*StepDef{
			models.StepDetectIntent: {Next: &Transition{Branches: map[models.Intent]models.StepID{
				models.IntentBooking: models.StepShowCategories,
				models.IntentInquiry: models.StepAnswerInquiry,
				models.IntentUnknown: models.StepDetectIntent,
			}}},
			models.StepShowCategories: fixed(models.StepAskCategory),
			models.StepAskCategory:    fixed(models.StepAskDates),
			models.StepAskDates:       fixed(models.StepAskLocations),
			models.StepAskLocations:   fixed(models.StepAskUserData),
			models.StepAskUserData:    fixed(models.StepConfirmBooking),
			models.StepConfirmBooking: fixed(models.StepSaveBooking),
			models.StepSaveBooking:    fixed(models.StepDone),
			models.StepAnswerInquiry:  fixed(models.StepDone),
			models.StepDone:           {},
		},
	}
}
