package slots

import (
	"testing"

	"booking-dialogue/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNeedsLocations(t *testing.T) {
	tests := []struct {
		name     string
		entities models.Entities
		expected bool
	}{
		{"both missing", models.Entities{}, true},
		{"return missing", models.Entities{PickupLocation: "Budapest"}, true},
		{"pickup missing", models.Entities{ReturnLocation: "Debrecen"}, true},
		{"both present", models.Entities{PickupLocation: "Budapest", ReturnLocation: "Debrecen"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NeedsLocations(tt.entities))
		})
	}
}

func TestNextLocationQuestion(t *testing.T) {
	tests := []struct {
		name     string
		entities models.Entities
		expected string
		ok       bool
	}{
		{
			name:     "both missing",
			entities: models.Entities{},
			expected: "Hol vennéd fel az autót, és hol szeretnéd leadni? (lehet ugyanaz is)",
			ok:       true,
		},
		{
			name:     "pickup missing",
			entities: models.Entities{ReturnLocation: "Debrecen"},
			expected: "Hol vennéd fel az autót?",
			ok:       true,
		},
		{
			name:     "return missing",
			entities: models.Entities{PickupLocation: "Budapest"},
			expected: "Hol szeretnéd leadni? (lehet ugyanaz is)",
			ok:       true,
		},
		{
			name:     "nothing to ask",
			entities: models.Entities{PickupLocation: "Budapest", ReturnLocation: "Budapest"},
			expected: "",
			ok:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := NextLocationQuestion(tt.entities)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestSatisfied(t *testing.T) {
	full := models.Entities{
		Service:        "suv",
		Date:           "2025-10-23",
		PickupLocation: "Budapest",
		ReturnLocation: "Budapest",
		Email:          "a@b.hu",
		Confirmed:      true,
	}

	for _, step := range []models.StepID{
		models.StepAskCategory, models.StepAskDates, models.StepAskLocations,
		models.StepAskUserData, models.StepConfirmBooking, models.StepDetectIntent,
	} {
		assert.True(t, Satisfied(step, full), step)
	}

	assert.False(t, Satisfied(models.StepAskCategory, models.Entities{Service: "limousine"}))
	assert.True(t, Satisfied(models.StepAskCategory, models.Entities{CarModel: "Skoda Octavia"}))
	assert.False(t, Satisfied(models.StepConfirmBooking, models.Entities{}))
	assert.True(t, Satisfied(models.StepShowCategories, models.Entities{}))
}

func TestGatedAndQuestion(t *testing.T) {
	assert.True(t, Gated(models.StepAskDates))
	assert.False(t, Gated(models.StepShowCategories))
	assert.False(t, Gated(models.StepDetectIntent))

	q, ok := Question(models.StepAskLocations, models.Entities{PickupLocation: "Pécs"})
	assert.True(t, ok)
	assert.Equal(t, "Hol szeretnéd leadni? (lehet ugyanaz is)", q)

	_, ok = Question(models.StepDone, models.Entities{})
	assert.False(t, ok)
}

func TestMissing(t *testing.T) {
	assert.Equal(t,
		[]string{"service", "date", "pickupLocation", "returnLocation", "contact"},
		Missing(models.Entities{}))
	assert.Empty(t, Missing(models.Entities{
		Service: "economy", Date: "2025-01-01", PickupLocation: "A", ReturnLocation: "B", Phone: "+36301234567",
	}))
}
