package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"booking-dialogue/internal/catalog"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/dialogue/reply"
	"booking-dialogue/internal/models"
	"booking-dialogue/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubAgents struct {
	agents map[string]*models.Agent
}

func (s *stubAgents) GetActive(_ context.Context, agentType string) (*models.Agent, error) {
	a, ok := s.agents[agentType]
	if !ok {
		return nil, catalog.ErrAgentNotFound
	}
	return a, nil
}

type recordingStarter struct {
	processID string
	variables []BookingVariables
	err       error
}

func (r *recordingStarter) StartProcess(_ context.Context, processID string, variables interface{}) (int64, error) {
	r.processID = processID
	if v, ok := variables.(BookingVariables); ok {
		r.variables = append(r.variables, v)
	}
	if r.err != nil {
		return 0, r.err
	}
	return 2251799813685249, nil
}

type failingStates struct{}

func (failingStates) Get(context.Context, string) (models.ConversationState, error) {
	return models.ConversationState{}, errors.New("connection refused")
}
func (failingStates) Save(context.Context, models.ConversationState) error { return nil }
func (failingStates) Clear(context.Context, string) error                  { return nil }

func createTestAgent() *models.Agent {
	return &models.Agent{
		Type:         "car-rental",
		Name:         "Autóbérlés asszisztens",
		IsActive:     true,
		WorkflowType: "car-rental",
		QuickActions: []models.QuickAction{{Label: "Foglalás", Message: "Autót szeretnék bérelni"}},
		Pricing: &models.PricingCatalog{
			Currency: "HUF",
			Categories: map[models.Category]models.CategoryPrice{
				models.CategoryEconomy: {BasePrice: 9000},
				models.CategorySUV:     {BasePrice: 20000},
			},
		},
		Data: models.Inventory{
			models.CategorySUV: {{Brand: "Skoda", Model: "Kodiaq"}},
		},
	}
}

func newTestService(t *testing.T, starter ProcessStarter) (*Service, *state.MemoryStore) {
	t.Helper()
	states := state.NewMemoryStore(time.Hour)
	agents := &stubAgents{agents: map[string]*models.Agent{"car-rental": createTestAgent()}}
	svc := NewService(engine.New(nil), agents, states, starter, nil, logger.NewTestLogger(t))

	n := 0
	ids := []string{"conv-generated", "3f2504e0-4f89-11d3-9a0c-0305e82c3301"}
	svc.newID = func() string {
		id := ids[n%len(ids)]
		n++
		return id
	}
	return svc, states
}

func chat(t *testing.T, svc *Service, conversationID, msg string) *Response {
	t.Helper()
	resp, err := svc.Chat(context.Background(), Request{
		AgentType:      "car-rental",
		ConversationID: conversationID,
		Message:        msg,
	})
	require.NoError(t, err)
	return resp
}

// ==========================
// Tests
// ==========================

func TestService_ChatStoresState(t *testing.T) {
	svc, states := newTestService(t, nil)

	resp := chat(t, svc, "conv-1", "Szia, autót szeretnék bérelni")
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, models.IntentBooking, resp.Intent)
	assert.Equal(t, models.StepShowCategories, resp.NextStep)
	assert.Equal(t, "Autóbérlés asszisztens", resp.Assistant.Name)
	assert.Len(t, resp.Assistant.QuickActions, 1)
	assert.NotNil(t, resp.Clarifications)

	stored, err := states.Get(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepShowCategories, stored.CurrentStep)
	assert.Equal(t, "car-rental", stored.AgentType)

	resp = chat(t, svc, "conv-1", "SUV")
	assert.Equal(t, models.StepAskDates, resp.NextStep)
	assert.Equal(t, "suv", resp.Entities.Service)
}

func TestService_ChatGeneratesConversationID(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp := chat(t, svc, "", "Szia")
	assert.Equal(t, "conv-generated", resp.ConversationID)
}

func TestService_ChatRejectsEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Chat(context.Background(), Request{AgentType: "car-rental", Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestService_ChatUnknownAgent(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Chat(context.Background(), Request{AgentType: "bike-rental", Message: "Szia"})
	assert.ErrorIs(t, err, catalog.ErrAgentNotFound)
}

func TestService_ChatStateStoreFailure(t *testing.T) {
	agents := &stubAgents{agents: map[string]*models.Agent{"car-rental": createTestAgent()}}
	svc := NewService(engine.New(nil), agents, failingStates{}, nil, nil, logger.NewNoOpLogger())

	_, err := svc.Chat(context.Background(), Request{AgentType: "car-rental", ConversationID: "c", Message: "Szia"})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeStateStoreFailed, stdErr.Code)
}

func TestService_ConfirmedBookingStartsProcess(t *testing.T) {
	starter := &recordingStarter{}
	svc, states := newTestService(t, starter)

	days := 3
	require.NoError(t, states.Save(context.Background(), models.ConversationState{
		ConversationID: "conv-2",
		AgentType:      "car-rental",
		WorkflowType:   "car-rental",
		CurrentStep:    models.StepConfirmBooking,
		Entities: models.Entities{
			Service: "suv", Date: "2026-07-01", DateEnd: "2026-07-04", Days: &days,
			PickupLocation: "Budapest", ReturnLocation: "Budapest", Email: "anna@example.com",
		},
	}))

	resp := chat(t, svc, "conv-2", "Megerősítem")
	assert.Equal(t, models.StepSaveBooking, resp.NextStep)
	assert.NotEmpty(t, resp.BookingID)
	assert.Contains(t, resp.Reply, "Foglalási azonosító: **RB-")

	require.Len(t, starter.variables, 1)
	assert.Equal(t, BookingProcessID, starter.processID)
	vars := starter.variables[0]
	assert.Equal(t, resp.BookingID, vars.BookingID)
	assert.Equal(t, "conv-2", vars.ConversationID)
	assert.Equal(t, 60000, vars.Price)
	assert.Equal(t, "HUF", vars.Currency)
	assert.True(t, vars.Entities.Confirmed)
}

func TestService_StartFailureAsksToConfirmAgain(t *testing.T) {
	starter := &recordingStarter{err: errors.New("unavailable")}
	svc, states := newTestService(t, starter)

	days := 1
	require.NoError(t, states.Save(context.Background(), models.ConversationState{
		ConversationID: "conv-3",
		AgentType:      "car-rental",
		WorkflowType:   "car-rental",
		CurrentStep:    models.StepConfirmBooking,
		Entities: models.Entities{
			Service: "economy", Date: "2026-07-01", Days: &days,
			PickupLocation: "Budapest", ReturnLocation: "Budapest", Phone: "+36301234567",
		},
	}))

	resp := chat(t, svc, "conv-3", "Megerősítem")
	assert.Equal(t, models.StepConfirmBooking, resp.NextStep)
	assert.Equal(t, reply.BookingNotRecorded, resp.Reply)
	assert.NotContains(t, resp.Reply, "**Foglalás rögzítve**")
	assert.Empty(t, resp.BookingID)
	assert.Equal(t, FallbackHandOffFailed, resp.Fallback)
	assert.False(t, resp.Entities.Confirmed)
	assert.Len(t, resp.Clarifications, 1)

	stored, err := states.Get(context.Background(), "conv-3")
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirmBooking, stored.CurrentStep)
	assert.False(t, stored.Entities.Confirmed)

	// the gateway is back: confirming again hands the booking over
	starter.err = nil
	resp = chat(t, svc, "conv-3", "Igen, megerősítem")
	assert.Equal(t, models.StepSaveBooking, resp.NextStep)
	assert.NotEmpty(t, resp.BookingID)
	assert.Contains(t, resp.Reply, "**Foglalás rögzítve**")
	require.Len(t, starter.variables, 2)
	assert.Equal(t, resp.BookingID, starter.variables[1].BookingID)
}

func TestService_NoStarterKeepsSavedReply(t *testing.T) {
	svc, states := newTestService(t, nil)

	days := 1
	require.NoError(t, states.Save(context.Background(), models.ConversationState{
		ConversationID: "conv-6",
		AgentType:      "car-rental",
		WorkflowType:   "car-rental",
		CurrentStep:    models.StepConfirmBooking,
		Entities: models.Entities{
			Service: "economy", Date: "2026-07-01", Days: &days,
			PickupLocation: "Budapest", ReturnLocation: "Budapest", Phone: "+36301234567",
		},
	}))

	resp := chat(t, svc, "conv-6", "Megerősítem")
	assert.Equal(t, models.StepSaveBooking, resp.NextStep)
	assert.Contains(t, resp.Reply, "**Foglalás rögzítve**")
}

func TestService_AgentSwitchStartsOver(t *testing.T) {
	svc, states := newTestService(t, nil)
	require.NoError(t, states.Save(context.Background(), models.ConversationState{
		ConversationID: "conv-4",
		AgentType:      "van-rental",
		CurrentStep:    models.StepAskDates,
		Entities:       models.Entities{Service: "suv"},
	}))

	resp := chat(t, svc, "conv-4", "Szia")
	assert.Empty(t, resp.Entities.Service)
}

func TestService_Reset(t *testing.T) {
	svc, states := newTestService(t, nil)
	chat(t, svc, "conv-5", "SUV-t bérelnék")

	require.NoError(t, svc.Reset(context.Background(), "conv-5"))

	st, err := states.Get(context.Background(), "conv-5")
	require.NoError(t, err)
	assert.Empty(t, st.CurrentStep)
}
