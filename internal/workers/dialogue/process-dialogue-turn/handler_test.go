// internal/workers/dialogue/process-dialogue-turn/handler_test.go
package processdialogueturn

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/common/config"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubAgents struct {
	agent *models.Agent
	err   error
	calls int
}

func (s *stubAgents) GetActive(_ context.Context, agentType string) (*models.Agent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.agent == nil || s.agent.Type != agentType {
		return nil, catalog.ErrAgentNotFound
	}
	return s.agent, nil
}

func createTestConfig() *Config {
	return &Config{Enabled: true, MaxJobsActive: 5, Timeout: time.Second}
}

func createTestAgent() *models.Agent {
	return &models.Agent{
		Type:         "car-rental",
		Name:         "Autóbérlés",
		IsActive:     true,
		WorkflowType: "car-rental",
		Pricing: &models.PricingCatalog{
			Currency: "HUF",
			Categories: map[models.Category]models.CategoryPrice{
				models.CategoryCompact: {BasePrice: 12000},
			},
		},
		Data: models.Inventory{
			models.CategoryCompact: {{Brand: "VW", Model: "Golf"}},
		},
	}
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "rental-conversation",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, agents AgentProvider) *Handler {
	return NewHandler(createTestConfig(), engine.New(nil), agents, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_FirstTurn(t *testing.T) {
	agents := &stubAgents{agent: createTestAgent()}
	h := newTestHandler(t, agents)

	out, err := h.Execute(context.Background(), &Input{
		ConversationID: "conv-1",
		AgentType:      "car-rental",
		UserMessage:    "Kompakt autót bérelnék 2026-08-01 → 2026-08-03",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, agents.calls)
	assert.Equal(t, models.IntentBooking, out.Intent)
	assert.Equal(t, "car-rental", out.WorkflowType)
	assert.Equal(t, out.NextStep, out.CurrentStep)
	assert.Equal(t, "compact", out.Entities.Service)
	require.NotNil(t, out.Quote)
	assert.Equal(t, 24000, out.Quote.Price)
	assert.NotNil(t, out.Clarifications)
	assert.False(t, out.BookingReady)
	assert.Empty(t, out.BookingID)
}

func TestHandler_Execute_InlineCatalogSkipsStore(t *testing.T) {
	agents := &stubAgents{}
	h := newTestHandler(t, agents)

	out, err := h.Execute(context.Background(), &Input{
		AgentType:    "car-rental",
		WorkflowType: "car-rental",
		UserMessage:  "SUV kellene",
		Pricing: &models.PricingCatalog{
			Categories: map[models.Category]models.CategoryPrice{models.CategorySUV: {BasePrice: 20000}},
		},
		Inventory: models.Inventory{models.CategorySUV: {{Brand: "Kia", Model: "Sportage"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, agents.calls)
	assert.Equal(t, "suv", out.Entities.Service)
}

func TestHandler_Execute_ConfirmationReturnsBookingID(t *testing.T) {
	h := newTestHandler(t, &stubAgents{agent: createTestAgent()})
	days := 2

	out, err := h.Execute(context.Background(), &Input{
		ConversationID: "conv-2",
		AgentType:      "car-rental",
		WorkflowType:   "car-rental",
		CurrentStep:    models.StepConfirmBooking,
		Entities: models.Entities{
			Service: "compact", Date: "2026-08-01", DateEnd: "2026-08-03", Days: &days,
			PickupLocation: "Győr", ReturnLocation: "Győr", Email: "bela@example.com",
		},
		UserMessage: "Megerősítem",
		BookingID:   "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
	})
	require.NoError(t, err)
	assert.True(t, out.BookingReady)
	assert.Equal(t, models.StepSaveBooking, out.NextStep)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", out.BookingID)
	assert.Contains(t, out.Reply, "RB-3F2504E0")
}

func TestHandler_Execute_CatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		agents   *stubAgents
		wantCode apperrors.ErrorCode
	}{
		{"unknown agent", &stubAgents{agent: createTestAgent()}, apperrors.ErrCodeCatalogNotFound},
		{"store failure", &stubAgents{err: errors.New("redis timeout")}, apperrors.ErrCodeCatalogLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.agents)
			_, err := h.Execute(context.Background(), &Input{AgentType: "bike-rental", UserMessage: "Szia"})

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

// ==========================
// Input parsing
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &stubAgents{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name: "full turn",
			variables: map[string]interface{}{
				"conversationId": "conv-1",
				"agentType":      "car-rental",
				"currentStep":    "ask_dates",
				"userMessage":    "2026-08-01",
				"entities":       map[string]interface{}{"service": "suv"},
			},
		},
		{name: "missing message", variables: map[string]interface{}{"agentType": "car-rental"}, wantErr: true},
		{name: "empty message", variables: map[string]interface{}{"userMessage": ""}, wantErr: true},
		{name: "message not a string", variables: map[string]interface{}{"userMessage": 42}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				stdErr, ok := apperrors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.ErrCodeInvalidTurnInput, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StepAskDates, input.CurrentStep)
			assert.Equal(t, "suv", input.Entities.Service)
		})
	}
}

// ==========================
// Config
// ==========================

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig(), LoadConfig(nil))

	cfg := LoadConfig(&config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 1500},
	}})
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{MaxJobsActive: 1}).Validate())
}
