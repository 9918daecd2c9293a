// Package conversation runs chat turns against stored conversation state:
// it resolves the agent catalog, calls the dialogue engine, records turn
// metrics and hands ready bookings over to the booking process.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"booking-dialogue/internal/booking"
	apperrors "booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"
	"booking-dialogue/internal/common/observability"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/dialogue/pricing"
	"booking-dialogue/internal/dialogue/reply"
	"booking-dialogue/internal/dialogue/slots"
	"booking-dialogue/internal/models"
	"booking-dialogue/internal/state"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// BookingProcessID is the BPMN process started for every ready booking.
const BookingProcessID = "rental-booking"

// FallbackHandOffFailed marks a confirmed turn whose booking process could
// not be started; the conversation stays at confirmation.
const FallbackHandOffFailed = "hand_off_failed"

var ErrEmptyMessage = errors.New("EMPTY_MESSAGE")

// AgentProvider resolves active agents with their catalogs.
type AgentProvider interface {
	GetActive(ctx context.Context, agentType string) (*models.Agent, error)
}

// ProcessStarter starts a BPMN process instance.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Request is one user message.
type Request struct {
	AgentType      string
	ConversationID string
	Message        string
	NLU            *models.NLUResult
}

// AssistantInfo identifies the agent that answered.
type AssistantInfo struct {
	Name         string               `json:"name"`
	Type         string               `json:"type"`
	QuickActions []models.QuickAction `json:"quick_actions,omitempty"`
}

// Response is the chat API shape of a turn.
type Response struct {
	ConversationID string          `json:"conversationId"`
	Reply          string          `json:"reply"`
	Intent         models.Intent   `json:"intent"`
	NextStep       models.StepID   `json:"nextStep"`
	Entities       models.Entities `json:"entities"`
	Clarifications []string        `json:"clarifications"`
	Quote          *pricing.Quote  `json:"quote"`
	Fallback       string          `json:"fallback,omitempty"`
	BookingID      string          `json:"bookingId,omitempty"`
	Assistant      AssistantInfo   `json:"assistant"`
}

// BookingVariables are the process variables of a started booking process.
type BookingVariables struct {
	BookingID      string          `json:"bookingId"`
	ConversationID string          `json:"conversationId"`
	AgentType      string          `json:"agentType"`
	Entities       models.Entities `json:"entities"`
	Price          int             `json:"price"`
	Currency       string          `json:"currency"`
}

type Service struct {
	engine  *engine.Engine
	agents  AgentProvider
	states  state.Store
	starter ProcessStarter
	obs     *observability.Observability
	logger  logger.Logger
	newID   func() string
	now     func() time.Time
}

// NewService wires a service. starter and obs may be nil.
func NewService(eng *engine.Engine, agents AgentProvider, states state.Store, starter ProcessStarter, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		engine:  eng,
		agents:  agents,
		states:  states,
		starter: starter,
		obs:     obs,
		logger:  log,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
}

// Chat runs one turn and stores the resulting state.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	start := s.now()
	var endSpan func(error)
	if s.obs != nil {
		ctx, endSpan = s.obs.StartSpan(ctx, "dialogue.turn",
			attribute.String("agent_type", req.AgentType),
			attribute.String("conversation_id", req.ConversationID))
	}

	resp, workflowType, err := s.chat(ctx, req)
	if endSpan != nil {
		endSpan(err)
	}
	if err == nil && s.obs != nil {
		s.obs.RecordTurn(ctx, workflowType, string(resp.NextStep), s.now().Sub(start))
	}
	return resp, err
}

func (s *Service) chat(ctx context.Context, req Request) (*Response, string, error) {
	agent, err := s.agents.GetActive(ctx, req.AgentType)
	if err != nil {
		return nil, "", err
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.newID()
	}

	st, err := s.states.Get(ctx, conversationID)
	if err != nil {
		return nil, "", apperrors.NewStateStoreFailedError(err)
	}
	if st.AgentType != "" && st.AgentType != agent.Type {
		s.logger.Info("conversation switched agent, starting over", map[string]interface{}{
			"conversationId": conversationID,
			"from":           st.AgentType,
			"to":             agent.Type,
		})
		st = models.ConversationState{ConversationID: conversationID}
	}
	if st.WorkflowType == "" {
		st.WorkflowType = agent.WorkflowType
	}
	if st.WorkflowType == "" {
		st.WorkflowType = s.engine.Registry().DefaultType()
	}

	bookingID := s.newID()
	res := s.engine.ProcessTurn(engine.TurnInput{
		AgentType:        agent.Type,
		State:            st,
		UserMessage:      req.Message,
		NLU:              req.NLU,
		Catalog:          engine.Catalog{Pricing: agent.Pricing, Inventory: agent.Data},
		BookingReference: booking.Reference(bookingID),
	})
	ObserveTurn(req.NLU, res)

	resp := &Response{
		ConversationID: conversationID,
		Reply:          res.Reply,
		Intent:         res.Intent,
		NextStep:       res.NextStep,
		Entities:       res.Entities,
		Clarifications: res.Clarifications,
		Quote:          res.Quote,
		Fallback:       string(res.Fallback),
		Assistant:      AssistantInfo{Name: agent.Name, Type: agent.Type, QuickActions: agent.QuickActions},
	}
	if resp.Clarifications == nil {
		resp.Clarifications = []string{}
	}

	if res.BookingReady {
		if err := s.handOff(ctx, conversationID, agent.Type, bookingID, res); err != nil {
			// nothing was recorded: ask again instead of reporting a booking
			res.State.CurrentStep = models.StepConfirmBooking
			res.State.Entities.Confirmed = false
			resp.NextStep = models.StepConfirmBooking
			resp.Entities = res.State.Entities
			resp.Reply = reply.BookingNotRecorded
			resp.Clarifications = []string{}
			if q, ok := slots.Question(models.StepConfirmBooking, res.State.Entities); ok {
				resp.Clarifications = append(resp.Clarifications, q)
			}
			resp.Fallback = FallbackHandOffFailed
		} else {
			resp.BookingID = bookingID
		}
	}

	res.State.ConversationID = conversationID
	if err := s.states.Save(ctx, res.State); err != nil {
		return nil, "", apperrors.NewStateStoreFailedError(err)
	}

	s.logger.Debug("turn processed", map[string]interface{}{
		"conversationId": conversationID,
		"intent":         res.Intent,
		"nextStep":       res.NextStep,
		"fallback":       res.Fallback,
	})
	return resp, res.State.WorkflowType, nil
}

// handOff starts the booking process. Without a starter there is nothing to
// hand over and the turn stands.
func (s *Service) handOff(ctx context.Context, conversationID, agentType, bookingID string, res engine.TurnResult) error {
	if s.starter == nil {
		return nil
	}
	vars := BookingVariables{
		BookingID:      bookingID,
		ConversationID: conversationID,
		AgentType:      agentType,
		Entities:       res.Entities,
		Currency:       "HUF",
	}
	if res.Quote != nil {
		vars.Price = res.Quote.Price
		vars.Currency = res.Quote.Currency
	}

	key, err := s.starter.StartProcess(ctx, BookingProcessID, vars)
	if err != nil {
		s.logger.Error("failed to start booking process", map[string]interface{}{
			"conversationId": conversationID,
			"bookingId":      bookingID,
			"error":          err.Error(),
		})
		return err
	}
	s.logger.Info("booking process started", map[string]interface{}{
		"conversationId":     conversationID,
		"bookingId":          bookingID,
		"processInstanceKey": key,
	})
	return nil
}

// Reset forgets a conversation.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	if err := s.states.Clear(ctx, conversationID); err != nil {
		return apperrors.NewStateStoreFailedError(err)
	}
	return nil
}

// ObserveTurn records the Prometheus counters of a finished turn.
func ObserveTurn(given *models.NLUResult, res engine.TurnResult) {
	metrics.DialogueTurns.WithLabelValues(res.State.WorkflowType, string(res.NextStep)).Inc()
	if res.Fallback != "" {
		metrics.StepFallbacks.WithLabelValues(string(res.Fallback)).Inc()
	}

	category := models.Category(res.Entities.Service)
	if !category.Valid() {
		return
	}
	source := "text"
	if given != nil {
		if c, ok := nlu.NormalizeServiceValue(given.Entities.Service); ok && c == category {
			source = "nlu"
		}
	}
	metrics.CategoryDetections.WithLabelValues(source, string(category)).Inc()
}
