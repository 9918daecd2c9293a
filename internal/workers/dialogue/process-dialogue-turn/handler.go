// internal/workers/dialogue/process-dialogue-turn/handler.go
package processdialogueturn

import (
	"context"
	stderrors "errors"
	"fmt"

	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"
	"booking-dialogue/internal/common/validation"
	"booking-dialogue/internal/conversation"
	"booking-dialogue/internal/dialogue/engine"
	"booking-dialogue/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "process-dialogue-turn"

type AgentProvider interface {
	GetActive(ctx context.Context, agentType string) (*models.Agent, error)
}

type Handler struct {
	config       *Config
	engine       *engine.Engine
	agents       AgentProvider
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, eng *engine.Engine, agents AgentProvider, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       eng,
		agents:       agents,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.Variables)
	result, err := validation.ValidateJSON(validation.TurnInputSchema, raw)
	if err != nil {
		return nil, errors.NewInvalidTurnInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidTurnInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInvalidTurnInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	cat := engine.Catalog{Pricing: input.Pricing, Inventory: input.Inventory}
	agentType := input.AgentType

	if agentType != "" && (cat.Pricing == nil || cat.Inventory == nil) {
		agent, err := h.agents.GetActive(ctx, agentType)
		switch {
		case stderrors.Is(err, catalog.ErrAgentNotFound):
			return nil, errors.NewCatalogNotFoundError(agentType)
		case err != nil:
			return nil, errors.NewCatalogLoadFailedError(agentType, err)
		}
		if cat.Pricing == nil {
			cat.Pricing = agent.Pricing
		}
		if cat.Inventory == nil {
			cat.Inventory = agent.Data
		}
		if input.WorkflowType == "" {
			input.WorkflowType = agent.WorkflowType
		}
	}

	bookingID := input.BookingID
	if bookingID == "" {
		bookingID = uuid.New().String()
	}

	res := h.engine.ProcessTurn(engine.TurnInput{
		AgentType: agentType,
		State: models.ConversationState{
			ConversationID: input.ConversationID,
			AgentType:      agentType,
			WorkflowType:   input.WorkflowType,
			CurrentStep:    input.CurrentStep,
			Entities:       input.Entities,
		},
		UserMessage:      input.UserMessage,
		NLU:              input.NLU,
		Catalog:          cat,
		BookingReference: booking.Reference(bookingID),
	})
	conversation.ObserveTurn(input.NLU, res)

	output := &Output{
		Reply:          res.Reply,
		Intent:         res.Intent,
		NextStep:       res.NextStep,
		CurrentStep:    res.NextStep,
		WorkflowType:   res.State.WorkflowType,
		Entities:       res.Entities,
		Clarifications: res.Clarifications,
		Quote:          res.Quote,
		Fallback:       string(res.Fallback),
		BookingReady:   res.BookingReady,
	}
	if output.Clarifications == nil {
		output.Clarifications = []string{}
	}
	if res.BookingReady {
		output.BookingID = bookingID
	}

	h.logger.Info("dialogue turn processed", map[string]interface{}{
		"conversationId": input.ConversationID,
		"intent":         res.Intent,
		"nextStep":       res.NextStep,
		"fallback":       res.Fallback,
		"bookingReady":   res.BookingReady,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
