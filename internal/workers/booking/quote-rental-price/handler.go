// internal/workers/booking/quote-rental-price/handler.go
package quoterentalprice

import (
	"context"
	stderrors "errors"

	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"
	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/dialogue/pricing"
	"booking-dialogue/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "quote-rental-price"

type AgentProvider interface {
	Get(ctx context.Context, agentType string) (*models.Agent, error)
}

type Handler struct {
	config       *Config
	agents       AgentProvider
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, agents AgentProvider, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidTurnInputError(err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// request merges explicit fields over the entities.
func request(input *Input) pricing.BookingRequest {
	var req pricing.BookingRequest
	if input.Entities != nil {
		req = pricing.RequestFromEntities(*input.Entities)
	}
	if input.CarType != "" {
		req.CarType = models.Category(input.CarType)
	}
	if c, ok := nlu.NormalizeServiceValue(string(req.CarType)); ok {
		req.CarType = c
	}
	if input.Days > 0 {
		req.Days = input.Days
	}
	if req.Days < 1 {
		req.Days = 1
	}
	if input.PickupLocation != "" {
		req.PickupLocation = input.PickupLocation
	}
	if input.ReturnLocation != "" {
		req.ReturnLocation = input.ReturnLocation
	}
	return req
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AgentType == "" {
		return nil, errors.NewInvalidTurnInputError("agentType is required")
	}

	agent, err := h.agents.Get(ctx, input.AgentType)
	switch {
	case stderrors.Is(err, catalog.ErrAgentNotFound):
		return nil, errors.NewCatalogNotFoundError(input.AgentType)
	case err != nil:
		return nil, errors.NewCatalogLoadFailedError(input.AgentType, err)
	}

	req := request(input)
	price, priced := pricing.CalculatePrice(input.AgentType, agent.Pricing, req)

	currency := h.config.DefaultCurrency
	if agent.Pricing != nil && agent.Pricing.Currency != "" {
		currency = agent.Pricing.Currency
	}

	h.logger.Info("price quoted", map[string]interface{}{
		"agentType": input.AgentType,
		"category":  req.CarType,
		"days":      req.Days,
		"price":     price,
		"priced":    priced,
	})

	return &Output{
		Price:    price,
		Currency: currency,
		Category: req.CarType,
		Days:     req.Days,
		Priced:   priced,
	}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
