// internal/workers/booking/save-rental-booking/handler.go
package saverentalbooking

import (
	"context"
	stderrors "errors"
	"time"

	"booking-dialogue/internal/booking"
	"booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"
	"booking-dialogue/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "save-rental-booking"

// Repository is the subset of booking.Repository the worker needs.
type Repository interface {
	Save(ctx context.Context, b models.Booking) (models.Booking, error)
	Get(ctx context.Context, id string) (models.Booking, error)
}

type Handler struct {
	config       *Config
	repo         Repository
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, repo Repository, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		repo:         repo,
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

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	b := models.NewBookingFromEntities(input.AgentType, input.Entities)
	b.ID = input.BookingID
	b.ConversationID = input.ConversationID
	b.Price = input.Price
	if input.Currency != "" {
		b.Currency = input.Currency
	}

	saved, err := h.repo.Save(ctx, b)
	switch {
	case stderrors.Is(err, booking.ErrBookingIncomplete):
		return nil, errors.NewBookingIncompleteError(booking.Missing(b))
	case stderrors.Is(err, booking.ErrBookingExists):
		// a retried job already stored this booking
		saved, err = h.repo.Get(ctx, b.ID)
		if err != nil {
			return nil, errors.NewBookingSaveFailedError(err)
		}
		h.logger.Info("booking already stored", map[string]interface{}{"bookingId": saved.ID})
	case err != nil:
		return nil, errors.NewBookingSaveFailedError(err)
	default:
		h.logger.Info("booking stored", map[string]interface{}{
			"bookingId":      saved.ID,
			"conversationId": saved.ConversationID,
			"category":       saved.Category,
			"price":          saved.Price,
		})
	}

	return &Output{
		BookingID: saved.ID,
		Reference: booking.Reference(saved.ID),
		Status:    saved.Status,
		CreatedAt: saved.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
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
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":    job.Key,
		"bookingId": output.BookingID,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
