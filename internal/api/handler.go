package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"
	"booking-dialogue/internal/common/validation"
	"booking-dialogue/internal/conversation"
	"booking-dialogue/internal/models"

	"github.com/gin-gonic/gin"
)

// Error texts shown to API clients.
const (
	msgAssistantNotFound = "Asszisztens nem található"
	msgPricingNotFound   = "Árazás nem található"
	msgDataNotFound      = "Adatok nem találhatók"
	msgMessageRequired   = "Üzenet szükséges"
	msgInvalidRequest    = "Érvénytelen kérés"
	msgTechnicalError    = "Technikai hiba"
)

// Catalog is the read side of the agent catalog.
type Catalog interface {
	Get(ctx context.Context, agentType string) (*models.Agent, error)
	GetActive(ctx context.Context, agentType string) (*models.Agent, error)
	List(ctx context.Context) ([]models.AgentSummary, error)
}

// ChatService runs chat turns.
type ChatService interface {
	Chat(ctx context.Context, req conversation.Request) (*conversation.Response, error)
	Reset(ctx context.Context, conversationID string) error
}

type ChatRequest struct {
	Message        string            `json:"message"`
	ConversationID string            `json:"conversationId"`
	NLU            *models.NLUResult `json:"nlu"`
}

type Handler struct {
	catalog Catalog
	chat    ChatService
	logger  logger.Logger
}

func NewHandler(cat Catalog, chat ChatService, log logger.Logger) *Handler {
	return &Handler{catalog: cat, chat: chat, logger: log}
}

// ListAssistants handles GET /api/assistants.
func (h *Handler) ListAssistants(c *gin.Context) {
	agents, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.technicalError(c, "list assistants", err)
		return
	}
	if agents == nil {
		agents = []models.AgentSummary{}
	}
	c.JSON(http.StatusOK, agents)
}

// GetAssistant handles GET /api/assistants/:type.
func (h *Handler) GetAssistant(c *gin.Context) {
	agent, err := h.catalog.GetActive(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.catalogError(c, err, msgAssistantNotFound)
		return
	}
	c.JSON(http.StatusOK, agent.Summary())
}

// GetPricing handles GET /api/assistants/:type/pricing.
func (h *Handler) GetPricing(c *gin.Context) {
	agent, err := h.catalog.Get(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.catalogError(c, err, msgPricingNotFound)
		return
	}
	if agent.Pricing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgPricingNotFound})
		return
	}
	c.JSON(http.StatusOK, agent.Pricing)
}

// GetData handles GET /api/assistants/:type/data.
func (h *Handler) GetData(c *gin.Context) {
	agent, err := h.catalog.Get(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.catalogError(c, err, msgDataNotFound)
		return
	}
	if len(agent.Data) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgDataNotFound})
		return
	}
	c.JSON(http.StatusOK, agent.Data)
}

// Chat handles POST /api/assistants/:type/chat.
func (h *Handler) Chat(c *gin.Context) {
	status := http.StatusOK
	defer func() {
		metrics.ChatRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	}()

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgInvalidRequest})
		return
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}

	result, err := validation.ValidateJSON(validation.ChatRequestSchema, raw)
	if err != nil {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgInvalidRequest, "details": err.Error()})
		return
	}
	if !result.Valid {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgInvalidRequest, "details": result.GetErrorMessages()})
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgInvalidRequest, "details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgMessageRequired})
		return
	}

	resp, err := h.chat.Chat(c.Request.Context(), conversation.Request{
		AgentType:      c.Param("type"),
		ConversationID: req.ConversationID,
		Message:        req.Message,
		NLU:            req.NLU,
	})
	switch {
	case err == nil:
		c.JSON(status, resp)
	case errors.Is(err, catalog.ErrAgentNotFound):
		status = http.StatusNotFound
		c.JSON(status, gin.H{"error": msgAssistantNotFound})
	case errors.Is(err, conversation.ErrEmptyMessage):
		status = http.StatusBadRequest
		c.JSON(status, gin.H{"error": msgMessageRequired})
	default:
		status = http.StatusInternalServerError
		h.technicalError(c, "chat", err)
	}
}

// ResetConversation handles DELETE /api/assistants/:type/conversations/:id.
func (h *Handler) ResetConversation(c *gin.Context) {
	if err := h.chat.Reset(c.Request.Context(), c.Param("id")); err != nil {
		h.technicalError(c, "reset conversation", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) catalogError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, catalog.ErrAgentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	h.technicalError(c, "load catalog", err)
}

func (h *Handler) technicalError(c *gin.Context, op string, err error) {
	h.logger.Error("request failed", map[string]interface{}{
		"operation": op,
		"agentType": c.Param("type"),
		"error":     err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgTechnicalError, "details": err.Error()})
}
