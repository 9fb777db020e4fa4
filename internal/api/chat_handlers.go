package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/banking/retirement-service/internal/auth"
	"github.com/banking/retirement-service/internal/chat"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

type chatMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatMessageResponse struct {
	ConversationID     string                     `json:"conversation_id"`
	MessageID          string                     `json:"message_id"`
	Response           string                     `json:"response"`
	SuggestedQuestions []domain.SuggestedQuestion `json:"suggested_questions"`
	Intent             *domain.Intent             `json:"intent,omitempty"`
	AgentResult        string                     `json:"agent_result,omitempty"`
}

// SendMessage handles one chat turn for the authenticated user
func (h *Handler) SendMessage(c echo.Context) error {
	user := auth.CurrentUser(c)

	var req chatMessageRequest
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No message provided")
	}

	result, err := h.chat.HandleMessage(c.Request().Context(), user, req.ConversationID, req.Message)
	if err != nil {
		h.log.Error("chat turn failed", logger.ErrorField(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process message")
	}

	return c.JSON(http.StatusOK, chatMessageResponse{
		ConversationID:     result.ConversationID,
		MessageID:          result.MessageID,
		Response:           result.Response,
		SuggestedQuestions: result.SuggestedQuestions,
		Intent:             result.Intent,
		AgentResult:        result.AgentResult,
	})
}

// GetChatHistory returns a conversation transcript owned by the
// authenticated user
func (h *Handler) GetChatHistory(c echo.Context) error {
	user := auth.CurrentUser(c)

	conversationID := c.QueryParam("conversation_id")
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
	}

	conv, err := h.chat.History(c.Request().Context(), user.ID, conversationID)
	if err != nil {
		if errors.Is(err, chat.ErrNotAuthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized to view this conversation")
		}
		return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"conversation_id": conv.ID,
		"messages":        conv.Messages,
	})
}

type llmConfigRequest struct {
	Provider    *string  `json:"provider"`
	ModelName   *string  `json:"modelName"`
	Temperature *float64 `json:"temperature"`
}

// GetLLMConfig returns the runtime model configuration
func (h *Handler) GetLLMConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.chat.LLMConfig())
}

// UpdateLLMConfig applies the provided fields to the runtime model
// configuration
func (h *Handler) UpdateLLMConfig(c echo.Context) error {
	var req llmConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No data provided")
	}
	if req.Provider == nil && req.ModelName == nil && req.Temperature == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No data provided")
	}

	updated := h.chat.UpdateLLMConfig(req.Provider, req.ModelName, req.Temperature)
	return c.JSON(http.StatusOK, updated)
}
