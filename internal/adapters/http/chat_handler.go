package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// ChatHandler fronts the chat orchestration service.
type ChatHandler struct {
	chatService ports.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService ports.ChatService, appLogger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      appLogger,
	}
}

// Send handles POST /api/chat.
func (h *ChatHandler) Send(c echo.Context) error {
	var req ports.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.chatService.SendMessage(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User message is required"})
		}

		var unavailable *entities.AllProvidersUnavailableError
		if errors.As(err, &unavailable) {
			h.logger.Error("All chat providers failed", "error", err)
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "All AI services are currently unavailable."})
		}

		h.logger.Error("Chat request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Reply:    result.Reply,
		Provider: result.Provider,
	})
}

// ChatResponse is the normalized reply returned to the UI collaborator.
type ChatResponse struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}
