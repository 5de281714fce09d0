package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/biolog/internal/assistant"
	"go.uber.org/zap"
)

type askRequest struct {
	Message             string                  `json:"message"`
	ConversationHistory []assistant.HistoryTurn `json:"conversationHistory"`
	TimeZone            string                  `json:"timeZone"`
}

func (handler *Handler) Ask(c *fiber.Ctx) error {
	if !handler.askLimiter.allow(requestLimiterKey(c), handler.now(), handler.askRateLimit, handler.askRateWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "Too many requests")
	}

	var request askRequest
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	location, ok := handler.requestLocation(request.TimeZone)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "Invalid time zone")
	}

	result, err := handler.assistant.Ask(c.UserContext(), assistant.TurnRequest{
		Message:  request.Message,
		History:  request.ConversationHistory,
		OwnerID:  currentOwner(c),
		Location: location,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrMessageRequired) {
			return apiError(c, fiber.StatusBadRequest, "Message required")
		}
		handler.logger.Error("assistant turn failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "Failed to process request")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"response":    result.Response,
		"toolResults": result.ToolResults,
	})
}
