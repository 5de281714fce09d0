package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/biolog/internal/services"
	"go.uber.org/zap"
)

type createLogRequest struct {
	Symptom   string   `json:"symptom"`
	Level     *int     `json:"level"`
	Count     *int     `json:"count"`
	Date      string   `json:"date"`
	Timestamp string   `json:"timestamp"`
	RawText   string   `json:"raw_text"`
	Tags      []string `json:"tags"`
	TimeZone  string   `json:"timeZone"`
}

// severity prefers level over count. Zero counts as missing.
func (request createLogRequest) severity() int {
	for _, candidate := range []*int{request.Level, request.Count} {
		if candidate != nil && *candidate != 0 {
			return *candidate
		}
	}
	return 0
}

func (handler *Handler) ListLogs(c *fiber.Ctx) error {
	limit := services.DefaultListLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := handler.logs.List(c.UserContext(), currentOwner(c), c.Query("symptom"), limit)
	if err != nil {
		handler.logger.Error("list logs failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "Failed to fetch logs")
	}
	return c.JSON(fiber.Map{"success": true, "logs": entries})
}

func (handler *Handler) CreateLog(c *fiber.Ctx) error {
	var request createLogRequest
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if currentOwner(c) == "" {
		return apiError(c, fiber.StatusBadRequest, "User ID required")
	}
	location, ok := handler.requestLocation(request.TimeZone)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "Invalid time zone")
	}

	var timestamp *time.Time
	if raw := strings.TrimSpace(request.Timestamp); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "Invalid timestamp")
		}
		timestamp = &parsed
	}

	entry, err := handler.logs.CreateEntry(c.UserContext(), services.DirectLogInput{
		OwnerID:   currentOwner(c),
		Label:     request.Symptom,
		Severity:  request.severity(),
		Date:      request.Date,
		Timestamp: timestamp,
		RawText:   request.RawText,
		Tags:      request.Tags,
		Location:  location,
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true, "log": entry})
	case errors.Is(err, services.ErrOwnerRequired):
		return apiError(c, fiber.StatusBadRequest, "User ID required")
	case errors.Is(err, services.ErrInvalidLogDate):
		return apiError(c, fiber.StatusBadRequest, "Invalid date")
	default:
		handler.logger.Error("create log failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "Failed to create log")
	}
}

func (handler *Handler) DeleteLog(c *fiber.Ctx) error {
	err := handler.logs.Delete(c.UserContext(), currentOwner(c), c.Query("id"))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, services.ErrLogIDRequired):
		return apiError(c, fiber.StatusBadRequest, "Log ID required")
	case errors.Is(err, services.ErrOwnerRequired):
		return apiError(c, fiber.StatusBadRequest, "User ID required")
	default:
		handler.logger.Error("delete log failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "Failed to delete log")
	}
}
