package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}

// decodeJSONBody accepts an empty body as the zero value.
func decodeJSONBody(c *fiber.Ctx, target any) error {
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return nil
	}
	return json.Unmarshal(c.Body(), target)
}

func (handler *Handler) requestLocation(name string) (*time.Location, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return handler.location, true
	}
	location, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, false
	}
	return location, true
}
