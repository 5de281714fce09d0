package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/biolog/internal/db"
	"github.com/terraincognita07/biolog/internal/security"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	if handler.db == nil {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	version, err := db.SchemaVersion(handler.db)
	if err != nil {
		handler.logger.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "schema": version})
}

func (handler *Handler) CreateAnonymousOwner(c *fiber.Ctx) error {
	ownerID, err := security.NewAnonymousOwnerID()
	if err != nil {
		handler.logger.Error("generate owner id failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "Failed to create owner")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "ownerId": ownerID})
}
