package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	api := app.Group("/api")
	api.Post("/ask", handler.ResolveOwner, handler.Ask)

	logs := api.Group("/logs", handler.ResolveOwner)
	logs.Get("", handler.ListLogs)
	logs.Post("", handler.CreateLog)
	logs.Delete("", handler.DeleteLog)

	trends := api.Group("/public-trends")
	trends.Get("", handler.GetPublicTrend)
	trends.Post("", handler.CheckPublicTrends)

	api.Post("/owners/anonymous", handler.CreateAnonymousOwner)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// NotFound keeps unknown API paths on the JSON error shape.
func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "Not found")
}
