package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/biolog/internal/community"
	"github.com/terraincognita07/biolog/internal/models"
	"go.uber.org/zap"
)

type trendResponse struct {
	Success bool `json:"success"`
	models.CommunitySignal
}

type multiTrendRequest struct {
	Keywords []string `json:"keywords"`
	DemoMode bool     `json:"demoMode"`
}

type multiTrendResponse struct {
	Success bool `json:"success"`
	community.MultiResult
}

// GetPublicTrend exposes the raw adapter result. Demo data is only returned
// when the caller asks for it.
func (handler *Handler) GetPublicTrend(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return apiError(c, fiber.StatusBadRequest, "Keyword parameter required")
	}

	signal, err := handler.trendSource(c.Query("demo") == "true").Lookup(c.UserContext(), keyword)
	if err != nil {
		handler.logger.Warn("public trend lookup failed", zap.String("keyword", keyword), zap.Error(err))
		return apiError(c, fiber.StatusBadGateway, "Failed to check community trends")
	}
	return c.JSON(trendResponse{Success: true, CommunitySignal: signal})
}

func (handler *Handler) CheckPublicTrends(c *fiber.Ctx) error {
	var request multiTrendRequest
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if len(request.Keywords) == 0 {
		return apiError(c, fiber.StatusBadRequest, "Keywords array required")
	}

	result := community.LookupMany(c.UserContext(), handler.trendSource(request.DemoMode), request.Keywords, handler.now())
	return c.JSON(multiTrendResponse{Success: true, MultiResult: result})
}

func (handler *Handler) trendSource(demo bool) community.Source {
	if demo {
		return community.DemoSource{}
	}
	return handler.community
}
