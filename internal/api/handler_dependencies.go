package api

import (
	"context"
	"time"

	"github.com/terraincognita07/biolog/internal/assistant"
	"github.com/terraincognita07/biolog/internal/community"
	"github.com/terraincognita07/biolog/internal/models"
	"github.com/terraincognita07/biolog/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Asker interface {
	Ask(ctx context.Context, request assistant.TurnRequest) (assistant.TurnResult, error)
}

type LogManager interface {
	CreateEntry(ctx context.Context, input services.DirectLogInput) (models.SymptomLog, error)
	List(ctx context.Context, ownerID string, labelContains string, limit int) ([]models.SymptomLog, error)
	Delete(ctx context.Context, ownerID string, id string) error
}

// Dependencies wires the handler. Database is only used for health checks.
type Dependencies struct {
	Database      *gorm.DB
	Logs          LogManager
	Assistant     Asker
	Community     community.Source
	Location      *time.Location
	JWTSecret     string
	AskRateLimit  int
	AskRateWindow time.Duration
	Logger        *zap.Logger
}
