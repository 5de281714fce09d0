package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/biolog/internal/community"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAskRateLimit  = 30
	defaultAskRateWindow = time.Minute
)

type Handler struct {
	db            *gorm.DB
	logs          LogManager
	assistant     Asker
	community     community.Source
	location      *time.Location
	jwtSecret     []byte
	askLimiter    *attemptLimiter
	askRateLimit  int
	askRateWindow time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Logs == nil {
		return nil, errors.New("log manager is required")
	}
	if deps.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if deps.Community == nil {
		return nil, errors.New("community source is required")
	}

	location := deps.Location
	if location == nil {
		location = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rateLimit := deps.AskRateLimit
	if rateLimit <= 0 {
		rateLimit = defaultAskRateLimit
	}
	rateWindow := deps.AskRateWindow
	if rateWindow <= 0 {
		rateWindow = defaultAskRateWindow
	}

	return &Handler{
		db:            deps.Database,
		logs:          deps.Logs,
		assistant:     deps.Assistant,
		community:     deps.Community,
		location:      location,
		jwtSecret:     []byte(deps.JWTSecret),
		askLimiter:    newAttemptLimiter(),
		askRateLimit:  rateLimit,
		askRateWindow: rateWindow,
		now:           time.Now,
		logger:        logger,
	}, nil
}
