package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
	"go.uber.org/zap"
)

var ErrKeywordRequired = errors.New("keyword required")

const DefaultCommunityTimeout = 6 * time.Second

type CommunitySource interface {
	Lookup(ctx context.Context, keyword string) (models.CommunitySignal, error)
}

type TrendCheck struct {
	Found     bool   `json:"found"`
	IsDemo    bool   `json:"isDemo"`
	Source    string `json:"source,omitempty"`
	Headline  string `json:"headline,omitempty"`
	URL       string `json:"url,omitempty"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message"`
}

type TrendService struct {
	source   CommunitySource
	timeout  time.Duration
	now      Clock
	location *time.Location
	logger   *zap.Logger
}

func NewTrendService(source CommunitySource, timeout time.Duration, clock Clock, location *time.Location, logger *zap.Logger) *TrendService {
	if timeout <= 0 {
		timeout = DefaultCommunityTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendService{
		source:   source,
		timeout:  timeout,
		now:      resolveClock(clock),
		location: resolveLocation(location),
		logger:   logger,
	}
}

// Check never fails because of the upstream source: errors, timeouts, demo
// data and stale headlines all degrade to a not-found result.
func (service *TrendService) Check(ctx context.Context, keyword string) (TrendCheck, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return TrendCheck{}, ErrKeywordRequired
	}

	notFound := TrendCheck{
		Found:   false,
		Message: fmt.Sprintf("No current community alerts found for %q", keyword),
	}

	lookupCtx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	signal, err := service.source.Lookup(lookupCtx, keyword)
	if err != nil {
		service.logger.Warn("community lookup failed", zap.String("keyword", keyword), zap.Error(err))
		return notFound, nil
	}

	service.logger.Debug("community lookup",
		zap.String("keyword", keyword),
		zap.Bool("found", signal.Found),
		zap.String("source", signal.Source),
		zap.Bool("synthetic", signal.IsSynthetic()),
	)

	if !signal.Found {
		return notFound, nil
	}
	if signal.IsSynthetic() {
		notFound.IsDemo = true
		return notFound, nil
	}
	if !models.IsRelevantHeadline(signal.Headline, service.now().In(service.location)) {
		return notFound, nil
	}

	return TrendCheck{
		Found:     true,
		IsDemo:    false,
		Source:    signal.Source,
		Headline:  signal.Headline,
		URL:       signal.URL,
		Context:   signal.Context,
		Timestamp: signal.Timestamp,
		Message:   fmt.Sprintf("Found community reports about %q from %s", keyword, signal.Source),
	}, nil
}
