package community

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Warmer periodically refreshes the cache for a fixed keyword set so that
// assistant turns rarely wait on the upstream.
type Warmer struct {
	cron     *cron.Cron
	cache    *CachedSource
	keywords []string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewWarmer(cache *CachedSource, keywords []string, schedule string, timeout time.Duration, logger *zap.Logger) (*Warmer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	warmer := &Warmer{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		cache:    cache,
		keywords: keywords,
		timeout:  timeout,
		logger:   logger,
	}
	if _, err := warmer.cron.AddFunc(strings.TrimSpace(schedule), warmer.Warm); err != nil {
		return nil, fmt.Errorf("schedule community warmer: %w", err)
	}
	return warmer, nil
}

func (warmer *Warmer) Start() {
	warmer.cron.Start()
	warmer.logger.Info("community warmer started", zap.Strings("keywords", warmer.keywords))
}

func (warmer *Warmer) Stop() {
	<-warmer.cron.Stop().Done()
	warmer.logger.Info("community warmer stopped")
}

func (warmer *Warmer) Warm() {
	for _, keyword := range warmer.keywords {
		ctx, cancel := context.WithTimeout(context.Background(), warmer.timeout)
		signal, err := warmer.cache.Refresh(ctx, keyword)
		cancel()
		if err != nil {
			warmer.logger.Warn("community warm failed", zap.String("keyword", keyword), zap.Error(err))
			continue
		}
		warmer.logger.Debug("community warmed",
			zap.String("keyword", keyword),
			zap.Bool("found", signal.Found),
			zap.Bool("synthetic", signal.IsSynthetic()),
		)
	}
}
