package community

import (
	"context"
	"strings"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
	"golang.org/x/sync/errgroup"
)

const maxParallelLookups = 4

type MultiResult struct {
	Trends    []models.CommunitySignal `json:"trends"`
	Checked   []string                 `json:"checked"`
	Timestamp string                   `json:"timestamp"`
}

// LookupMany checks every keyword and keeps the found signals in keyword
// order. A failing keyword is skipped.
func LookupMany(ctx context.Context, source Source, keywords []string, now time.Time) MultiResult {
	checked := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			checked = append(checked, trimmed)
		}
	}

	signals := make([]models.CommunitySignal, len(checked))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelLookups)
	for index, keyword := range checked {
		group.Go(func() error {
			signal, err := source.Lookup(groupCtx, keyword)
			if err == nil {
				signals[index] = signal
			}
			return nil
		})
	}
	_ = group.Wait()

	trends := make([]models.CommunitySignal, 0, len(signals))
	for _, signal := range signals {
		if signal.Found {
			trends = append(trends, signal)
		}
	}
	return MultiResult{
		Trends:    trends,
		Checked:   checked,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
