package assistant

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/biolog/internal/llm"
	"github.com/terraincognita07/biolog/internal/models"
	"github.com/terraincognita07/biolog/internal/services"
)

var assistantNow = time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu      sync.Mutex
	entries []models.SymptomLog
	failAll bool
}

func (store *memoryStore) Insert(_ context.Context, entry *models.SymptomLog) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failAll {
		return fmt.Errorf("store offline")
	}
	store.entries = append(store.entries, *entry)
	return nil
}

func (store *memoryStore) Find(_ context.Context, filter models.SymptomLogFilter, limit int) ([]models.SymptomLog, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.failAll {
		return nil, fmt.Errorf("store offline")
	}

	matches := make([]models.SymptomLog, 0)
	for _, entry := range store.entries {
		if entry.OwnerID != filter.OwnerID {
			continue
		}
		if filter.CreatedSince != nil && entry.CreatedAt.Before(*filter.CreatedSince) {
			continue
		}
		if filter.LabelContains != "" && !strings.Contains(strings.ToLower(entry.Label), strings.ToLower(filter.LabelContains)) {
			continue
		}
		if filter.WeightRelatedOnly && !entry.IsWeightRelated() {
			continue
		}
		matches = append(matches, entry)
	}
	slices.SortStableFunc(matches, func(left, right models.SymptomLog) int {
		return right.OccurredAt.Compare(left.OccurredAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (store *memoryStore) DeleteOne(_ context.Context, ownerID string, id string) (int64, error) {
	return 0, nil
}

func (store *memoryStore) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	return 0, nil
}

func (store *memoryStore) snapshot() []models.SymptomLog {
	store.mu.Lock()
	defer store.mu.Unlock()
	return append([]models.SymptomLog(nil), store.entries...)
}

type signalSource struct {
	signal models.CommunitySignal
	err    error
}

func (source signalSource) Lookup(context.Context, string) (models.CommunitySignal, error) {
	return source.signal, source.err
}

func newTestExecutor(store *memoryStore, source services.CommunitySource, parallel bool) *Executor {
	locks := services.NewOwnerLocks()
	clock := func() time.Time { return assistantNow }
	logs := services.NewLogService(store, locks, clock)
	weights := services.NewWeightService(store, locks, clock)
	trends := services.NewTrendService(source, time.Second, clock, time.UTC, nil)
	return NewExecutor(logs, weights, trends, parallel, nil)
}

type modelCall struct {
	messages []llm.Message
	tools    []llm.Tool
}

type scriptedModel struct {
	mu        sync.Mutex
	responses []llm.Response
	errs      []error
	calls     []modelCall
}

func (model *scriptedModel) Complete(_ context.Context, messages []llm.Message, tools []llm.Tool) (llm.Response, error) {
	model.mu.Lock()
	defer model.mu.Unlock()

	index := len(model.calls)
	model.calls = append(model.calls, modelCall{messages: slices.Clone(messages), tools: tools})
	if index < len(model.errs) && model.errs[index] != nil {
		return llm.Response{}, model.errs[index]
	}
	if index >= len(model.responses) {
		return llm.Response{}, fmt.Errorf("unexpected model call %d", index+1)
	}
	return model.responses[index], nil
}

func toolCall(id string, name string, arguments string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Arguments: arguments}
}

func weightEntry(owner string, weight float64, occurredAt time.Time) models.SymptomLog {
	return models.SymptomLog{
		ID:           fmt.Sprintf("weight-%v", weight),
		OwnerID:      owner,
		OccurredDate: occurredAt.Format("2006-01-02"),
		OccurredAt:   occurredAt,
		Severity:     1,
		Label:        "Weight",
		RawText:      fmt.Sprintf("Weight: %v lbs", weight),
		Tags:         []string{"weight"},
		WeightValue:  &weight,
		CreatedAt:    occurredAt,
	}
}
