package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
)

var testNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func fixedClock(value time.Time) Clock {
	return func() time.Time { return value }
}

type symptomLogStoreStub struct {
	mu        sync.Mutex
	entries   []models.SymptomLog
	insertErr error
	findErr   error
	deleteErr error
	inserts   int
}

func newSymptomLogStoreStub() *symptomLogStoreStub {
	return &symptomLogStoreStub{}
}

func (stub *symptomLogStoreStub) Insert(_ context.Context, entry *models.SymptomLog) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.insertErr != nil {
		return stub.insertErr
	}
	stub.inserts++
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *symptomLogStoreStub) Find(_ context.Context, filter models.SymptomLogFilter, limit int) ([]models.SymptomLog, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.findErr != nil {
		return nil, stub.findErr
	}

	matches := make([]models.SymptomLog, 0)
	for _, entry := range stub.entries {
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
		if byOccurred := right.OccurredAt.Compare(left.OccurredAt); byOccurred != 0 {
			return byOccurred
		}
		return right.CreatedAt.Compare(left.CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (stub *symptomLogStoreStub) DeleteOne(_ context.Context, ownerID string, id string) (int64, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.deleteErr != nil {
		return 0, stub.deleteErr
	}
	before := len(stub.entries)
	stub.entries = slices.DeleteFunc(stub.entries, func(entry models.SymptomLog) bool {
		return entry.ID == id && entry.OwnerID == ownerID
	})
	return int64(before - len(stub.entries)), nil
}

func (stub *symptomLogStoreStub) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.deleteErr != nil {
		return 0, stub.deleteErr
	}
	before := len(stub.entries)
	stub.entries = slices.DeleteFunc(stub.entries, func(entry models.SymptomLog) bool {
		return entry.OwnerID == ownerID
	})
	return int64(before - len(stub.entries)), nil
}

func (stub *symptomLogStoreStub) snapshot() []models.SymptomLog {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return append([]models.SymptomLog(nil), stub.entries...)
}
