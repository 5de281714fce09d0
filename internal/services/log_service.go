package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/biolog/internal/models"
)

var (
	ErrOwnerRequired          = errors.New("owner id required")
	ErrSymptomRequired        = errors.New("symptom required")
	ErrInvalidDaysAgo         = errors.New("days ago out of range")
	ErrInvalidLogDate         = errors.New("invalid log date")
	ErrLogIDRequired          = errors.New("log id required")
	ErrSaveSymptomLogFailed   = errors.New("save symptom log failed")
	ErrLoadSymptomLogsFailed  = errors.New("load symptom logs failed")
	ErrDeleteSymptomLogFailed = errors.New("delete symptom log failed")
)

const (
	DefaultQueryDaysBack = 30
	MaxDaysAgo           = 3650
	MaxQueryResults      = 100
	DefaultListLimit     = 100
	MaxListLimit         = 500
	UnknownSymptomLabel  = "Unknown"
)

type SymptomLogStore interface {
	Insert(ctx context.Context, entry *models.SymptomLog) error
	Find(ctx context.Context, filter models.SymptomLogFilter, limit int) ([]models.SymptomLog, error)
	DeleteOne(ctx context.Context, ownerID string, id string) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type LogService struct {
	logs  SymptomLogStore
	locks *OwnerLocks
	now   Clock
	newID func() string
}

func NewLogService(logs SymptomLogStore, locks *OwnerLocks, clock Clock) *LogService {
	if locks == nil {
		locks = NewOwnerLocks()
	}
	return &LogService{
		logs:  logs,
		locks: locks,
		now:   resolveClock(clock),
		newID: uuid.NewString,
	}
}

type SymptomInput struct {
	OwnerID  string
	Label    string
	Severity int
	DaysAgo  int
	Tags     []string
	RawText  string
	Location *time.Location
}

type SavedSymptom struct {
	Entry   models.SymptomLog
	Message string
}

// NormalizeSeverity maps missing or out-of-range values to the default.
func NormalizeSeverity(severity int) int {
	if !models.IsValidSeverity(severity) {
		return models.DefaultSeverity
	}
	return severity
}

func (service *LogService) SaveSymptom(ctx context.Context, input SymptomInput) (SavedSymptom, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return SavedSymptom{}, ErrOwnerRequired
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return SavedSymptom{}, ErrSymptomRequired
	}
	if input.DaysAgo < 0 || input.DaysAgo > MaxDaysAgo {
		return SavedSymptom{}, ErrInvalidDaysAgo
	}

	location := resolveLocation(input.Location)
	now := service.now()
	occurredAt := DaysBefore(now, input.DaysAgo, location)
	entry := models.SymptomLog{
		ID:           service.newID(),
		OwnerID:      ownerID,
		OccurredDate: LocalDateString(occurredAt, location),
		OccurredAt:   occurredAt,
		Severity:     NormalizeSeverity(input.Severity),
		Label:        label,
		RawText:      input.RawText,
		Tags:         normalizeTags(input.Tags),
		CreatedAt:    now,
	}

	if err := service.insertLocked(ctx, &entry); err != nil {
		return SavedSymptom{}, err
	}

	return SavedSymptom{
		Entry: entry,
		Message: fmt.Sprintf(
			"Logged: %s (severity %d/4) for %s (%s)",
			entry.Label,
			entry.Severity,
			RelativeDayLabel(input.DaysAgo),
			entry.OccurredDate,
		),
	}, nil
}

type DirectLogInput struct {
	OwnerID   string
	Label     string
	Severity  int
	Date      string
	Timestamp *time.Time
	RawText   string
	Tags      []string
	Location  *time.Location
}

// CreateEntry stores a manually entered log. Missing fields fall back to the
// current instant, the unknown label and the default severity.
func (service *LogService) CreateEntry(ctx context.Context, input DirectLogInput) (models.SymptomLog, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return models.SymptomLog{}, ErrOwnerRequired
	}

	location := resolveLocation(input.Location)
	now := service.now()
	occurredAt := now
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		occurredAt = *input.Timestamp
	}

	occurredDate := LocalDateString(occurredAt, location)
	if date := strings.TrimSpace(input.Date); date != "" {
		if _, ok := ParseISODate(date); !ok {
			return models.SymptomLog{}, ErrInvalidLogDate
		}
		occurredDate = date
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = UnknownSymptomLabel
	}

	entry := models.SymptomLog{
		ID:           service.newID(),
		OwnerID:      ownerID,
		OccurredDate: occurredDate,
		OccurredAt:   occurredAt,
		Severity:     NormalizeSeverity(input.Severity),
		Label:        label,
		RawText:      input.RawText,
		Tags:         normalizeTags(input.Tags),
		CreatedAt:    now,
	}
	if err := service.insertLocked(ctx, &entry); err != nil {
		return models.SymptomLog{}, err
	}
	return entry, nil
}

func (service *LogService) insertLocked(ctx context.Context, entry *models.SymptomLog) error {
	release, err := service.locks.Acquire(ctx, entry.OwnerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveSymptomLogFailed, err)
	}
	defer release()

	if err := service.logs.Insert(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveSymptomLogFailed, err)
	}
	return nil
}

type RecentLogsQuery struct {
	OwnerID       string
	LabelContains string
	DaysBack      int
	Location      *time.Location
}

type LogView struct {
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Symptom  string   `json:"symptom"`
	Severity int      `json:"severity"`
	Tags     []string `json:"tags"`
	RawText  string   `json:"raw_text"`
}

// QueryRecent windows on creation time, not occurrence time. An anonymous
// caller gets an empty result.
func (service *LogService) QueryRecent(ctx context.Context, query RecentLogsQuery) ([]LogView, error) {
	ownerID := strings.TrimSpace(query.OwnerID)
	if ownerID == "" {
		return []LogView{}, nil
	}

	daysBack := query.DaysBack
	if daysBack <= 0 {
		daysBack = DefaultQueryDaysBack
	}
	daysBack = min(daysBack, MaxDaysAgo)
	location := resolveLocation(query.Location)
	cutoff := DaysBefore(service.now(), daysBack, location)

	entries, err := service.logs.Find(ctx, models.SymptomLogFilter{
		OwnerID:       ownerID,
		CreatedSince:  &cutoff,
		LabelContains: query.LabelContains,
	}, MaxQueryResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadSymptomLogsFailed, err)
	}

	views := make([]LogView, 0, len(entries))
	for _, entry := range entries {
		tags := entry.Tags
		if tags == nil {
			tags = []string{}
		}
		views = append(views, LogView{
			Date:     entry.OccurredDate,
			Time:     LocalTimeLabel(entry.OccurredAt, location),
			Symptom:  entry.Label,
			Severity: entry.Severity,
			Tags:     tags,
			RawText:  entry.RawText,
		})
	}
	return views, nil
}

func (service *LogService) List(ctx context.Context, ownerID string, labelContains string, limit int) ([]models.SymptomLog, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return []models.SymptomLog{}, nil
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	entries, err := service.logs.Find(ctx, models.SymptomLogFilter{OwnerID: ownerID, LabelContains: labelContains}, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadSymptomLogsFailed, err)
	}
	return entries, nil
}

// Delete removes one entry scoped by owner. A mismatched owner deletes
// nothing and is not an error.
func (service *LogService) Delete(ctx context.Context, ownerID string, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrLogIDRequired
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return ErrOwnerRequired
	}

	if _, err := service.logs.DeleteOne(ctx, ownerID, id); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteSymptomLogFailed, err)
	}
	return nil
}

func (service *LogService) Purge(ctx context.Context, ownerID string) (int64, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, ErrOwnerRequired
	}

	release, err := service.locks.Acquire(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeleteSymptomLogFailed, err)
	}
	defer release()

	deleted, err := service.logs.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeleteSymptomLogFailed, err)
	}
	return deleted, nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}

func isUsableWeight(value float64) bool {
	return value > 0 && !math.IsNaN(value) && !math.IsInf(value, 0)
}
