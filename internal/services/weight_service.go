package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/biolog/internal/models"
)

var (
	ErrInvalidWeight   = errors.New("valid weight required")
	ErrLogWeightFailed = errors.New("log weight failed")
)

const (
	weightLookbackDays  = 30
	weightLookbackLimit = 10
)

type WeightService struct {
	logs  SymptomLogStore
	locks *OwnerLocks
	now   Clock
	newID func() string
}

func NewWeightService(logs SymptomLogStore, locks *OwnerLocks, clock Clock) *WeightService {
	if locks == nil {
		locks = NewOwnerLocks()
	}
	return &WeightService{
		logs:  logs,
		locks: locks,
		now:   resolveClock(clock),
		newID: uuid.NewString,
	}
}

type WeightInput struct {
	OwnerID   string
	Weight    float64
	Condition string
	Location  *time.Location
}

type WeightReading struct {
	Weight         float64
	PreviousWeight *float64
	WeightChange   float64
	WeightGain     float64
	Severity       int
	Action         models.ProtocolAction
	AlertMessage   string
	Entry          models.SymptomLog
}

// LogWeight records a reading and applies the fluid retention protocol
// against the owner's latest reading from the trailing 30 days. The read and
// the write happen under the owner's lock so two readings cannot both compare
// against the same predecessor.
func (service *WeightService) LogWeight(ctx context.Context, input WeightInput) (WeightReading, error) {
	if !isUsableWeight(input.Weight) {
		return WeightReading{}, ErrInvalidWeight
	}
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return WeightReading{}, ErrOwnerRequired
	}

	release, err := service.locks.Acquire(ctx, ownerID)
	if err != nil {
		return WeightReading{}, fmt.Errorf("%w: %v", ErrLogWeightFailed, err)
	}
	defer release()

	location := resolveLocation(input.Location)
	now := service.now()
	cutoff := DaysBefore(now, weightLookbackDays, location)

	recent, err := service.logs.Find(ctx, models.SymptomLogFilter{
		OwnerID:           ownerID,
		CreatedSince:      &cutoff,
		WeightRelatedOnly: true,
	}, weightLookbackLimit)
	if err != nil {
		return WeightReading{}, fmt.Errorf("%w: %v", ErrLogWeightFailed, err)
	}

	reading := WeightReading{Weight: input.Weight}
	if previous, ok := PreviousWeight(recent); ok {
		reading.PreviousWeight = &previous
		reading.WeightChange = roundWeightDelta(input.Weight - previous)
	}
	reading.WeightGain = max(reading.WeightChange, 0)

	decision := EvaluateWeightGain(reading.WeightGain)
	reading.Severity = decision.Severity
	reading.Action = decision.Action
	reading.AlertMessage = decision.AlertMessage

	condition := strings.TrimSpace(input.Condition)
	weight := input.Weight
	change := reading.WeightChange
	reading.Entry = models.SymptomLog{
		ID:                  service.newID(),
		OwnerID:             ownerID,
		OccurredDate:        LocalDateString(now, location),
		OccurredAt:          now,
		Severity:            reading.Severity,
		Label:               weightLabel(condition),
		RawText:             weightRawText(input.Weight, reading.PreviousWeight),
		Tags:                weightTags(condition),
		WeightValue:         &weight,
		PreviousWeightValue: reading.PreviousWeight,
		WeightDelta:         &change,
		WeightUnit:          models.WeightUnitPounds,
		ProtocolAction:      reading.Action,
		CreatedAt:           now,
	}

	if err := service.logs.Insert(ctx, &reading.Entry); err != nil {
		return WeightReading{}, fmt.Errorf("%w: %v", ErrLogWeightFailed, err)
	}
	return reading, nil
}

func weightLabel(condition string) string {
	if condition == "" {
		return "Weight"
	}
	return fmt.Sprintf("Weight (%s)", condition)
}

func weightRawText(weight float64, previous *float64) string {
	text := fmt.Sprintf("Weight: %s lbs", formatWeight(weight))
	if previous != nil {
		text += fmt.Sprintf(" (previous: %s lbs)", formatWeight(*previous))
	}
	return text
}

func weightTags(condition string) []string {
	tags := []string{"weight"}
	if condition != "" {
		tags = append(tags, strings.ToLower(condition))
	}
	return tags
}

func formatWeight(value float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
}
