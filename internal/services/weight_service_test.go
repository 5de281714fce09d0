package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
)

func TestLogWeightFirstReadingHasNoAlert(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	service := NewWeightService(store, nil, fixedClock(testNow))

	reading, err := service.LogWeight(context.Background(), WeightInput{OwnerID: "owner", Weight: 150, Location: time.UTC})
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if reading.PreviousWeight != nil || reading.WeightChange != 0 || reading.Severity != 1 || reading.AlertMessage != "" {
		t.Fatalf("unexpected first reading: %#v", reading)
	}
	if reading.Entry.RawText != "Weight: 150 lbs" || reading.Entry.Label != "Weight" {
		t.Fatalf("unexpected stored text: %q / %q", reading.Entry.Label, reading.Entry.RawText)
	}
	if reading.Entry.WeightDelta == nil || *reading.Entry.WeightDelta != 0 {
		t.Fatalf("expected zero delta to be stored, got %v", reading.Entry.WeightDelta)
	}
}

func TestLogWeightProtocolActivation(t *testing.T) {
	t.Parallel()

	previous := 150.0
	store := newSymptomLogStoreStub()
	store.entries = []models.SymptomLog{{
		ID:           "previous",
		OwnerID:      "owner",
		Label:        "Weight",
		WeightValue:  &previous,
		Severity:     1,
		OccurredDate: "2026-03-09",
		OccurredAt:   testNow.AddDate(0, 0, -1),
		CreatedAt:    testNow.AddDate(0, 0, -1),
	}}
	service := NewWeightService(store, nil, fixedClock(testNow))

	reading, err := service.LogWeight(context.Background(), WeightInput{OwnerID: "owner", Weight: 153, Condition: "CHF", Location: time.UTC})
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}

	if reading.WeightGain != 3 || reading.Severity != 4 || reading.Action != models.ProtocolActionTakeLasix {
		t.Fatalf("expected protocol activation, got %#v", reading)
	}
	if reading.AlertMessage != "⚠️ PROTOCOL ACTIVATED: Weight gain of 3.0 lbs detected. Action required: TAKE_LASIX" {
		t.Fatalf("unexpected alert: %q", reading.AlertMessage)
	}

	entry := reading.Entry
	if entry.Label != "Weight (CHF)" || entry.RawText != "Weight: 153 lbs (previous: 150 lbs)" {
		t.Fatalf("unexpected entry text: %q / %q", entry.Label, entry.RawText)
	}
	if len(entry.Tags) != 2 || entry.Tags[0] != "weight" || entry.Tags[1] != "chf" {
		t.Fatalf("unexpected tags: %v", entry.Tags)
	}
	if entry.Severity != 4 || entry.ProtocolAction != models.ProtocolActionTakeLasix || entry.WeightUnit != models.WeightUnitPounds {
		t.Fatalf("unexpected entry protocol fields: %#v", entry)
	}
}

func TestLogWeightUsesTextReadingsAndClampsLoss(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	store.entries = []models.SymptomLog{{
		ID:           "monitoring",
		OwnerID:      "owner",
		Label:        "CHF Monitoring",
		RawText:      "Morning weight 152.5 lbs",
		Severity:     2,
		OccurredDate: "2026-03-08",
		OccurredAt:   testNow.AddDate(0, 0, -2),
		CreatedAt:    testNow.AddDate(0, 0, -2),
	}}
	service := NewWeightService(store, nil, fixedClock(testNow))

	reading, err := service.LogWeight(context.Background(), WeightInput{OwnerID: "owner", Weight: 151, Location: time.UTC})
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if reading.PreviousWeight == nil || *reading.PreviousWeight != 152.5 {
		t.Fatalf("expected previous weight from raw text, got %v", reading.PreviousWeight)
	}
	if reading.WeightChange != -1.5 || reading.WeightGain != 0 || reading.Severity != 1 {
		t.Fatalf("expected loss to clamp to zero gain, got %#v", reading)
	}
}

func TestLogWeightTreatsZeroReadingAsNoPrevious(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	store.entries = []models.SymptomLog{{
		ID:           "fluid",
		OwnerID:      "owner",
		Label:        "Fluid retention",
		Tags:         []string{"fluid"},
		RawText:      "Ankles swollen, gained 0 lbs though",
		Severity:     2,
		OccurredDate: "2026-03-09",
		OccurredAt:   testNow.AddDate(0, 0, -1),
		CreatedAt:    testNow.AddDate(0, 0, -1),
	}}
	service := NewWeightService(store, nil, fixedClock(testNow))

	reading, err := service.LogWeight(context.Background(), WeightInput{OwnerID: "owner", Weight: 150, Location: time.UTC})
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if reading.PreviousWeight != nil {
		t.Fatalf("expected no previous weight, got %v", *reading.PreviousWeight)
	}
	if reading.WeightGain != 0 || reading.Severity != 1 || reading.Action != models.ProtocolActionNone || reading.AlertMessage != "" {
		t.Fatalf("expected no protocol alert, got %#v", reading)
	}
}

func TestLogWeightIgnoresReadingsOutsideWindow(t *testing.T) {
	t.Parallel()

	old := 140.0
	store := newSymptomLogStoreStub()
	store.entries = []models.SymptomLog{{
		ID:          "old",
		OwnerID:     "owner",
		Label:       "Weight",
		WeightValue: &old,
		OccurredAt:  testNow.AddDate(0, 0, -40),
		CreatedAt:   testNow.AddDate(0, 0, -40),
	}}
	service := NewWeightService(store, nil, fixedClock(testNow))

	reading, err := service.LogWeight(context.Background(), WeightInput{OwnerID: "owner", Weight: 150, Location: time.UTC})
	if err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if reading.PreviousWeight != nil {
		t.Fatalf("expected no previous weight outside 30 days, got %v", *reading.PreviousWeight)
	}
}

func TestLogWeightValidation(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	store.findErr = errors.New("store must not be read")
	service := NewWeightService(store, nil, fixedClock(testNow))
	ctx := context.Background()

	for _, weight := range []float64{0, -150, math.NaN(), math.Inf(1)} {
		if _, err := service.LogWeight(ctx, WeightInput{OwnerID: "owner", Weight: weight}); !errors.Is(err, ErrInvalidWeight) {
			t.Fatalf("weight %v: expected ErrInvalidWeight, got %v", weight, err)
		}
	}
	if _, err := service.LogWeight(ctx, WeightInput{Weight: 150}); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
	// Weight is validated before identity.
	if _, err := service.LogWeight(ctx, WeightInput{}); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight first, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("expected no writes, got %d", store.inserts)
	}
}

func TestLogWeightSameDayReadingsCompound(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	clock := testNow
	service := NewWeightService(store, nil, func() time.Time { return clock })
	ctx := context.Background()

	steps := []struct {
		weight       float64
		wantSeverity int
	}{
		{weight: 150, wantSeverity: 1},
		{weight: 151.5, wantSeverity: 2},
		{weight: 153, wantSeverity: 2},
	}
	for _, step := range steps {
		reading, err := service.LogWeight(ctx, WeightInput{OwnerID: "owner", Weight: step.weight, Location: time.UTC})
		if err != nil {
			t.Fatalf("log %v: %v", step.weight, err)
		}
		if reading.Severity != step.wantSeverity {
			t.Fatalf("weight %v: expected severity %d, got %d", step.weight, step.wantSeverity, reading.Severity)
		}
		clock = clock.Add(time.Minute)
	}
}

func TestLogWeightConcurrentReadingsSeePredecessor(t *testing.T) {
	t.Parallel()

	store := newSymptomLogStoreStub()
	service := NewWeightService(store, nil, fixedClock(testNow))
	ctx := context.Background()

	var wg sync.WaitGroup
	previousSeen := make(chan bool, 2)
	for _, weight := range []float64{150, 151} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reading, err := service.LogWeight(ctx, WeightInput{OwnerID: "owner", Weight: weight, Location: time.UTC})
			if err != nil {
				t.Errorf("log weight: %v", err)
				return
			}
			previousSeen <- reading.PreviousWeight != nil
		}()
	}
	wg.Wait()
	close(previousSeen)

	withPrevious := 0
	for seen := range previousSeen {
		if seen {
			withPrevious++
		}
	}
	if withPrevious != 1 {
		t.Fatalf("expected exactly one reading to compare against the other, got %d", withPrevious)
	}
}
