package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/biolog/internal/db"
	"github.com/terraincognita07/biolog/internal/models"
	"github.com/terraincognita07/biolog/internal/services"
	"go.uber.org/zap"
)

var ErrOwnerFlagRequired = errors.New("--owner is required")

type SeedStore interface {
	Insert(ctx context.Context, entry *models.SymptomLog) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type seedEntry struct {
	daysAgo int
	label   string
	rawText string
	tags    []string
	weight  float64
}

// demoScenario builds up to a fluid retention alert: a 153 lbs reading the
// day after seeding is 3 lbs over the last weight.
var demoScenario = []seedEntry{
	{daysAgo: 7, label: "CHF Monitoring", rawText: "Starting CHF weight monitoring protocol", tags: []string{"chf", "monitoring"}},
	{daysAgo: 5, label: "Weight (CHF)", rawText: "Weight: 149 lbs", tags: []string{"weight", "chf"}, weight: 149},
	{daysAgo: 4, label: "Shortness of Breath", rawText: "Mild shortness of breath after walking", tags: []string{"chf", "breathing"}},
	{daysAgo: 3, label: "Weight (CHF)", rawText: "Weight: 149.5 lbs", tags: []string{"weight", "chf"}, weight: 149.5},
	{daysAgo: 2, label: "Fatigue", rawText: "Feeling more tired than usual", tags: []string{"chf", "fatigue"}},
	{daysAgo: 1, label: "Weight (CHF)", rawText: "Weight: 150 lbs", tags: []string{"weight", "chf"}, weight: 150},
}

type SeedResult struct {
	Deleted  int64
	Inserted []models.SymptomLog
}

func SeedDemoScenario(ctx context.Context, store SeedStore, ownerID string, clean bool, now time.Time, location *time.Location) (SeedResult, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return SeedResult{}, ErrOwnerFlagRequired
	}
	if location == nil {
		location = time.Local
	}

	result := SeedResult{Inserted: make([]models.SymptomLog, 0, len(demoScenario))}
	if clean {
		deleted, err := store.DeleteByOwner(ctx, ownerID)
		if err != nil {
			return SeedResult{}, fmt.Errorf("clean existing logs: %w", err)
		}
		result.Deleted = deleted
	}

	for _, seed := range demoScenario {
		occurredAt := services.DaysBefore(now, seed.daysAgo, location)
		entry := models.SymptomLog{
			ID:           uuid.NewString(),
			OwnerID:      ownerID,
			OccurredDate: services.LocalDateString(occurredAt, location),
			OccurredAt:   occurredAt,
			Severity:     models.DefaultSeverity,
			Label:        seed.label,
			RawText:      seed.rawText,
			Tags:         append([]string(nil), seed.tags...),
			CreatedAt:    occurredAt,
		}
		if seed.weight > 0 {
			weight := seed.weight
			entry.WeightValue = &weight
			entry.WeightUnit = models.WeightUnitPounds
		}
		if err := store.Insert(ctx, &entry); err != nil {
			return SeedResult{}, fmt.Errorf("insert seed log %q: %w", seed.label, err)
		}
		result.Inserted = append(result.Inserted, entry)
	}
	return result, nil
}

func RunSeedCommand(ctx context.Context, dbPath string, ownerID string, clean bool, location *time.Location, out io.Writer, logger *zap.Logger) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrOwnerFlagRequired
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		_ = db.Close(database)
	}()

	repositories := db.NewRepositories(database)
	result, err := SeedDemoScenario(ctx, repositories.SymptomLogs, ownerID, clean, time.Now(), location)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Seeded %d logs for %s\n", len(result.Inserted), strings.TrimSpace(ownerID))
	if clean {
		fmt.Fprintf(out, "Removed %d existing logs first.\n", result.Deleted)
	}
	for _, entry := range result.Inserted {
		fmt.Fprintf(out, "  %s  %s\n", entry.OccurredDate, entry.Label)
	}
	fmt.Fprintln(out, "Reporting 153 lbs today is a 3 lbs gain over yesterday and activates the fluid protocol.")
	return nil
}

func RunPurgeCommand(ctx context.Context, dbPath string, ownerID string, out io.Writer, logger *zap.Logger) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrOwnerFlagRequired
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		_ = db.Close(database)
	}()

	repositories := db.NewRepositories(database)
	logs := services.NewLogService(repositories.SymptomLogs, services.NewOwnerLocks(), nil)
	deleted, err := logs.Purge(ctx, ownerID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted %d logs for %s\n", deleted, strings.TrimSpace(ownerID))
	return nil
}
