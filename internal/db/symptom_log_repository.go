package db

import (
	"context"
	"strings"

	"github.com/terraincognita07/biolog/internal/models"
	"gorm.io/gorm"
)

type SymptomLogRepository struct {
	database *gorm.DB
}

func NewSymptomLogRepository(database *gorm.DB) *SymptomLogRepository {
	return &SymptomLogRepository{database: database}
}

func (repo *SymptomLogRepository) Insert(ctx context.Context, entry *models.SymptomLog) error {
	entry.OccurredAt = entry.OccurredAt.UTC()
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	return repo.database.WithContext(ctx).Create(entry).Error
}

// Find returns the owner's entries newest first by occurrence. A non-positive
// limit returns every match.
func (repo *SymptomLogRepository) Find(ctx context.Context, filter models.SymptomLogFilter, limit int) ([]models.SymptomLog, error) {
	query := repo.database.WithContext(ctx).
		Model(&models.SymptomLog{}).
		Where("owner_id = ?", filter.OwnerID)

	if filter.CreatedSince != nil {
		query = query.Where("created_at >= ?", filter.CreatedSince.UTC())
	}
	if label := strings.ToLower(strings.TrimSpace(filter.LabelContains)); label != "" {
		query = query.Where(`LOWER(label) LIKE ? ESCAPE '\'`, "%"+escapeLikePattern(label)+"%")
	}
	if filter.WeightRelatedOnly {
		clause, args := weightRelatedClause()
		query = query.Where(clause, args...)
	}

	query = query.Order("occurred_at DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	entries := make([]models.SymptomLog, 0)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *SymptomLogRepository) DeleteOne(ctx context.Context, ownerID string, id string) (int64, error) {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.SymptomLog{})
	return result.RowsAffected, result.Error
}

func (repo *SymptomLogRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result := repo.database.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.SymptomLog{})
	return result.RowsAffected, result.Error
}

func weightRelatedClause() (string, []any) {
	markers := models.WeightRelatedMarkers()
	parts := make([]string, 0, 1+2*len(markers))
	args := make([]any, 0, 2*len(markers))

	parts = append(parts, "weight_value IS NOT NULL")
	for _, marker := range markers {
		pattern := "%" + marker + "%"
		parts = append(parts, "LOWER(label) LIKE ?", "LOWER(COALESCE(tags, '')) LIKE ?")
		args = append(args, pattern, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func escapeLikePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
