package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taicc-readiness/internal/model"
)

type ResultRepository interface {
	SaveResult(ctx context.Context, result *model.AssessmentResult) error
	ListResults(ctx context.Context, limit int) ([]model.AssessmentResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

// SaveResult stores one completed assessment. Saving the same session twice
// keeps the first row.
func (r *resultRepository) SaveResult(ctx context.Context, result *model.AssessmentResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(result).Error
}

// ListResults returns the newest results first.
func (r *resultRepository) ListResults(ctx context.Context, limit int) ([]model.AssessmentResult, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var results []model.AssessmentResult
	err := r.db.WithContext(ctx).Order("completed_at DESC, id DESC").Limit(limit).Find(&results).Error
	return results, err
}
