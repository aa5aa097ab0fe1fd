package delivery

import (
	"context"
	"fmt"

	"taicc-readiness/internal/model"
	"taicc-readiness/internal/repository"
)

// ResultRecorder stores the result row in the results database.
type ResultRecorder interface {
	Record(ctx context.Context, sessionID string, row model.ResultRow) error
}

type repositoryRecorder struct {
	repo repository.ResultRepository
}

// NewResultRecorder returns nil when repo is nil.
func NewResultRecorder(repo repository.ResultRepository) ResultRecorder {
	if repo == nil {
		return nil
	}
	return &repositoryRecorder{repo: repo}
}

func (r *repositoryRecorder) Record(ctx context.Context, sessionID string, row model.ResultRow) error {
	if err := r.repo.SaveResult(ctx, model.NewAssessmentResult(sessionID, row)); err != nil {
		return fmt.Errorf("saving result failed: %w", err)
	}
	return nil
}
