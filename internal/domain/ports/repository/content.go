package repository

import (
	"context"

	"stockus-platform/internal/domain/model"
)

type ReportRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Report) error
	// ListPublished returns published reports in their defined sort order;
	// the first-unlock gating rule depends on that ordering.
	ListPublished(ctx context.Context, tx Tx) ([]*model.Report, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Report, error)
}

type CohortRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Cohort) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Cohort, error)
	ListOpen(ctx context.Context, tx Tx) ([]*model.Cohort, error)
}
