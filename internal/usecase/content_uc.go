// File: internal/usecase/content_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ ContentUseCase = (*contentUC)(nil)

// ContentUseCase serves tier-gated reports and open cohorts. Gating is
// presentation-side masking, not row filtering: lower tiers see the full
// catalogue with member-only fields blanked, which is what drives upgrades.
type ContentUseCase interface {
	ListReports(ctx context.Context, tier model.Tier) ([]*model.Report, error)
	GetReport(ctx context.Context, tier model.Tier, id string) (*model.Report, error)
	ListOpenCohorts(ctx context.Context) ([]*model.Cohort, error)
}

type contentUC struct {
	reports repository.ReportRepository
	cohorts repository.CohortRepository
	log     *zerolog.Logger
}

func NewContentUseCase(reports repository.ReportRepository, cohorts repository.CohortRepository, logger *zerolog.Logger) *contentUC {
	return &contentUC{reports: reports, cohorts: cohorts, log: logger}
}

// ListReports returns the published catalogue in sort order, masked for the
// caller's tier. Non-members get every preview-flagged report plus the first
// non-preview one unlocked as a teaser; everything else is masked.
func (u *contentUC) ListReports(ctx context.Context, tier model.Tier) ([]*model.Report, error) {
	reports, err := u.reports.ListPublished(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	if tier.AtLeast(model.TierMember) {
		return reports, nil
	}

	out := make([]*model.Report, 0, len(reports))
	teaserUsed := false
	for _, r := range reports {
		switch {
		case r.FreePreview:
			out = append(out, r)
		case !teaserUsed:
			teaserUsed = true
			out = append(out, r)
		default:
			out = append(out, r.Masked())
		}
	}
	return out, nil
}

// GetReport applies the same gate as the listing. The teaser slot is
// positional, so a single fetch must re-derive which report holds it.
func (u *contentUC) GetReport(ctx context.Context, tier model.Tier, id string) (*model.Report, error) {
	r, err := u.reports.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if !r.Published {
		return nil, domain.ErrNotFound
	}
	if tier.AtLeast(model.TierMember) || r.FreePreview {
		return r, nil
	}

	unlocked, err := u.firstNonPreviewID(ctx)
	if err != nil {
		return nil, err
	}
	if unlocked == r.ID {
		return r, nil
	}
	return r.Masked(), nil
}

func (u *contentUC) ListOpenCohorts(ctx context.Context) ([]*model.Cohort, error) {
	return u.cohorts.ListOpen(ctx, repository.NoTX)
}

func (u *contentUC) firstNonPreviewID(ctx context.Context) (string, error) {
	reports, err := u.reports.ListPublished(ctx, repository.NoTX)
	if err != nil {
		return "", err
	}
	for _, r := range reports {
		if !r.FreePreview {
			return r.ID, nil
		}
	}
	return "", nil
}
