package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stockus-platform/internal/domain"
	"stockus-platform/internal/domain/model"
	"stockus-platform/internal/domain/ports/repository"
)

var (
	_ repository.ReportRepository = (*reportRepo)(nil)
	_ repository.CohortRepository = (*cohortRepo)(nil)
)

type reportRepo struct{ pool *pgxpool.Pool }

func NewReportRepo(pool *pgxpool.Pool) *reportRepo {
	return &reportRepo{pool: pool}
}

const reportColumns = `id, title, summary, body, ticker, recommendation, target_price, free_preview, sort_order, published, created_at`

func scanReport(row pgx.Row) (*model.Report, error) {
	rep := &model.Report{}
	if err := row.Scan(&rep.ID, &rep.Title, &rep.Summary, &rep.Body, &rep.Ticker, &rep.Recommendation,
		&rep.TargetPrice, &rep.FreePreview, &rep.SortOrder, &rep.Published, &rep.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rep, nil
}

func (r *reportRepo) Save(ctx context.Context, tx repository.Tx, rep *model.Report) error {
	const q = `
INSERT INTO reports (` + reportColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  title=$2, summary=$3, body=$4, ticker=$5, recommendation=$6, target_price=$7,
  free_preview=$8, sort_order=$9, published=$10;`
	_, err := execSQL(ctx, r.pool, tx, q,
		rep.ID, rep.Title, rep.Summary, rep.Body, rep.Ticker, rep.Recommendation,
		rep.TargetPrice, rep.FreePreview, rep.SortOrder, rep.Published, rep.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reportRepo) ListPublished(ctx context.Context, tx repository.Tx) ([]*model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE published ORDER BY sort_order ASC, created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *reportRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanReport(row)
}

type cohortRepo struct{ pool *pgxpool.Pool }

func NewCohortRepo(pool *pgxpool.Pool) *cohortRepo {
	return &cohortRepo{pool: pool}
}

const cohortColumns = `id, title, price, status, starts_at, created_at, updated_at`

func scanCohort(row pgx.Row) (*model.Cohort, error) {
	c := &model.Cohort{}
	if err := row.Scan(&c.ID, &c.Title, &c.Price, &c.Status, &c.StartsAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *cohortRepo) Save(ctx context.Context, tx repository.Tx, c *model.Cohort) error {
	const q = `
INSERT INTO cohorts (` + cohortColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  title=$2, price=$3, status=$4, starts_at=$5, updated_at=$7;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Title, c.Price, c.Status, c.StartsAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *cohortRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Cohort, error) {
	const q = `SELECT ` + cohortColumns + ` FROM cohorts WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCohort(row)
}

func (r *cohortRepo) ListOpen(ctx context.Context, tx repository.Tx) ([]*model.Cohort, error) {
	const q = `SELECT ` + cohortColumns + ` FROM cohorts WHERE status='open' ORDER BY starts_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Cohort
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
