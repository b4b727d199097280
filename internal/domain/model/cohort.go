package model

import "time"

type CohortStatus string

const (
	CohortStatusDraft    CohortStatus = "draft"
	CohortStatusOpen     CohortStatus = "open"
	CohortStatusClosed   CohortStatus = "closed"
	CohortStatusArchived CohortStatus = "archived"
)

// Cohort is a scheduled, priced workshop offering, distinct from the
// always-available subscription content.
type Cohort struct {
	ID        string // UUID
	Title     string
	Price     *int64 // smallest currency unit; nil = not sellable
	Status    CohortStatus
	StartsAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OpenForEnrollment reports whether the cohort can be purchased.
func (c *Cohort) OpenForEnrollment() bool {
	return c.Status == CohortStatusOpen && c.Price != nil && *c.Price > 0
}
