package model

import "time"

// Report is a published research report, the tier-gated content unit.
// Title and Summary are always visible; Body, Recommendation and TargetPrice
// are the member-only fields that get masked for lower tiers.
type Report struct {
	ID             string // UUID
	Title          string
	Summary        string
	Body           string
	Ticker         string
	Recommendation string
	TargetPrice    *int64
	FreePreview    bool // preview-flagged reports are unlocked for everyone
	SortOrder      int
	Published      bool
	Locked         bool // view-state, not persisted
	CreatedAt      time.Time
}

// Masked returns a copy with the member-only fields blanked.
func (r *Report) Masked() *Report {
	cp := *r
	cp.Body = ""
	cp.Recommendation = ""
	cp.TargetPrice = nil
	cp.Locked = true
	return &cp
}
