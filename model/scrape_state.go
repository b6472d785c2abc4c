package model

import (
	"time"
)

// Pagination phases of a rule's scrape state. A rule starts in INITIAL
// (bounded multi-page backfill), flips to STEADY exactly once and never
// goes back unless an operator resets the state explicitly.
const (
	PhaseInitial = "INITIAL"
	PhaseSteady  = "STEADY"
)

/*
ScrapeState tracks per (rule, platform) pagination progress.

Cursor: opaque platform-specific pagination token, only meaningful during
the INITIAL backfill. It is persisted after the page it produced was
ingested, so a crash in between re-fetches the same page and the post
dedup key absorbs the duplicates.
BackfillCount: posts ingested so far during backfill, compared against the
backfill cap to decide the INITIAL -> STEADY transition.
*/
type ScrapeState struct {
	Id     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleId int32 `gorm:"not null;uniqueIndex:uq_rule_platform_state" json:"rule_id"`
	Rule   *Rule `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Platform      string `gorm:"size:50;not null;uniqueIndex:uq_rule_platform_state" json:"platform"`
	Cursor        string `json:"cursor"`
	Phase         string `gorm:"size:20;not null;default:INITIAL" json:"phase"`
	BackfillCount int32  `gorm:"default:0" json:"backfill_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reset puts the state back to a fresh INITIAL scrape. Only ever called on
// explicit operator request.
func (s *ScrapeState) Reset() {
	s.Cursor = ""
	s.Phase = PhaseInitial
	s.BackfillCount = 0
}
