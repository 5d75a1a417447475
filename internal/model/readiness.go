package model

import "slices"

// ConfidenceTier buckets the readiness score with fixed, user-visible
// breakpoints: <50 low, <70 medium, >=70 high.
type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "low"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceHigh   ConfidenceTier = "high"
)

// ChecklistItem is one discrete pass/fail readiness criterion.
type ChecklistItem struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// ReadinessBreakdown gives per-category sub-scores (each 0-100) behind the
// overall number. Categories mirror the deck-readiness heuristic: profile
// completeness, market story, interview coverage, detected signals.
type ReadinessBreakdown struct {
	Profile   int `json:"profile"`
	Market    int `json:"market"`
	Interview int `json:"interview"`
	Signals   int `json:"signals"`
}

// Readiness is the derived investor-readiness summary for a session. Never a
// source of truth: always recomputable from step data and extracted signals.
type Readiness struct {
	OverallScore int                `json:"overall_score"`
	Breakdown    ReadinessBreakdown `json:"breakdown"`
	Checklist    []ChecklistItem    `json:"checklist"`
	Tier         ConfidenceTier     `json:"confidence_tier"`
}

func (r *Readiness) Clone() *Readiness {
	c := *r
	c.Checklist = slices.Clone(r.Checklist)
	return &c
}
