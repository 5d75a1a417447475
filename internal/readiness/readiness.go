// Package readiness turns a wizard session snapshot into the 0-100
// investor-readiness summary shown on the review step. Compute is pure and
// total: identical snapshots always score identically, and a session with no
// data scores 0 with every checklist item failed rather than erroring.
package readiness

import (
	"fmt"
	"math"
	"strings"

	"deckforge.app/wizard/internal/model"
)

// Config holds the scoring weights and checklist thresholds. Process-wide
// read-only configuration, injected rather than referenced globally so the
// aggregator stays independently testable.
type Config struct {
	ProfileWeight   float64
	MarketWeight    float64
	InterviewWeight float64
	SignalsWeight   float64

	// MinAnswered is the checklist threshold for interview coverage.
	MinAnswered int

	// NarrativeMinLen gates the problem/solution checklist items.
	NarrativeMinLen int
}

func DefaultConfig() Config {
	return Config{
		ProfileWeight:   0.25,
		MarketWeight:    0.30,
		InterviewWeight: 0.25,
		SignalsWeight:   0.20,
		MinAnswered:     3,
		NarrativeMinLen: 20,
	}
}

// The registry currently defines six tags; signal diversity is scored
// against this count.
const knownSignalTags = 6

// Confidence tier breakpoints are user-visible contract: <50 low, <70
// medium, >=70 high.
func tierFor(score int) model.ConfidenceTier {
	switch {
	case score < 50:
		return model.ConfidenceLow
	case score < 70:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceHigh
	}
}

// Compute derives the readiness summary from step data and extracted signals
// alone. Every input only ever raises the score: filling a field, passing a
// checklist item, or detecting another signal never lowers it.
func Compute(s *model.WizardSession, cfg Config) *model.Readiness {
	checklist := buildChecklist(s, cfg)
	breakdown := model.ReadinessBreakdown{
		Profile:   profileScore(s),
		Market:    marketScore(s, cfg),
		Interview: interviewScore(s),
		Signals:   signalScore(s),
	}

	weighted := float64(breakdown.Profile)*cfg.ProfileWeight +
		float64(breakdown.Market)*cfg.MarketWeight +
		float64(breakdown.Interview)*cfg.InterviewWeight +
		float64(breakdown.Signals)*cfg.SignalsWeight

	score := int(math.Round(weighted))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &model.Readiness{
		OverallScore: score,
		Breakdown:    breakdown,
		Checklist:    checklist,
		Tier:         tierFor(score),
	}
}

func buildChecklist(s *model.WizardSession, cfg Config) []model.ChecklistItem {
	stage := s.MarketTraction.FundingStage
	if stage == "" {
		stage = "seed"
	}

	return []model.ChecklistItem{
		{
			Label:  "Problem clearly stated",
			Passed: narrativeLen(s.MarketTraction.Problem) >= cfg.NarrativeMinLen,
		},
		{
			Label:  "Solution defined",
			Passed: narrativeLen(s.MarketTraction.CoreSolution) >= cfg.NarrativeMinLen,
		},
		{
			Label:  "Industry selected",
			Passed: s.CompanyInfo.Industry != "",
		},
		{
			Label:  fmt.Sprintf("Traction aligned with %s stage", stage),
			Passed: hasTraction(s),
		},
		{
			Label:  "Interview questions answered",
			Passed: s.AnsweredCount() >= cfg.MinAnswered,
		},
	}
}

func profileScore(s *model.WizardSession) int {
	c := s.CompanyInfo
	score := 0
	if strings.TrimSpace(c.CompanyName) != "" {
		score += 30
	}
	if c.WebsiteURL != "" {
		score += 20
	}
	if c.Tagline != "" {
		score += 30
	}
	if c.Industry != "" {
		score += 20
	}
	return score
}

func marketScore(s *model.WizardSession, cfg Config) int {
	m := s.MarketTraction
	score := 0
	if narrativeLen(m.Problem) >= cfg.NarrativeMinLen {
		score += 30
	}
	if narrativeLen(m.CoreSolution) >= cfg.NarrativeMinLen {
		score += 30
	}
	if strings.TrimSpace(m.Differentiator) != "" {
		score += 20
	}
	if hasTraction(s) {
		score += 20
	}
	return score
}

func interviewScore(s *model.WizardSession) int {
	total := len(s.Interview.Questions)
	if total == 0 {
		return 0
	}
	answered := s.AnsweredCount()
	if answered > total {
		answered = total
	}
	return int(math.Round(float64(answered) / float64(total) * 100))
}

// signalScore rewards diversity: distinct tags across all answers, scaled
// against the registry size. Repeats of the same tag add nothing.
func signalScore(s *model.WizardSession) int {
	distinct := make(map[model.SignalTag]bool)
	for _, tags := range s.ExtractedSignals {
		for _, t := range tags {
			distinct[t] = true
		}
	}
	if len(distinct) >= knownSignalTags {
		return 100
	}
	return int(math.Round(float64(len(distinct)) / knownSignalTags * 100))
}

func hasTraction(s *model.WizardSession) bool {
	return s.MarketTraction.Users != nil || s.MarketTraction.Revenue != nil
}

func narrativeLen(text string) int {
	return len(strings.TrimSpace(text))
}
