package signal

import "deckforge.app/wizard/internal/model"

// QualityTier grades a free-text answer for UI feedback. Advisory only: it
// never gates navigation.
type QualityTier string

const (
	TierNone     QualityTier = "none"
	TierBrief    QualityTier = "brief"
	TierGood     QualityTier = "good"
	TierDetailed QualityTier = "detailed"
)

type Quality struct {
	Tier    QualityTier       `json:"tier"`
	Label   string            `json:"label"`
	Signals []model.SignalTag `json:"signals,omitempty"`
}

// Classify grades an answer. Rules apply in order, first match wins:
// empty -> none; under 50 chars -> brief; under 150 chars or fewer than two
// detected signals -> good; otherwise detailed. Length alone never earns
// "detailed": a long answer with thin signal coverage stays "good".
func Classify(text string, registry *Registry) Quality {
	if len(text) == 0 {
		return Quality{Tier: TierNone}
	}

	tags := registry.Extract(text)
	switch {
	case len(text) < 50:
		return Quality{Tier: TierBrief, Label: "Brief answer - needs more detail", Signals: tags}
	case len(text) < 150 || len(tags) < 2:
		return Quality{Tier: TierGood, Label: "Good answer", Signals: tags}
	default:
		return Quality{Tier: TierDetailed, Label: "Detailed answer", Signals: tags}
	}
}
