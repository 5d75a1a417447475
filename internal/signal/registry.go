package signal

import (
	"regexp"

	"deckforge.app/wizard/internal/model"
)

// Rule pairs a signal tag with its detection pattern. Detection is binary:
// the pattern either matches the answer text or it does not. No weights.
type Rule struct {
	Tag     model.SignalTag
	Pattern *regexp.Regexp
}

// Registry is an ordered, immutable list of detection rules. It is process-wide
// read-only configuration: build it once at startup and inject it wherever
// extraction runs. Appending new tags never requires touching call sites.
type Registry struct {
	rules []Rule
}

func NewRegistry(rules []Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRegistry returns the built-in investor-signal rules. All patterns
// are case-insensitive.
func DefaultRegistry() *Registry {
	return NewRegistry([]Rule{
		{
			// Currency figures and recurring-revenue vocabulary.
			Tag:     model.SignalHasRevenue,
			Pattern: regexp.MustCompile(`(?i)\$\s?\d[\d,.]*\s?[km]?\b|\b(mrr|arr|revenue|paying customers)\b`),
		},
		{
			// A number followed by a user-count noun.
			Tag:     model.SignalHasUsers,
			Pattern: regexp.MustCompile(`(?i)\b\d[\d,.]*[km]?\+?\s*(users|customers|clients|subscribers|seats)\b`),
		},
		{
			Tag:     model.SignalHasGrowth,
			Pattern: regexp.MustCompile(`(?i)\bgrow(th|ing|n)\b|\bgrew\b|month[- ]over[- ]month|week[- ]over[- ]week|\b(mom|wow|yoy)\b|\bdoubl(ed|ing)\b|\btripl(ed|ing)\b`),
		},
		{
			Tag:     model.SignalHasMoat,
			Pattern: regexp.MustCompile(`(?i)\bproprietary\b|\bpatent(ed|s)?\b|\bdefensib(le|ility)\b|\bmoat\b|\bnetwork effects?\b|\bswitching costs?\b|\bexclusive\b`),
		},
		{
			// Named unit-economics and engagement metrics.
			Tag:     model.SignalHasMetrics,
			Pattern: regexp.MustCompile(`(?i)\b(cac|ltv|arpu|nps|churn|retention|payback|conversion rate|unit economics)\b`),
		},
		{
			Tag:     model.SignalHasTeamStrength,
			Pattern: regexp.MustCompile(`(?i)\bex-[a-z]+\b|\bserial (founder|entrepreneur)\b|\bsecond[- ]time founder\b|\bpreviously (founded|built|led|sold)\b|\b\d+\+? years('? | of )experience\b|\bphd\b|\bexited\b`),
		},
	})
}

// Extract returns the set of tags whose rules match the text, in registry
// order. Deterministic and total: identical text always yields an identical
// set, and empty text yields no tags.
func (r *Registry) Extract(text string) []model.SignalTag {
	if text == "" {
		return nil
	}
	var tags []model.SignalTag
	for _, rule := range r.rules {
		if rule.Pattern.MatchString(text) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}
