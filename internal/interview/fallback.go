package interview

import "deckforge.app/wizard/internal/model"

// FallbackQuestions is the static question set used when the LLM provider is
// unavailable or times out. Deliberately generic: every company can answer
// all five, and each maps to a core deck slide.
func FallbackQuestions() []model.Question {
	return []model.Question{
		{
			ID:           "traction_metrics",
			PromptText:   "What traction metrics best show your product is working? Share specific numbers like active users, revenue, or growth rate.",
			Category:     model.CategoryTraction,
			SlideMapping: "traction",
		},
		{
			ID:           "market_acquisition",
			PromptText:   "How do you reach your customers today, and what does it cost you to acquire one?",
			Category:     model.CategoryMarket,
			SlideMapping: "market",
		},
		{
			ID:           "unit_economics",
			PromptText:   "Walk through your unit economics: what do you earn per customer and what does serving them cost?",
			Category:     model.CategoryFinancials,
			SlideMapping: "financials",
		},
		{
			ID:           "competitive_moat",
			PromptText:   "Who are your closest competitors, and what stops them from copying you once you prove the market?",
			Category:     model.CategoryCompetition,
			SlideMapping: "competition",
		},
		{
			ID:           "team_strength",
			PromptText:   "Why is your team the right one to build this? Highlight relevant experience, domain expertise, or past wins.",
			Category:     model.CategoryTeam,
			SlideMapping: "team",
		},
	}
}
