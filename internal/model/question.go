package model

// QuestionCategory groups interview questions by investor concern
type QuestionCategory string

const (
	CategoryMarket      QuestionCategory = "market"
	CategoryTraction    QuestionCategory = "traction"
	CategoryCompetition QuestionCategory = "competition"
	CategoryTeam        QuestionCategory = "team"
	CategoryFinancials  QuestionCategory = "financials"
	CategoryProduct     QuestionCategory = "product"
)

// Question is one interview prompt supplied by the question provider.
// Immutable within a session once fetched.
type Question struct {
	ID           string           `json:"id"`
	PromptText   string           `json:"prompt_text"`
	Category     QuestionCategory `json:"category"`
	SlideMapping string           `json:"slide_mapping,omitempty"`
}
