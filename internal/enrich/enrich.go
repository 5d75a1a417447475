package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/internal/model"
)

// Source produces suggested pre-fills for a session from out-of-band data
// (company website, public profiles). Results arrive late and are merged
// through the session machine, which refuses to overwrite user-edited
// fields, so a source can be slow without risk.
type Source interface {
	Suggest(ctx context.Context, session *model.WizardSession) (model.StepPatch, error)
}

type suggestionResponse struct {
	Tagline        string `json:"tagline" jsonschema_description:"One-line company tagline, empty if unknown"`
	SubCategory    string `json:"sub_category" jsonschema_description:"Industry sub-category, empty if unknown"`
	Problem        string `json:"problem" jsonschema_description:"Problem the company solves, empty if unknown"`
	CoreSolution   string `json:"core_solution" jsonschema_description:"How the product solves it, empty if unknown"`
	Differentiator string `json:"differentiator" jsonschema_description:"What sets the company apart, empty if unknown"`
}

var suggestionSchema = llm.GenerateSchema[suggestionResponse]()

type llmSource struct {
	llm llm.Client
}

func NewLLMSource(client llm.Client) Source {
	return &llmSource{llm: client}
}

func (s *llmSource) Suggest(ctx context.Context, session *model.WizardSession) (model.StepPatch, error) {
	if session.CompanyInfo.CompanyName == "" {
		return model.StepPatch{}, fmt.Errorf("enrichment needs a company name")
	}

	prompt := fmt.Sprintf("Company: %s\nWebsite: %s\nIndustry: %s\n",
		session.CompanyInfo.CompanyName,
		session.CompanyInfo.WebsiteURL,
		session.CompanyInfo.Industry)

	var response suggestionResponse
	start := time.Now()
	_, err := s.llm.Chat(ctx, llm.Request{
		SystemPrompt: suggestionSystemPrompt,
		UserPrompt:   prompt,
		SchemaName:   "company_suggestions",
		Schema:       suggestionSchema,
		Temperature:  llm.Temp(0.2),
	}, &response)
	if err != nil {
		return model.StepPatch{}, fmt.Errorf("company enrichment: %w", err)
	}

	slog.DebugContext(ctx, "company enrichment completed",
		"session_id", session.ID,
		"latency_ms", time.Since(start).Milliseconds())

	return toPatch(response), nil
}

// toPatch keeps only non-empty suggestions. Empty strings stay nil so the
// merge never counts them as fills.
func toPatch(r suggestionResponse) model.StepPatch {
	patch := model.StepPatch{Step: 1, Company: &model.CompanyInfoPatch{}, Market: &model.MarketTractionPatch{}}

	if r.Tagline != "" {
		patch.Company.Tagline = &r.Tagline
	}
	if r.SubCategory != "" {
		patch.Company.SubCategory = &r.SubCategory
	}
	if r.Problem != "" {
		patch.Market.Problem = &r.Problem
	}
	if r.CoreSolution != "" {
		patch.Market.CoreSolution = &r.CoreSolution
	}
	if r.Differentiator != "" {
		patch.Market.Differentiator = &r.Differentiator
	}

	return patch
}

const suggestionSystemPrompt = `You suggest pitch-deck profile pre-fills for a startup based on its name, website, and industry.

Only state what you can infer with reasonable confidence. Leave a field empty rather than inventing specifics. Never fabricate metrics, customer names, or funding details.

Keep each field to one or two sentences in the founder's voice.`
