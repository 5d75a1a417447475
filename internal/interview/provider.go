package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/internal/model"
)

// Provider produces the adaptive question set shown on the interview step.
// Questions are fetched once per session when the step is first entered.
type Provider interface {
	Questions(ctx context.Context, session *model.WizardSession) ([]model.Question, error)
}

type questionsResponse struct {
	Questions []questionItem `json:"questions" jsonschema_description:"Interview questions tailored to the company"`
}

type questionItem struct {
	ID          string `json:"id" jsonschema_description:"Stable snake_case identifier for the question"`
	Prompt      string `json:"prompt" jsonschema_description:"The question shown to the founder"`
	Category    string `json:"category" jsonschema:"enum=market,enum=traction,enum=competition,enum=team,enum=financials,enum=product" jsonschema_description:"Topic the question probes"`
	SlideTarget string `json:"slide_target" jsonschema_description:"Deck slide the answer feeds, e.g. traction, market, team"`
}

var questionsSchema = llm.GenerateSchema[questionsResponse]()

type llmProvider struct {
	llm llm.Client
}

func NewLLMProvider(client llm.Client) Provider {
	return &llmProvider{llm: client}
}

const questionsPromptVersion = "v1"

func (p *llmProvider) Questions(ctx context.Context, session *model.WizardSession) ([]model.Question, error) {
	prompt := buildPrompt(session)

	var response questionsResponse
	start := time.Now()

	// Retry with exponential backoff (1s, 2s, 4s) to ride out transient rate
	// limits. The caller falls back to the static question set after that, so
	// the wizard never stalls on this call.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		_, err = p.llm.Chat(ctx, llm.Request{
			SystemPrompt: questionsSystemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "interview_questions",
			Schema:       questionsSchema,
			Temperature:  llm.Temp(0.3),
		}, &response)

		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return nil, fmt.Errorf("interview questions: %w", err)
		}
		slog.WarnContext(ctx, "interview questions retry",
			"session_id", session.ID,
			"attempt", attempt+1,
			"error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("interview questions after 3 attempts: %w", err)
	}

	if len(response.Questions) == 0 {
		return nil, fmt.Errorf("interview questions: empty response")
	}

	questions := make([]model.Question, len(response.Questions))
	for i, q := range response.Questions {
		questions[i] = model.Question{
			ID:           q.ID,
			PromptText:   q.Prompt,
			Category:     model.QuestionCategory(q.Category),
			SlideMapping: q.SlideTarget,
		}
	}

	slog.InfoContext(ctx, "interview questions generated",
		"session_id", session.ID,
		"question_count", len(questions),
		"prompt_version", questionsPromptVersion,
		"latency_ms", time.Since(start).Milliseconds())

	return questions, nil
}

func buildPrompt(s *model.WizardSession) string {
	var sb strings.Builder

	sb.WriteString("## Company\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", s.CompanyInfo.CompanyName))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", s.CompanyInfo.Industry))
	if s.CompanyInfo.Tagline != "" {
		sb.WriteString(fmt.Sprintf("Tagline: %s\n", s.CompanyInfo.Tagline))
	}
	if s.CompanyInfo.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s\n", s.CompanyInfo.Stage))
	}

	m := s.MarketTraction
	sb.WriteString("\n## Market & Traction\n")
	sb.WriteString(fmt.Sprintf("Problem: %s\n", m.Problem))
	sb.WriteString(fmt.Sprintf("Solution: %s\n", m.CoreSolution))
	sb.WriteString(fmt.Sprintf("Differentiator: %s\n", m.Differentiator))
	sb.WriteString(fmt.Sprintf("Funding stage: %s\n", m.FundingStage))
	if m.Users != nil {
		sb.WriteString(fmt.Sprintf("Users: %d\n", *m.Users))
	}
	if m.Revenue != nil {
		sb.WriteString(fmt.Sprintf("Revenue: %d\n", *m.Revenue))
	}
	if m.GrowthRate != "" {
		sb.WriteString(fmt.Sprintf("Growth rate: %s\n", m.GrowthRate))
	}

	return sb.String()
}

const questionsSystemPrompt = `You are an experienced venture investor preparing diligence questions for a founder.

Generate exactly 5 interview questions tailored to this company. The answers will be turned into pitch deck slides, so each question must pull out concrete, slide-worthy material.

## Rules

- Ask for specifics the founder likely has but did not volunteer: numbers, named customers, unit economics, competitive dynamics, team background
- One question per category, drawn from: market, traction, competition, team, financials, product
- Match depth to funding stage: pre_seed gets vision and early signal questions, series_a gets retention and unit economics questions
- IDs must be lowercase snake_case and stable, e.g. "traction_metrics"
- slide_target names the deck slide the answer feeds: market, traction, competition, team, financials, or product

## Do NOT ask

- Anything already answered by the profile above
- Yes/no questions
- Compound questions hiding three asks in one sentence`
