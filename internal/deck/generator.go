package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/internal/model"
)

// Generator turns a finalized session snapshot into deck slides. Runs on the
// worker, never in a request handler.
type Generator interface {
	Generate(ctx context.Context, session *model.WizardSession, deckType, tone string) (string, []model.Slide, error)
}

// SubmitDeckParams is the argument payload of the submit_deck tool call.
type SubmitDeckParams struct {
	Title  string       `json:"title" jsonschema_description:"Deck title, usually the company name plus a qualifier"`
	Slides []SlideParam `json:"slides" jsonschema_description:"Ordered deck slides"`
}

type SlideParam struct {
	Title          string `json:"title" jsonschema_description:"Slide headline"`
	Body           string `json:"body" jsonschema_description:"Slide body content in markdown"`
	PresenterNotes string `json:"presenter_notes" jsonschema_description:"What the founder should say on this slide"`
	SlideType      string `json:"slide_type" jsonschema:"enum=title,enum=problem,enum=solution,enum=market,enum=product,enum=traction,enum=competition,enum=team,enum=financials,enum=ask" jsonschema_description:"Which canonical slide this is"`
}

var submitDeckTool = llm.Tool{
	Name:        "submit_deck",
	Description: "Submit the finished pitch deck. Call exactly once with the complete slide list.",
	Parameters:  llm.GenerateSchema[SubmitDeckParams](),
}

type llmGenerator struct {
	llm       llm.AgentClient
	maxTokens int
}

func NewLLMGenerator(client llm.AgentClient, maxTokens int) Generator {
	return &llmGenerator{llm: client, maxTokens: maxTokens}
}

const generatorPromptVersion = "v1"

// maxGeneratorTurns bounds the conversation when the model answers in prose
// instead of calling submit_deck.
const maxGeneratorTurns = 3

func (g *llmGenerator) Generate(ctx context.Context, session *model.WizardSession, deckType, tone string) (string, []model.Slide, error) {
	start := time.Now()

	messages := []llm.Message{
		{Role: "system", Content: generatorSystemPrompt},
		{Role: "user", Content: buildPrompt(session, deckType, tone)},
	}

	for turn := 0; turn < maxGeneratorTurns; turn++ {
		resp, err := g.llm.ChatWithTools(ctx, llm.AgentRequest{
			Messages:    messages,
			Tools:       []llm.Tool{submitDeckTool},
			MaxTokens:   g.maxTokens,
			Temperature: llm.Temp(0.4),
		})
		if err != nil {
			// Generation runs out-of-band with queue-level retries, so a
			// single in-process retry pass is enough here.
			if !llm.IsRetryable(ctx, err) {
				return "", nil, fmt.Errorf("deck generation: %w", err)
			}
			slog.WarnContext(ctx, "deck generation retry",
				"session_id", session.ID,
				"turn", turn+1,
				"error", err)
			time.Sleep(time.Duration(1<<turn) * time.Second)
			continue
		}

		for _, tc := range resp.ToolCalls {
			if tc.Name != "submit_deck" {
				continue
			}
			params, err := llm.ParseToolArguments[SubmitDeckParams](tc.Arguments)
			if err != nil {
				return "", nil, fmt.Errorf("parsing submit_deck: %w", err)
			}
			return g.finishDeck(ctx, session, params, start)
		}

		// No submit_deck call. Echo the assistant turn back and nudge.
		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: "Call the submit_deck tool with the completed deck. Do not reply with text.",
		})
		slog.WarnContext(ctx, "deck generation turn without submit_deck",
			"session_id", session.ID,
			"turn", turn+1,
			"finish_reason", resp.FinishReason)
	}

	return "", nil, fmt.Errorf("deck generation: no submit_deck after %d turns", maxGeneratorTurns)
}

func (g *llmGenerator) finishDeck(ctx context.Context, session *model.WizardSession, params SubmitDeckParams, start time.Time) (string, []model.Slide, error) {
	if len(params.Slides) == 0 {
		return "", nil, fmt.Errorf("deck generation: no slides in response")
	}

	title := params.Title
	if title == "" {
		title = session.CompanyInfo.CompanyName
	}

	slides := make([]model.Slide, len(params.Slides))
	for i, s := range params.Slides {
		slides[i] = model.Slide{
			Title:          s.Title,
			Body:           s.Body,
			PresenterNotes: s.PresenterNotes,
			SlideType:      s.SlideType,
		}
	}

	slog.InfoContext(ctx, "deck generated",
		"session_id", session.ID,
		"slide_count", len(slides),
		"prompt_version", generatorPromptVersion,
		"latency_ms", time.Since(start).Milliseconds())

	return title, slides, nil
}

func buildPrompt(s *model.WizardSession, deckType, tone string) string {
	var sb strings.Builder

	sb.WriteString("## Company Profile\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", s.CompanyInfo.CompanyName))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", s.CompanyInfo.Industry))
	if s.CompanyInfo.Tagline != "" {
		sb.WriteString(fmt.Sprintf("Tagline: %s\n", s.CompanyInfo.Tagline))
	}
	if s.CompanyInfo.WebsiteURL != "" {
		sb.WriteString(fmt.Sprintf("Website: %s\n", s.CompanyInfo.WebsiteURL))
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

	if len(s.Interview.Questions) > 0 {
		sb.WriteString("\n## Interview\n")
		for _, q := range s.Interview.Questions {
			answer, ok := s.Answers[q.ID]
			if !ok || answer == "" || s.IsSkipped(q.ID) {
				continue
			}
			sb.WriteString(fmt.Sprintf("Q (%s): %s\nA: %s\n\n", q.Category, q.PromptText, answer))
		}
	}

	sb.WriteString(fmt.Sprintf("\n## Output Settings\nDeck type: %s\nTone: %s\n", deckType, tone))

	return sb.String()
}

const generatorSystemPrompt = `You write investor pitch decks from founder interview material.

Produce 10-12 slides following the canonical arc: title, problem, solution, market, product, traction, competition, team, financials, ask. Submit the result with the submit_deck tool.

## Rules

- Use only facts from the material provided. Never invent metrics, customers, or team members.
- If the material lacks a slide's substance (no financials, no team detail), keep the slide but frame it around what is known and flag the gap in presenter notes.
- Body content is terse slide copy: short lines, concrete numbers where available, no paragraphs.
- Presenter notes carry the narrative the founder speaks, one short paragraph per slide.
- Respect the requested tone throughout.`
