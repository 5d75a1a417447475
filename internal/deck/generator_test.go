package deck_test

import (
	"context"
	"encoding/json"
	"errors"

	"deckforge.app/wizard/common/llm"
	"deckforge.app/wizard/internal/deck"
	"deckforge.app/wizard/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockAgentClient struct {
	chatFn    func(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error)
	callCount int
	requests  []llm.AgentRequest
}

func (m *mockAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	m.callCount++
	m.requests = append(m.requests, req)
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return &llm.AgentResponse{}, nil
}

func (m *mockAgentClient) Model() string { return "mock-model" }

func submitDeckCall(params deck.SubmitDeckParams) *llm.AgentResponse {
	data, _ := json.Marshal(params)
	return &llm.AgentResponse{
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "submit_deck", Arguments: string(data)},
		},
		FinishReason: "tool_calls",
	}
}

var _ = Describe("LLMGenerator", func() {
	var (
		mockLLM   *mockAgentClient
		generator deck.Generator
		session   *model.WizardSession
		ctx       context.Context
	)

	users := int64(1200)

	BeforeEach(func() {
		ctx = context.Background()
		mockLLM = &mockAgentClient{}
		generator = deck.NewLLMGenerator(mockLLM, 4000)

		session = &model.WizardSession{
			ID: 42,
			CompanyInfo: model.CompanyInfo{
				CompanyName: "Acme",
				Industry:    "fintech",
				Tagline:     "decks in minutes",
			},
			MarketTraction: model.MarketTraction{
				Problem:        "Founders spend weeks on deck formatting",
				CoreSolution:   "Generate the deck from a guided interview",
				Differentiator: "Investor-calibrated narrative, not templates",
				FundingStage:   "seed",
				Users:          &users,
			},
			Interview: model.Interview{
				Questions: []model.Question{
					{ID: "traction_metrics", PromptText: "What is your month over month growth?", Category: model.CategoryTraction},
					{ID: "team_background", PromptText: "Why is this team the one to win?", Category: model.CategoryTeam},
				},
			},
			Answers: map[string]string{
				"traction_metrics": "22% MoM for the last six months",
			},
			SkippedQuestionIDs: []string{"team_background"},
		}
	})

	It("maps a submitted deck into slides", func() {
		mockLLM.chatFn = func(_ context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
			return submitDeckCall(deck.SubmitDeckParams{
				Title: "Acme Seed Deck",
				Slides: []deck.SlideParam{
					{Title: "Acme", Body: "Decks in minutes", PresenterNotes: "Open with the tagline", SlideType: "title"},
					{Title: "Traction", Body: "22% MoM growth", PresenterNotes: "Six month streak", SlideType: "traction"},
				},
			}), nil
		}

		title, slides, err := generator.Generate(ctx, session, "seed", "confident")

		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("Acme Seed Deck"))
		Expect(slides).To(HaveLen(2))
		Expect(slides[1].SlideType).To(Equal("traction"))
		Expect(mockLLM.callCount).To(Equal(1))

		req := mockLLM.requests[0]
		Expect(req.Tools).To(HaveLen(1))
		Expect(req.Tools[0].Name).To(Equal("submit_deck"))
		Expect(req.MaxTokens).To(Equal(4000))

		userPrompt := req.Messages[1].Content
		Expect(userPrompt).To(ContainSubstring("Name: Acme"))
		Expect(userPrompt).To(ContainSubstring("22% MoM"))
		Expect(userPrompt).To(ContainSubstring("Deck type: seed"))
		Expect(userPrompt).NotTo(ContainSubstring("team to win"), "skipped questions stay out of the prompt")
	})

	It("falls back to the company name when the title is empty", func() {
		mockLLM.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return submitDeckCall(deck.SubmitDeckParams{
				Slides: []deck.SlideParam{
					{Title: "Problem", Body: "Weeks lost", SlideType: "problem"},
				},
			}), nil
		}

		title, _, err := generator.Generate(ctx, session, "seed", "clear")

		Expect(err).NotTo(HaveOccurred())
		Expect(title).To(Equal("Acme"))
	})

	It("rejects a submission with no slides", func() {
		mockLLM.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return submitDeckCall(deck.SubmitDeckParams{Title: "Empty"}), nil
		}

		_, _, err := generator.Generate(ctx, session, "seed", "clear")

		Expect(err).To(MatchError(ContainSubstring("no slides")))
	})

	It("nudges once when the model answers in prose, then accepts the tool call", func() {
		mockLLM.chatFn = func(_ context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
			if len(req.Messages) == 2 {
				return &llm.AgentResponse{Content: "Here is my plan for the deck...", FinishReason: "stop"}, nil
			}
			return submitDeckCall(deck.SubmitDeckParams{
				Title: "Acme",
				Slides: []deck.SlideParam{
					{Title: "Ask", Body: "$1.5M", SlideType: "ask"},
				},
			}), nil
		}

		_, slides, err := generator.Generate(ctx, session, "pre_seed", "clear")

		Expect(err).NotTo(HaveOccurred())
		Expect(slides).To(HaveLen(1))
		Expect(mockLLM.callCount).To(Equal(2))

		second := mockLLM.requests[1]
		Expect(second.Messages).To(HaveLen(4))
		Expect(second.Messages[3].Content).To(ContainSubstring("submit_deck"))
	})

	It("gives up when the model never calls submit_deck", func() {
		mockLLM.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return &llm.AgentResponse{Content: "I would rather chat.", FinishReason: "stop"}, nil
		}

		_, _, err := generator.Generate(ctx, session, "seed", "clear")

		Expect(err).To(MatchError(ContainSubstring("no submit_deck")))
		Expect(mockLLM.callCount).To(Equal(3))
	})

	It("fails fast on malformed tool arguments", func() {
		mockLLM.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return &llm.AgentResponse{
				ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "submit_deck", Arguments: "{not json"}},
				FinishReason: "tool_calls",
			}, nil
		}

		_, _, err := generator.Generate(ctx, session, "seed", "clear")

		Expect(err).To(MatchError(ContainSubstring("parsing submit_deck")))
		Expect(mockLLM.callCount).To(Equal(1))
	})

	It("does not retry when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		mockLLM.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return nil, context.Canceled
		}

		_, _, err := generator.Generate(cancelled, session, "seed", "clear")

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(mockLLM.callCount).To(Equal(1))
	})
})
