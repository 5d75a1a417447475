package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deckforge.app/wizard/internal/http/handler"
	"deckforge.app/wizard/internal/http/router"
	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/signal"
	"deckforge.app/wizard/internal/wizard"
)

var _ = Describe("WizardHandler", func() {
	var (
		engine *gin.Engine
		svc    *mockWizardService
	)

	view := func(sessionID int64) *service.SessionView {
		s := model.NewWizardSession(sessionID, 7, time.Now())
		s.CompanyInfo.CompanyName = "Acme"
		return &service.SessionView{Session: s}
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		svc = &mockWizardService{}
		h := handler.NewWizardHandler(svc)
		router.WizardRouter(engine.Group("/sessions"), h)
		router.DeckRouter(engine.Group("/decks"), h)
	})

	do := func(method, path, userID string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set(handler.UserIDHeader, userID)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	Describe("Start", func() {
		It("returns 201 with the new session", func() {
			svc.startFn = func(_ context.Context, userID int64) (*service.SessionView, error) {
				Expect(userID).To(Equal(int64(7)))
				return view(1001), nil
			}

			w := do(http.MethodPost, "/sessions", "7", nil)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(Equal("1001"))
			Expect(resp["current_step"]).To(BeEquivalentTo(1))
		})

		It("returns 401 without a user id header", func() {
			w := do(http.MethodPost, "/sessions", "", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Resume", func() {
		It("returns 404 when there is nothing to resume", func() {
			svc.resumeFn = func(_ context.Context, _ int64) (*service.SessionView, error) {
				return nil, service.ErrSessionNotFound
			}

			w := do(http.MethodGet, "/sessions/resume", "7", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Advance", func() {
		It("forwards the step patch and returns the updated session", func() {
			svc.advanceFn = func(_ context.Context, sessionID int64, step int, patch model.StepPatch) (wizard.FieldErrors, *service.SessionView, error) {
				Expect(sessionID).To(Equal(int64(1001)))
				Expect(step).To(Equal(1))
				Expect(patch.Company).NotTo(BeNil())
				Expect(*patch.Company.CompanyName).To(Equal("Acme"))
				v := view(sessionID)
				v.Session.CurrentStep = 2
				return wizard.FieldErrors{}, v, nil
			}

			w := do(http.MethodPost, "/sessions/1001/advance", "7", map[string]any{
				"step": 1,
				"patch": map[string]any{
					"company": map[string]any{"company_name": "Acme", "industry": "fintech"},
				},
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["current_step"]).To(BeEquivalentTo(2))
		})

		It("returns 422 with field errors when validation blocks", func() {
			svc.advanceFn = func(_ context.Context, sessionID int64, _ int, _ model.StepPatch) (wizard.FieldErrors, *service.SessionView, error) {
				return wizard.FieldErrors{"company_name": "Company name is required"}, view(sessionID), nil
			}

			w := do(http.MethodPost, "/sessions/1001/advance", "7", map[string]any{"step": 1})

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			var resp struct {
				FieldErrors map[string]string `json:"field_errors"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.FieldErrors).To(HaveKeyWithValue("company_name", "Company name is required"))
		})

		It("returns 409 on an out-of-order advance", func() {
			svc.advanceFn = func(_ context.Context, _ int64, _ int, _ model.StepPatch) (wizard.FieldErrors, *service.SessionView, error) {
				return nil, nil, wizard.ErrInvalidStep
			}

			w := do(http.MethodPost, "/sessions/1001/advance", "7", map[string]any{"step": 3})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns 400 when the step is out of range", func() {
			w := do(http.MethodPost, "/sessions/1001/advance", "7", map[string]any{"step": 9})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Answer", func() {
		It("returns the quality grade", func() {
			svc.recordAnswerFn = func(_ context.Context, sessionID int64, questionID, text string) (signal.Quality, error) {
				Expect(sessionID).To(Equal(int64(1001)))
				Expect(questionID).To(Equal("traction_metrics"))
				Expect(text).To(Equal("We hit $40k MRR"))
				return signal.Quality{
					Tier:    signal.TierBrief,
					Label:   "Brief answer - needs more detail",
					Signals: []model.SignalTag{model.SignalHasRevenue},
				}, nil
			}

			w := do(http.MethodPut, "/sessions/1001/answers/traction_metrics", "7", map[string]string{
				"text": "We hit $40k MRR",
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["quality"]).To(Equal("brief"))
			Expect(resp["signals"]).To(ConsistOf("has_revenue"))
		})

		It("returns 404 for an unknown session", func() {
			svc.recordAnswerFn = func(_ context.Context, _ int64, _, _ string) (signal.Quality, error) {
				return signal.Quality{}, service.ErrSessionNotFound
			}

			w := do(http.MethodPut, "/sessions/999/answers/q1", "7", map[string]string{"text": "hi"})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Skip", func() {
		It("returns 204 on success", func() {
			svc.skipQuestionFn = func(_ context.Context, _ int64, questionID string) error {
				Expect(questionID).To(Equal("team_strength"))
				return nil
			}

			w := do(http.MethodPost, "/sessions/1001/answers/team_strength/skip", "7", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})

	Describe("Readiness", func() {
		It("returns the score summary", func() {
			svc.readinessFn = func(_ context.Context, _ int64) (*model.Readiness, error) {
				return &model.Readiness{
					OverallScore: 72,
					Tier:         model.ConfidenceHigh,
					Checklist: []model.ChecklistItem{
						{Label: "Company basics filled in", Passed: true},
					},
				}, nil
			}

			w := do(http.MethodGet, "/sessions/1001/readiness", "7", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["overall_score"]).To(BeEquivalentTo(72))
			Expect(resp["confidence_tier"]).To(Equal("high"))
		})
	})

	Describe("Generate", func() {
		It("returns 202 with the pending deck", func() {
			svc.generateFn = func(_ context.Context, sessionID int64, deckType, tone string) (*model.PitchDeck, error) {
				return &model.PitchDeck{
					ID: 2002, SessionID: sessionID, Title: "Acme",
					DeckType: deckType, Tone: tone, Status: model.DeckGenerating,
				}, nil
			}

			w := do(http.MethodPost, "/sessions/1001/generate", "7", map[string]string{
				"deck_type": "seed",
				"tone":      "confident",
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("generating"))
			Expect(resp["slug"]).To(Equal("acme"))
		})

		It("returns 409 before the interview is completed", func() {
			svc.generateFn = func(_ context.Context, _ int64, _, _ string) (*model.PitchDeck, error) {
				return nil, service.ErrNotReady
			}

			w := do(http.MethodPost, "/sessions/1001/generate", "7", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns 400 for an unknown deck type", func() {
			w := do(http.MethodPost, "/sessions/1001/generate", "7", map[string]string{
				"deck_type": "unicorn_round",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DeckStatus", func() {
		It("returns the deck with its generation log", func() {
			svc.deckStatusFn = func(_ context.Context, deckID int64) (*model.PitchDeck, []model.GenerationLog, error) {
				return &model.PitchDeck{ID: deckID, SessionID: 1001, Title: "Acme", Status: model.DeckCompleted},
					[]model.GenerationLog{{DeckID: deckID, Stage: "completed", Message: "5 slides"}}, nil
			}

			w := do(http.MethodGet, "/decks/2002", "7", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Deck struct {
					Status string `json:"status"`
				} `json:"deck"`
				Logs []struct {
					Stage string `json:"stage"`
				} `json:"logs"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Deck.Status).To(Equal("completed"))
			Expect(resp.Logs).To(HaveLen(1))
			Expect(resp.Logs[0].Stage).To(Equal("completed"))
		})

		It("returns 400 for a malformed id", func() {
			w := do(http.MethodGet, "/decks/not-a-number", "7", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown deck", func() {
			svc.deckStatusFn = func(_ context.Context, _ int64) (*model.PitchDeck, []model.GenerationLog, error) {
				return nil, nil, service.ErrSessionNotFound
			}

			w := do(http.MethodGet, "/decks/2002", "7", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
