package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"deckforge.app/wizard/common/id"
	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/signal"
	"deckforge.app/wizard/internal/store"
	"deckforge.app/wizard/internal/wizard"
)

func strPtr(s string) *string { return &s }

var _ = Describe("WizardService", func() {
	var (
		ctx       context.Context
		sessions  *mockSessionStore
		decks     *mockDeckStore
		logs      *mockGenerationLogStore
		producer  *mockProducer
		questions *mockQuestionProvider
		enricher  *mockEnricher
		svc       service.WizardService
	)

	step1 := func() model.StepPatch {
		return model.StepPatch{Step: 1, Company: &model.CompanyInfoPatch{
			CompanyName: strPtr("Acme"),
			Industry:    strPtr("fintech"),
		}}
	}
	step2 := func() model.StepPatch {
		return model.StepPatch{Step: 2, Market: &model.MarketTractionPatch{
			Problem:        strPtr("Founders spend weeks formatting investor decks"),
			CoreSolution:   strPtr("A guided interview that generates the deck"),
			Differentiator: strPtr("Readiness scoring before any investor sees it"),
			FundingStage:   strPtr("seed"),
		}}
	}

	BeforeEach(func() {
		ctx = context.Background()
		sessions = &mockSessionStore{}
		decks = &mockDeckStore{}
		logs = &mockGenerationLogStore{}
		producer = &mockProducer{}
		questions = &mockQuestionProvider{
			questionsFn: func(_ context.Context, _ *model.WizardSession) ([]model.Question, error) {
				return []model.Question{{ID: "q1", PromptText: "What is your MRR?", Category: model.CategoryTraction}}, nil
			},
		}
		enricher = &mockEnricher{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewWizardService(service.WizardServiceDeps{
			Sessions:  sessions,
			Decks:     decks,
			Logs:      logs,
			Producer:  producer,
			Questions: questions,
			Enricher:  enricher,
		})
	})

	// Drives a fresh session through steps 1-3 using the public API.
	startReady := func() int64 {
		view, err := svc.Start(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		sid := view.Session.ID

		fieldErrs, _, err := svc.Advance(ctx, sid, 1, step1())
		Expect(err).NotTo(HaveOccurred())
		Expect(fieldErrs).To(BeEmpty())

		fieldErrs, _, err = svc.Advance(ctx, sid, 2, step2())
		Expect(err).NotTo(HaveOccurred())
		Expect(fieldErrs).To(BeEmpty())

		Eventually(func() int {
			v, getErr := svc.Get(ctx, sid)
			Expect(getErr).NotTo(HaveOccurred())
			return len(v.Session.Interview.Questions)
		}).Should(BeNumerically(">", 0))

		fieldErrs, _, err = svc.Advance(ctx, sid, 3, model.StepPatch{Step: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(fieldErrs).To(BeEmpty())

		return sid
	}

	Describe("Start", func() {
		It("creates a session at step 1 and persists it immediately", func() {
			view, err := svc.Start(ctx, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(view.Session.ID).NotTo(BeZero())
			Expect(view.Session.CurrentStep).To(Equal(1))
			Expect(view.Session.Status).To(Equal(model.SessionInProgress))
			Expect(view.Unsaved).To(BeFalse())
			Expect(sessions.savedCount()).To(Equal(1))
		})
	})

	Describe("Resume", func() {
		It("returns the live session without touching the store", func() {
			started, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			sessions.getLatestInProgressFn = func(_ context.Context, _ int64) (*model.WizardSession, error) {
				Fail("should not hit the store for a live session")
				return nil, nil
			}

			resumed, err := svc.Resume(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.Session.ID).To(Equal(started.Session.ID))
		})

		It("hydrates from the store after a restart", func() {
			stored := model.NewWizardSession(42, 10, time.Now())
			stored.CurrentStep = 2
			stored.MarkStepCompleted(1)
			sessions.getLatestInProgressFn = func(_ context.Context, userID int64) (*model.WizardSession, error) {
				Expect(userID).To(Equal(int64(10)))
				return stored, nil
			}

			view, err := svc.Resume(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Session.ID).To(Equal(int64(42)))
			Expect(view.Session.CurrentStep).To(Equal(2))
		})

		It("reports no session to resume", func() {
			sessions.getLatestInProgressFn = func(_ context.Context, _ int64) (*model.WizardSession, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Resume(ctx, 10)
			Expect(err).To(MatchError(service.ErrSessionNotFound))
		})
	})

	Describe("Advance", func() {
		It("returns field errors without moving the step", func() {
			view, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			fieldErrs, after, err := svc.Advance(ctx, view.Session.ID, 1, model.StepPatch{Step: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(fieldErrs).To(HaveKey("company_name"))
			Expect(after.Session.CurrentStep).To(Equal(1))
		})

		It("merges enrichment into untouched fields after step 1", func() {
			enricher.suggestFn = func(_ context.Context, _ *model.WizardSession) (model.StepPatch, error) {
				return model.StepPatch{Step: 1, Company: &model.CompanyInfoPatch{
					CompanyName: strPtr("Scraped Inc"),
					Tagline:     strPtr("decks in minutes"),
				}}, nil
			}

			view, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			fieldErrs, _, err := svc.Advance(ctx, view.Session.ID, 1, step1())
			Expect(err).NotTo(HaveOccurred())
			Expect(fieldErrs).To(BeEmpty())

			Eventually(func() string {
				v, getErr := svc.Get(ctx, view.Session.ID)
				Expect(getErr).NotTo(HaveOccurred())
				return v.Session.CompanyInfo.Tagline
			}).Should(Equal("decks in minutes"))

			// The user-entered name is never replaced by the scrape.
			v, err := svc.Get(ctx, view.Session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Session.CompanyInfo.CompanyName).To(Equal("Acme"))
		})

		It("falls back to the static question set when the provider fails", func() {
			questions.questionsFn = func(_ context.Context, _ *model.WizardSession) ([]model.Question, error) {
				return nil, errors.New("llm unavailable")
			}

			view, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			sid := view.Session.ID

			fieldErrs, _, err := svc.Advance(ctx, sid, 1, step1())
			Expect(err).NotTo(HaveOccurred())
			Expect(fieldErrs).To(BeEmpty())
			fieldErrs, _, err = svc.Advance(ctx, sid, 2, step2())
			Expect(err).NotTo(HaveOccurred())
			Expect(fieldErrs).To(BeEmpty())

			Eventually(func() int {
				v, getErr := svc.Get(ctx, sid)
				Expect(getErr).NotTo(HaveOccurred())
				return len(v.Session.Interview.Questions)
			}).Should(Equal(5))
		})
	})

	Describe("RecordAnswer", func() {
		It("grades the answer as it is recorded", func() {
			view, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			quality, err := svc.RecordAnswer(ctx, view.Session.ID, "q1", "We make money")
			Expect(err).NotTo(HaveOccurred())
			Expect(quality.Tier).To(Equal(signal.TierBrief))
		})

		It("rejects answers for unknown sessions", func() {
			sessions.getByIDFn = func(_ context.Context, _ int64) (*model.WizardSession, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.RecordAnswer(ctx, 999, "q1", "text")
			Expect(err).To(MatchError(service.ErrSessionNotFound))
		})
	})

	Describe("Generate", func() {
		It("refuses before the interview step is completed", func() {
			view, err := svc.Start(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Generate(ctx, view.Session.ID, "seed", "confident")
			Expect(err).To(MatchError(service.ErrNotReady))
			Expect(producer.enqueuedCount()).To(BeZero())
		})

		It("persists the session, creates a deck record, and enqueues the task", func() {
			sid := startReady()
			savedBefore := sessions.savedCount()

			pitchDeck, err := svc.Generate(ctx, sid, "seed", "confident")

			Expect(err).NotTo(HaveOccurred())
			Expect(pitchDeck.Status).To(Equal(model.DeckGenerating))
			Expect(pitchDeck.Title).To(Equal("Acme Pitch Deck"))
			Expect(pitchDeck.DeckType).To(Equal("seed"))
			Expect(pitchDeck.Tone).To(Equal("confident"))

			Expect(sessions.savedCount()).To(BeNumerically(">", savedBefore))
			Expect(sessions.lastSaved().ReviewChoices.DeckType).To(Equal("seed"))

			Expect(producer.enqueuedCount()).To(Equal(1))
			Expect(producer.enqueued[0].DeckID).To(Equal(pitchDeck.ID))
			Expect(producer.enqueued[0].SessionID).To(Equal(sid))
		})

		It("marks the deck failed when the enqueue fails", func() {
			sid := startReady()
			producer.enqueueFn = func(_ context.Context, _ queue.GenerationMessage) error {
				return errors.New("redis down")
			}
			var failedID int64
			decks.markFailedFn = func(_ context.Context, deckID int64, reason string) error {
				failedID = deckID
				Expect(reason).NotTo(BeEmpty())
				return nil
			}

			_, err := svc.Generate(ctx, sid, "seed", "confident")

			Expect(err).To(HaveOccurred())
			Expect(decks.created).To(HaveLen(1))
			Expect(failedID).To(Equal(decks.created[0].ID))
		})
	})

	Describe("DeckStatus", func() {
		It("finalizes the live session once the deck completes", func() {
			sid := startReady()
			pitchDeck, err := svc.Generate(ctx, sid, "seed", "confident")
			Expect(err).NotTo(HaveOccurred())

			decks.getByIDFn = func(_ context.Context, deckID int64) (*model.PitchDeck, error) {
				return &model.PitchDeck{ID: deckID, SessionID: sid, Status: model.DeckCompleted}, nil
			}
			// The worker has already marked the stored session completed.
			sessions.getByIDFn = func(_ context.Context, _ int64) (*model.WizardSession, error) {
				completed := sessions.lastSaved().Clone()
				completed.Status = model.SessionCompleted
				return completed, nil
			}

			status, _, err := svc.DeckStatus(ctx, pitchDeck.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Status).To(Equal(model.DeckCompleted))

			// The live machine is retired; a later mutation rehydrates the
			// completed session and is refused.
			_, err = svc.Update(ctx, sid, step1())
			Expect(err).To(MatchError(wizard.ErrSessionCompleted))
		})
	})
})
