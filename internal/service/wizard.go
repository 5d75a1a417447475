package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"deckforge.app/wizard/common/id"
	"deckforge.app/wizard/common/logger"
	"deckforge.app/wizard/internal/enrich"
	"deckforge.app/wizard/internal/interview"
	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/readiness"
	"deckforge.app/wizard/internal/signal"
	"deckforge.app/wizard/internal/store"
	"deckforge.app/wizard/internal/wizard"
)

var (
	// ErrSessionNotFound is returned when no session exists for the ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotReady is returned when generation is requested before the
	// wizard's first three steps are completed.
	ErrNotReady = errors.New("session is not ready for generation")
)

// SessionView is a read snapshot handed to the transport layer. Unsaved
// reports whether the latest in-memory state has failed to persist.
type SessionView struct {
	Session *model.WizardSession
	Unsaved bool
}

type WizardService interface {
	Start(ctx context.Context, userID int64) (*SessionView, error)
	// Resume returns the user's most recently active unfinished session,
	// or ErrSessionNotFound when there is nothing to resume.
	Resume(ctx context.Context, userID int64) (*SessionView, error)
	Get(ctx context.Context, sessionID int64) (*SessionView, error)
	Update(ctx context.Context, sessionID int64, patch model.StepPatch) (*SessionView, error)
	Advance(ctx context.Context, sessionID int64, step int, patch model.StepPatch) (wizard.FieldErrors, *SessionView, error)
	GoBack(ctx context.Context, sessionID int64) (*SessionView, error)
	GoToStep(ctx context.Context, sessionID int64, step int) (*SessionView, error)
	RecordAnswer(ctx context.Context, sessionID int64, questionID, text string) (signal.Quality, error)
	SkipQuestion(ctx context.Context, sessionID int64, questionID string) error
	Readiness(ctx context.Context, sessionID int64) (*model.Readiness, error)
	Generate(ctx context.Context, sessionID int64, deckType, tone string) (*model.PitchDeck, error)
	DeckStatus(ctx context.Context, deckID int64) (*model.PitchDeck, []model.GenerationLog, error)
}

type wizardService struct {
	sessions  store.SessionStore
	decks     store.DeckStore
	logs      store.GenerationLogStore
	producer  queue.Producer
	questions interview.Provider
	enricher  enrich.Source
	registry  *signal.Registry
	scoring   readiness.Config
	clock     wizard.Clock
	debounce  time.Duration

	mu   sync.Mutex
	live map[int64]*wizard.Machine
}

type WizardServiceDeps struct {
	Sessions  store.SessionStore
	Decks     store.DeckStore
	Logs      store.GenerationLogStore
	Producer  queue.Producer
	Questions interview.Provider // nil means always use the static fallback set
	Enricher  enrich.Source      // nil disables enrichment
	Clock     wizard.Clock
	Debounce  time.Duration
}

func NewWizardService(deps WizardServiceDeps) WizardService {
	clock := deps.Clock
	if clock == nil {
		clock = wizard.NewClock()
	}
	return &wizardService{
		sessions:  deps.Sessions,
		decks:     deps.Decks,
		logs:      deps.Logs,
		producer:  deps.Producer,
		questions: deps.Questions,
		enricher:  deps.Enricher,
		registry:  signal.DefaultRegistry(),
		scoring:   readiness.DefaultConfig(),
		clock:     clock,
		debounce:  deps.Debounce,
		live:      make(map[int64]*wizard.Machine),
	}
}

func (s *wizardService) Start(ctx context.Context, userID int64) (*SessionView, error) {
	session := model.NewWizardSession(id.New(), userID, s.clock.Now())
	m := s.newMachine(session)

	s.mu.Lock()
	s.live[session.ID] = m
	s.mu.Unlock()

	// First save is synchronous so the session survives an immediate crash.
	if err := m.Autosaver().Flush(ctx); err != nil {
		slog.WarnContext(ctx, "initial session save failed", "session_id", session.ID, "error", err)
	}

	slog.InfoContext(ctx, "wizard session started", "session_id", session.ID, "user_id", userID)
	return s.view(m), nil
}

func (s *wizardService) Resume(ctx context.Context, userID int64) (*SessionView, error) {
	s.mu.Lock()
	for _, m := range s.live {
		snap := m.Snapshot()
		if snap.UserID == userID && snap.Status == model.SessionInProgress {
			s.mu.Unlock()
			return s.view(m), nil
		}
	}
	s.mu.Unlock()

	session, err := s.sessions.GetLatestInProgress(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("resuming session: %w", err)
	}

	m := s.adopt(session)
	return s.view(m), nil
}

func (s *wizardService) Get(ctx context.Context, sessionID int64) (*SessionView, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(m), nil
}

func (s *wizardService) Update(ctx context.Context, sessionID int64, patch model.StepPatch) (*SessionView, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.Update(patch); err != nil {
		return nil, err
	}
	return s.view(m), nil
}

func (s *wizardService) Advance(ctx context.Context, sessionID int64, step int, patch model.StepPatch) (wizard.FieldErrors, *SessionView, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(sessionID), Step: logger.Ptr(step)})

	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	fieldErrs, err := m.Advance(step, patch)
	if err != nil {
		return nil, nil, err
	}
	if len(fieldErrs) > 0 {
		slog.DebugContext(ctx, "step validation failed", "fields", len(fieldErrs))
		return fieldErrs, s.view(m), nil
	}

	slog.InfoContext(ctx, "wizard step completed")

	switch step {
	case 1:
		s.enrichAsync(ctx, m)
	case 2:
		s.loadQuestionsAsync(ctx, m)
	}

	return wizard.FieldErrors{}, s.view(m), nil
}

func (s *wizardService) GoBack(ctx context.Context, sessionID int64) (*SessionView, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.GoBack(); err != nil {
		return nil, err
	}
	return s.view(m), nil
}

func (s *wizardService) GoToStep(ctx context.Context, sessionID int64, step int) (*SessionView, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.GoToStep(step); err != nil {
		return nil, err
	}
	return s.view(m), nil
}

func (s *wizardService) RecordAnswer(ctx context.Context, sessionID int64, questionID, text string) (signal.Quality, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return signal.Quality{}, err
	}
	if err := m.RecordAnswer(questionID, text); err != nil {
		return signal.Quality{}, err
	}
	return m.ClassifyAnswer(questionID), nil
}

func (s *wizardService) SkipQuestion(ctx context.Context, sessionID int64, questionID string) error {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.Skip(questionID)
}

func (s *wizardService) Readiness(ctx context.Context, sessionID int64) (*model.Readiness, error) {
	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.Readiness(), nil
}

func (s *wizardService) Generate(ctx context.Context, sessionID int64, deckType, tone string) (*model.PitchDeck, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(sessionID)})

	m, err := s.machine(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap := m.Snapshot()
	if snap.MaxCompletedStep() < 3 {
		return nil, fmt.Errorf("%w: completed through step %d", ErrNotReady, snap.MaxCompletedStep())
	}

	if deckType != "" || tone != "" {
		patch := model.StepPatch{Step: 4, Review: &model.ReviewChoicesPatch{}}
		if deckType != "" {
			patch.Review.DeckType = &deckType
		}
		if tone != "" {
			patch.Review.Tone = &tone
		}
		if err := m.Update(patch); err != nil {
			return nil, err
		}
		snap = m.Snapshot()
	}

	// The worker reads the session from the store, so the latest state must
	// be durable before the task is visible.
	if err := m.Autosaver().Flush(ctx); err != nil {
		return nil, fmt.Errorf("persisting session before generation: %w", err)
	}

	now := s.clock.Now()
	// Placeholder title until the generator submits the real one.
	pitchDeck := &model.PitchDeck{
		ID:        id.New(),
		SessionID: sessionID,
		Title:     snap.CompanyInfo.CompanyName + " Pitch Deck",
		DeckType:  snap.ReviewChoices.DeckType,
		Tone:      snap.ReviewChoices.Tone,
		Status:    model.DeckGenerating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.decks.Create(ctx, pitchDeck); err != nil {
		return nil, fmt.Errorf("creating deck record: %w", err)
	}

	msg := queue.GenerationMessage{DeckID: pitchDeck.ID, SessionID: sessionID}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID := sc.TraceID().String()
		msg.TraceID = &traceID
	}
	if err := s.producer.Enqueue(ctx, msg); err != nil {
		if markErr := s.decks.MarkFailed(ctx, pitchDeck.ID, "failed to enqueue generation"); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark deck failed after enqueue error", "deck_id", pitchDeck.ID, "error", markErr)
		}
		return nil, fmt.Errorf("enqueueing generation: %w", err)
	}

	slog.InfoContext(ctx, "deck generation requested", "deck_id", pitchDeck.ID)
	return pitchDeck, nil
}

func (s *wizardService) DeckStatus(ctx context.Context, deckID int64) (*model.PitchDeck, []model.GenerationLog, error) {
	pitchDeck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}

	logs, err := s.logs.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing generation logs: %w", err)
	}

	// A completed deck finalizes the session. The worker already marked the
	// stored session completed; retire the live machine to match.
	if pitchDeck.Status == model.DeckCompleted {
		s.retire(ctx, pitchDeck.SessionID)
	}

	return pitchDeck, logs, nil
}

// machine returns the live machine for the session, hydrating it from the
// store on first touch after a restart.
func (s *wizardService) machine(ctx context.Context, sessionID int64) (*wizard.Machine, error) {
	s.mu.Lock()
	if m, ok := s.live[sessionID]; ok {
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return s.adopt(session), nil
}

// adopt installs a stored session as a live machine, keeping an existing
// machine if another request hydrated it first.
func (s *wizardService) adopt(session *model.WizardSession) *wizard.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[session.ID]; ok {
		return existing
	}
	m := s.newMachine(session)
	s.live[session.ID] = m
	return m
}

func (s *wizardService) newMachine(session *model.WizardSession) *wizard.Machine {
	return wizard.New(session, s.registry, s.scoring, s.sessions, s.clock, s.debounce)
}

func (s *wizardService) retire(ctx context.Context, sessionID int64) {
	s.mu.Lock()
	m, ok := s.live[sessionID]
	if ok {
		delete(s.live, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := m.Complete(); err != nil && !errors.Is(err, wizard.ErrSessionCompleted) {
		slog.WarnContext(ctx, "failed to finalize session machine", "session_id", sessionID, "error", err)
	}
}

func (s *wizardService) view(m *wizard.Machine) *SessionView {
	return &SessionView{
		Session: m.Snapshot(),
		Unsaved: m.Autosaver().Unsaved(),
	}
}

// enrichAsync kicks off website/profile enrichment after step 1. The merge
// path refuses to touch user-edited fields, so a slow result is harmless.
func (s *wizardService) enrichAsync(ctx context.Context, m *wizard.Machine) {
	if s.enricher == nil {
		return
	}

	snap := m.Snapshot()
	bgCtx := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{
		SessionID: logger.Ptr(snap.ID),
		Component: "wizard.enrich",
	})

	go func() {
		bgCtx, cancel := context.WithTimeout(bgCtx, 30*time.Second)
		defer cancel()

		patch, err := s.enricher.Suggest(bgCtx, snap)
		if err != nil {
			slog.WarnContext(bgCtx, "enrichment failed", "error", err)
			return
		}

		filled, err := m.MergeEnrichment(patch)
		if err != nil {
			if !errors.Is(err, wizard.ErrSessionCompleted) {
				slog.WarnContext(bgCtx, "enrichment merge failed", "error", err)
			}
			return
		}
		if len(filled) > 0 {
			slog.InfoContext(bgCtx, "enrichment merged", "fields", filled)
		}
	}()
}

// loadQuestionsAsync fetches the interview set after step 2 so it is ready
// when the user reaches step 3. Provider failure degrades to the static set.
func (s *wizardService) loadQuestionsAsync(ctx context.Context, m *wizard.Machine) {
	if len(m.Snapshot().Interview.Questions) > 0 {
		return
	}

	snap := m.Snapshot()
	bgCtx := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{
		SessionID: logger.Ptr(snap.ID),
		Component: "wizard.interview",
	})

	go func() {
		questions := interview.FallbackQuestions()
		if s.questions != nil {
			bgCtx, cancel := context.WithTimeout(bgCtx, 45*time.Second)
			defer cancel()

			generated, err := s.questions.Questions(bgCtx, snap)
			if err != nil {
				slog.WarnContext(bgCtx, "question generation failed, using fallback set", "error", err)
			} else {
				questions = generated
			}
		}

		if err := m.SetQuestions(questions); err != nil && !errors.Is(err, wizard.ErrSessionCompleted) {
			slog.WarnContext(bgCtx, "failed to install questions", "error", err)
		}
	}()
}
