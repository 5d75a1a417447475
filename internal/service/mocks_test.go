package service_test

import (
	"context"
	"sync"
	"time"

	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/queue"
)

type mockSessionStore struct {
	mu                    sync.Mutex
	saved                 []*model.WizardSession
	getByIDFn             func(ctx context.Context, id int64) (*model.WizardSession, error)
	getLatestInProgressFn func(ctx context.Context, userID int64) (*model.WizardSession, error)
	saveFn                func(ctx context.Context, session *model.WizardSession) error
}

func (m *mockSessionStore) GetByID(ctx context.Context, id int64) (*model.WizardSession, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionStore) GetLatestInProgress(ctx context.Context, userID int64) (*model.WizardSession, error) {
	if m.getLatestInProgressFn != nil {
		return m.getLatestInProgressFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionStore) Save(ctx context.Context, session *model.WizardSession) error {
	m.mu.Lock()
	m.saved = append(m.saved, session)
	m.mu.Unlock()
	if m.saveFn != nil {
		return m.saveFn(ctx, session)
	}
	return nil
}

func (m *mockSessionStore) MarkAbandoned(ctx context.Context, id int64) error {
	return nil
}

func (m *mockSessionStore) SweepAbandoned(ctx context.Context, idleSince time.Time) (int64, error) {
	return 0, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *mockSessionStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *mockSessionStore) lastSaved() *model.WizardSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type mockDeckStore struct {
	mu           sync.Mutex
	created      []*model.PitchDeck
	getByIDFn    func(ctx context.Context, id int64) (*model.PitchDeck, error)
	createFn     func(ctx context.Context, deck *model.PitchDeck) error
	markFailedFn func(ctx context.Context, id int64, reason string) error
}

func (m *mockDeckStore) GetByID(ctx context.Context, id int64) (*model.PitchDeck, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDeckStore) GetLatestBySession(ctx context.Context, sessionID int64) (*model.PitchDeck, error) {
	return nil, nil
}

func (m *mockDeckStore) Create(ctx context.Context, deck *model.PitchDeck) error {
	m.mu.Lock()
	m.created = append(m.created, deck)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, deck)
	}
	return nil
}

func (m *mockDeckStore) MarkCompleted(ctx context.Context, id int64, title string, slides []model.Slide) error {
	return nil
}

func (m *mockDeckStore) MarkFailed(ctx context.Context, id int64, reason string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id, reason)
	}
	return nil
}

func (m *mockDeckStore) ListBySession(ctx context.Context, sessionID int64) ([]model.PitchDeck, error) {
	return nil, nil
}

type mockGenerationLogStore struct {
	mu       sync.Mutex
	appended []*model.GenerationLog
}

func (m *mockGenerationLogStore) Append(ctx context.Context, log *model.GenerationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, log)
	return nil
}

func (m *mockGenerationLogStore) ListByDeck(ctx context.Context, deckID int64) ([]model.GenerationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var logs []model.GenerationLog
	for _, l := range m.appended {
		if l.DeckID == deckID {
			logs = append(logs, *l)
		}
	}
	return logs, nil
}

type mockProducer struct {
	mu        sync.Mutex
	enqueued  []queue.GenerationMessage
	enqueueFn func(ctx context.Context, msg queue.GenerationMessage) error
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.GenerationMessage) error {
	m.mu.Lock()
	m.enqueued = append(m.enqueued, msg)
	m.mu.Unlock()
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}

func (m *mockProducer) enqueuedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enqueued)
}

type mockQuestionProvider struct {
	questionsFn func(ctx context.Context, session *model.WizardSession) ([]model.Question, error)
}

func (m *mockQuestionProvider) Questions(ctx context.Context, session *model.WizardSession) ([]model.Question, error) {
	if m.questionsFn != nil {
		return m.questionsFn(ctx, session)
	}
	return nil, nil
}

type mockEnricher struct {
	suggestFn func(ctx context.Context, session *model.WizardSession) (model.StepPatch, error)
}

func (m *mockEnricher) Suggest(ctx context.Context, session *model.WizardSession) (model.StepPatch, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, session)
	}
	return model.StepPatch{}, nil
}
