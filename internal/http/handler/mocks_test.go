package handler_test

import (
	"context"

	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/signal"
	"deckforge.app/wizard/internal/wizard"
)

type mockWizardService struct {
	startFn        func(ctx context.Context, userID int64) (*service.SessionView, error)
	resumeFn       func(ctx context.Context, userID int64) (*service.SessionView, error)
	getFn          func(ctx context.Context, sessionID int64) (*service.SessionView, error)
	updateFn       func(ctx context.Context, sessionID int64, patch model.StepPatch) (*service.SessionView, error)
	advanceFn      func(ctx context.Context, sessionID int64, step int, patch model.StepPatch) (wizard.FieldErrors, *service.SessionView, error)
	goBackFn       func(ctx context.Context, sessionID int64) (*service.SessionView, error)
	goToStepFn     func(ctx context.Context, sessionID int64, step int) (*service.SessionView, error)
	recordAnswerFn func(ctx context.Context, sessionID int64, questionID, text string) (signal.Quality, error)
	skipQuestionFn func(ctx context.Context, sessionID int64, questionID string) error
	readinessFn    func(ctx context.Context, sessionID int64) (*model.Readiness, error)
	generateFn     func(ctx context.Context, sessionID int64, deckType, tone string) (*model.PitchDeck, error)
	deckStatusFn   func(ctx context.Context, deckID int64) (*model.PitchDeck, []model.GenerationLog, error)
}

func (m *mockWizardService) Start(ctx context.Context, userID int64) (*service.SessionView, error) {
	if m.startFn != nil {
		return m.startFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWizardService) Resume(ctx context.Context, userID int64) (*service.SessionView, error) {
	if m.resumeFn != nil {
		return m.resumeFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWizardService) Get(ctx context.Context, sessionID int64) (*service.SessionView, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockWizardService) Update(ctx context.Context, sessionID int64, patch model.StepPatch) (*service.SessionView, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, sessionID, patch)
	}
	return nil, nil
}

func (m *mockWizardService) Advance(ctx context.Context, sessionID int64, step int, patch model.StepPatch) (wizard.FieldErrors, *service.SessionView, error) {
	if m.advanceFn != nil {
		return m.advanceFn(ctx, sessionID, step, patch)
	}
	return wizard.FieldErrors{}, nil, nil
}

func (m *mockWizardService) GoBack(ctx context.Context, sessionID int64) (*service.SessionView, error) {
	if m.goBackFn != nil {
		return m.goBackFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockWizardService) GoToStep(ctx context.Context, sessionID int64, step int) (*service.SessionView, error) {
	if m.goToStepFn != nil {
		return m.goToStepFn(ctx, sessionID, step)
	}
	return nil, nil
}

func (m *mockWizardService) RecordAnswer(ctx context.Context, sessionID int64, questionID, text string) (signal.Quality, error) {
	if m.recordAnswerFn != nil {
		return m.recordAnswerFn(ctx, sessionID, questionID, text)
	}
	return signal.Quality{}, nil
}

func (m *mockWizardService) SkipQuestion(ctx context.Context, sessionID int64, questionID string) error {
	if m.skipQuestionFn != nil {
		return m.skipQuestionFn(ctx, sessionID, questionID)
	}
	return nil
}

func (m *mockWizardService) Readiness(ctx context.Context, sessionID int64) (*model.Readiness, error) {
	if m.readinessFn != nil {
		return m.readinessFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockWizardService) Generate(ctx context.Context, sessionID int64, deckType, tone string) (*model.PitchDeck, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, sessionID, deckType, tone)
	}
	return nil, nil
}

func (m *mockWizardService) DeckStatus(ctx context.Context, deckID int64) (*model.PitchDeck, []model.GenerationLog, error) {
	if m.deckStatusFn != nil {
		return m.deckStatusFn(ctx, deckID)
	}
	return nil, nil, nil
}
