package store

import (
	"context"
	"errors"
	"time"

	"deckforge.app/wizard/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// SessionStore defines the contract for wizard session data access.
// Save persists the whole session snapshot idempotently: saving the same
// snapshot twice leaves the row unchanged, and a newer snapshot fully
// replaces an older one.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.WizardSession, error)
	// GetLatestInProgress returns the user's most recently active unfinished
	// session, used for resume-on-return.
	GetLatestInProgress(ctx context.Context, userID int64) (*model.WizardSession, error)
	Save(ctx context.Context, session *model.WizardSession) error
	MarkAbandoned(ctx context.Context, id int64) error
	// SweepAbandoned marks every in-progress session idle since the cutoff
	// as abandoned and reports how many were swept.
	SweepAbandoned(ctx context.Context, idleSince time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// DeckStore defines the contract for generated pitch deck data access
type DeckStore interface {
	GetByID(ctx context.Context, id int64) (*model.PitchDeck, error)
	GetLatestBySession(ctx context.Context, sessionID int64) (*model.PitchDeck, error)
	Create(ctx context.Context, deck *model.PitchDeck) error
	MarkCompleted(ctx context.Context, id int64, title string, slides []model.Slide) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	ListBySession(ctx context.Context, sessionID int64) ([]model.PitchDeck, error)
}

// GenerationLogStore records worker-side progress events for a deck build,
// surfaced on the generation status page.
type GenerationLogStore interface {
	Append(ctx context.Context, log *model.GenerationLog) error
	ListByDeck(ctx context.Context, deckID int64) ([]model.GenerationLog, error)
}
