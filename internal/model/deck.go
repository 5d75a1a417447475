package model

import "time"

// DeckStatus tracks generation progress of a pitch deck.
type DeckStatus string

const (
	DeckGenerating DeckStatus = "generating"
	DeckCompleted  DeckStatus = "completed"
	DeckFailed     DeckStatus = "failed"
)

// Slide is one generated deck slide.
type Slide struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	PresenterNotes string `json:"presenter_notes,omitempty"`
	SlideType      string `json:"slide_type,omitempty"`
}

// GenerationLog is one progress event emitted by the generation worker,
// shown on the status page while the deck builds.
type GenerationLog struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PitchDeck is the artifact produced when a finalized session is generated.
type PitchDeck struct {
	ID          int64      `json:"id"`
	SessionID   int64      `json:"session_id"`
	Title       string     `json:"title"`
	DeckType    string     `json:"deck_type"`
	Tone        string     `json:"tone"`
	Status      DeckStatus `json:"status"`
	Slides      []Slide    `json:"slides,omitempty"`
	ErrorReason *string    `json:"error_reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
