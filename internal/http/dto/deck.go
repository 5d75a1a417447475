package dto

import (
	"time"

	"deckforge.app/wizard/common"
	"deckforge.app/wizard/internal/model"
)

type GenerateRequest struct {
	DeckType string `json:"deck_type" binding:"omitempty,oneof=pre_seed seed demo_day"`
	Tone     string `json:"tone" binding:"omitempty,oneof=clear confident conservative"`
}

type DeckResponse struct {
	ID          int64           `json:"id,string"`
	SessionID   int64           `json:"session_id,string"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	DeckType    string          `json:"deck_type"`
	Tone        string          `json:"tone"`
	Status      string          `json:"status"`
	Slides      []SlideResponse `json:"slides,omitempty"`
	ErrorReason *string         `json:"error_reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SlideResponse struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	PresenterNotes string `json:"presenter_notes,omitempty"`
	SlideType      string `json:"slide_type,omitempty"`
}

type GenerationLogResponse struct {
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type DeckStatusResponse struct {
	Deck *DeckResponse           `json:"deck"`
	Logs []GenerationLogResponse `json:"logs"`
}

func ToDeckResponse(d *model.PitchDeck) *DeckResponse {
	// "pitch-deck" cannot slugify to empty, so the error is unreachable.
	slug, _ := common.Slugify(d.Title, "pitch-deck")
	resp := &DeckResponse{
		ID:          d.ID,
		SessionID:   d.SessionID,
		Title:       d.Title,
		Slug:        slug,
		DeckType:    d.DeckType,
		Tone:        d.Tone,
		Status:      string(d.Status),
		ErrorReason: d.ErrorReason,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, s := range d.Slides {
		resp.Slides = append(resp.Slides, SlideResponse{
			Title:          s.Title,
			Body:           s.Body,
			PresenterNotes: s.PresenterNotes,
			SlideType:      s.SlideType,
		})
	}
	return resp
}

func ToDeckStatusResponse(d *model.PitchDeck, logs []model.GenerationLog) *DeckStatusResponse {
	resp := &DeckStatusResponse{Deck: ToDeckResponse(d)}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, GenerationLogResponse{
			Stage:     l.Stage,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}
	if resp.Logs == nil {
		resp.Logs = []GenerationLogResponse{}
	}
	return resp
}
