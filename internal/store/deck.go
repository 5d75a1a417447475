package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"deckforge.app/wizard/internal/model"
)

type deckStore struct {
	q Querier
}

func newDeckStore(q Querier) DeckStore {
	return &deckStore{q: q}
}

const deckColumns = `id, session_id, title, deck_type, tone, status, slides, error_reason, created_at, updated_at`

func (s *deckStore) GetByID(ctx context.Context, id int64) (*model.PitchDeck, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+deckColumns+` FROM pitch_decks WHERE id = $1`, id)
	return scanDeck(row)
}

func (s *deckStore) GetLatestBySession(ctx context.Context, sessionID int64) (*model.PitchDeck, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+deckColumns+` FROM pitch_decks
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, sessionID)
	return scanDeck(row)
}

func (s *deckStore) Create(ctx context.Context, deck *model.PitchDeck) error {
	slides, err := json.Marshal(deck.Slides)
	if err != nil {
		return fmt.Errorf("encoding slides: %w", err)
	}

	_, err = s.q.Exec(ctx,
		`INSERT INTO pitch_decks (id, session_id, title, deck_type, tone, status, slides, error_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		deck.ID, deck.SessionID, deck.Title, deck.DeckType, deck.Tone,
		deck.Status, slides, deck.ErrorReason, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating deck %d: %w", deck.ID, err)
	}
	return nil
}

func (s *deckStore) MarkCompleted(ctx context.Context, id int64, title string, slides []model.Slide) error {
	data, err := json.Marshal(slides)
	if err != nil {
		return fmt.Errorf("encoding slides: %w", err)
	}

	tag, err := s.q.Exec(ctx,
		`UPDATE pitch_decks
		 SET status = $2, title = COALESCE(NULLIF($4, ''), title), slides = $3, error_reason = NULL, updated_at = now()
		 WHERE id = $1`,
		id, model.DeckCompleted, data, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *deckStore) MarkFailed(ctx context.Context, id int64, reason string) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE pitch_decks
		 SET status = $2, error_reason = $3, updated_at = now()
		 WHERE id = $1`,
		id, model.DeckFailed, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *deckStore) ListBySession(ctx context.Context, sessionID int64) ([]model.PitchDeck, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+deckColumns+` FROM pitch_decks
		 WHERE session_id = $1
		 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []model.PitchDeck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

func scanDeck(row pgx.Row) (*model.PitchDeck, error) {
	var (
		deck   model.PitchDeck
		slides []byte
	)
	err := row.Scan(&deck.ID, &deck.SessionID, &deck.Title, &deck.DeckType,
		&deck.Tone, &deck.Status, &slides, &deck.ErrorReason,
		&deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(slides) > 0 {
		if err := json.Unmarshal(slides, &deck.Slides); err != nil {
			return nil, fmt.Errorf("decoding slides for deck %d: %w", deck.ID, err)
		}
	}
	return &deck, nil
}
