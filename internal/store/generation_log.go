package store

import (
	"context"

	"deckforge.app/wizard/internal/model"
)

type generationLogStore struct {
	q Querier
}

func newGenerationLogStore(q Querier) GenerationLogStore {
	return &generationLogStore{q: q}
}

func (s *generationLogStore) Append(ctx context.Context, log *model.GenerationLog) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO deck_generation_logs (id, deck_id, stage, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		log.ID, log.DeckID, log.Stage, log.Message, log.CreatedAt)
	return err
}

func (s *generationLogStore) ListByDeck(ctx context.Context, deckID int64) ([]model.GenerationLog, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, deck_id, stage, message, created_at
		 FROM deck_generation_logs
		 WHERE deck_id = $1
		 ORDER BY created_at ASC`, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.GenerationLog
	for rows.Next() {
		var log model.GenerationLog
		if err := rows.Scan(&log.ID, &log.DeckID, &log.Stage, &log.Message, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
