package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"deckforge.app/wizard/internal/model"
)

// Sessions are persisted as a whole-document jsonb column plus a few
// promoted columns for querying. The document is the source of truth; the
// promoted columns are derived from it on every save.
type sessionStore struct {
	q Querier
}

func newSessionStore(q Querier) SessionStore {
	return &sessionStore{q: q}
}

func (s *sessionStore) GetByID(ctx context.Context, id int64) (*model.WizardSession, error) {
	row := s.q.QueryRow(ctx,
		`SELECT data FROM wizard_sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *sessionStore) GetLatestInProgress(ctx context.Context, userID int64) (*model.WizardSession, error) {
	row := s.q.QueryRow(ctx,
		`SELECT data FROM wizard_sessions
		 WHERE user_id = $1 AND status = $2
		 ORDER BY last_activity_at DESC
		 LIMIT 1`, userID, model.SessionInProgress)
	return scanSession(row)
}

func (s *sessionStore) Save(ctx context.Context, session *model.WizardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session %d: %w", session.ID, err)
	}

	_, err = s.q.Exec(ctx,
		`INSERT INTO wizard_sessions (id, user_id, status, current_step, data, last_activity_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status,
		   current_step = EXCLUDED.current_step,
		   data = EXCLUDED.data,
		   last_activity_at = EXCLUDED.last_activity_at,
		   updated_at = EXCLUDED.updated_at`,
		session.ID, session.UserID, session.Status, session.CurrentStep,
		data, session.LastActivityAt, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving session %d: %w", session.ID, err)
	}
	return nil
}

func (s *sessionStore) MarkAbandoned(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE wizard_sessions
		 SET status = $2, data = jsonb_set(data, '{status}', to_jsonb($2::text)), updated_at = now()
		 WHERE id = $1 AND status = $3`,
		id, model.SessionAbandoned, model.SessionInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sessionStore) SweepAbandoned(ctx context.Context, idleSince time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE wizard_sessions
		 SET status = $1, data = jsonb_set(data, '{status}', to_jsonb($1::text)), updated_at = now()
		 WHERE status = $2 AND last_activity_at < $3`,
		model.SessionAbandoned, model.SessionInProgress, idleSince)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx, `DELETE FROM wizard_sessions WHERE id = $1`, id)
	return err
}

func scanSession(row pgx.Row) (*model.WizardSession, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var session model.WizardSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}
