package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"deckforge.app/wizard/common/id"
	"deckforge.app/wizard/common/logger"
	"deckforge.app/wizard/internal/deck"
	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/store"
)

// Processor builds a pitch deck from a persisted session snapshot and
// records progress so the status page has something to show while the
// LLM call runs.
type Processor struct {
	sessions  store.SessionStore
	decks     store.DeckStore
	logs      store.GenerationLogStore
	generator deck.Generator
	tx        TxRunner
}

func NewProcessor(sessions store.SessionStore, decks store.DeckStore, logs store.GenerationLogStore, generator deck.Generator, tx TxRunner) *Processor {
	return &Processor{
		sessions:  sessions,
		decks:     decks,
		logs:      logs,
		generator: generator,
		tx:        tx,
	}
}

func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	if msg.TaskType != queue.TaskTypeDeckGeneration || msg.DeckID == nil || msg.SessionID == nil {
		return fmt.Errorf("unsupported task %q", msg.TaskType)
	}
	deckID, sessionID := *msg.DeckID, *msg.SessionID

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DeckID:    &deckID,
		SessionID: &sessionID,
		Component: "wizard.worker.processor",
	})

	record, err := p.decks.GetByID(ctx, deckID)
	if err != nil {
		return fmt.Errorf("loading deck: %w", err)
	}
	if record.Status != model.DeckGenerating {
		// Already finished by an earlier delivery of the same message.
		slog.InfoContext(ctx, "deck already finalized, skipping", "status", record.Status)
		return nil
	}

	session, err := p.sessions.GetByID(ctx, sessionID)
	if err != nil {
		// Without a session there is nothing to retry against.
		failErr := p.decks.MarkFailed(ctx, deckID, "session not found")
		if failErr != nil {
			slog.ErrorContext(ctx, "failed to mark deck failed", "error", failErr)
		}
		return nil
	}

	p.appendLog(ctx, deckID, "started", "Assembling deck from interview material")

	title, slides, err := p.generator.Generate(ctx, session, record.DeckType, record.Tone)
	if err != nil {
		p.appendLog(ctx, deckID, "error", logger.Truncate(err.Error(), 500))
		return fmt.Errorf("generating deck: %w", err)
	}

	// Deck and session finalize together or not at all; a redelivery after a
	// partial write would otherwise see a completed deck on an open session.
	err = p.tx.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Decks().MarkCompleted(ctx, deckID, title, slides); err != nil {
			return fmt.Errorf("marking deck completed: %w", err)
		}
		session.Status = model.SessionCompleted
		session.UpdatedAt = time.Now()
		return stores.Sessions().Save(ctx, session)
	})
	if err != nil {
		return fmt.Errorf("finalizing deck: %w", err)
	}

	p.appendLog(ctx, deckID, "completed", fmt.Sprintf("Generated %d slides", len(slides)))
	slog.InfoContext(ctx, "deck generation completed", "slide_count", len(slides))
	return nil
}

// MarkExhausted finalizes a deck whose message is headed to the DLQ.
func (p *Processor) MarkExhausted(ctx context.Context, msg queue.Message, reason string) {
	if msg.DeckID == nil {
		return
	}
	if err := p.decks.MarkFailed(ctx, *msg.DeckID, logger.Truncate(reason, 500)); err != nil {
		slog.ErrorContext(ctx, "failed to mark deck failed after retries", "deck_id", *msg.DeckID, "error", err)
	}
	p.appendLog(ctx, *msg.DeckID, "failed", "Generation gave up after repeated errors")
}

func (p *Processor) appendLog(ctx context.Context, deckID int64, stage, message string) {
	entry := &model.GenerationLog{
		ID:        id.New(),
		DeckID:    deckID,
		Stage:     stage,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := p.logs.Append(ctx, entry); err != nil {
		// Progress logs are observability, not critical path.
		slog.WarnContext(ctx, "failed to append generation log", "error", err, "stage", stage)
	}
}
