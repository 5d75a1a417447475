package worker

import (
	"context"

	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/store"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// DeckProcessor abstracts deck generation for testability.
type DeckProcessor interface {
	Process(ctx context.Context, msg queue.Message) error
}

// StoreProvider yields stores bound to a single querier, typically a
// transaction.
type StoreProvider interface {
	Sessions() store.SessionStore
	Decks() store.DeckStore
}

// TxRunner runs a function with stores bound to one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}
