package store

type Stores struct {
	q Querier
}

func NewStores(q Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.q)
}

func (s *Stores) Decks() DeckStore {
	return newDeckStore(s.q)
}

func (s *Stores) GenerationLogs() GenerationLogStore {
	return newGenerationLogStore(s.q)
}
