package service

import (
	"deckforge.app/wizard/core/config"
	"deckforge.app/wizard/internal/enrich"
	"deckforge.app/wizard/internal/interview"
	"deckforge.app/wizard/internal/queue"
	"deckforge.app/wizard/internal/store"
)

type Services struct {
	wizard WizardService
}

// NewServices wires the service layer. The wizard service is a singleton:
// it owns the in-memory registry of live session machines.
func NewServices(stores *store.Stores, producer queue.Producer, questions interview.Provider, enricher enrich.Source, cfg config.WizardConfig) *Services {
	return &Services{
		wizard: NewWizardService(WizardServiceDeps{
			Sessions:  stores.Sessions(),
			Decks:     stores.Decks(),
			Logs:      stores.GenerationLogs(),
			Producer:  producer,
			Questions: questions,
			Enricher:  enricher,
			Debounce:  cfg.AutosaveDebounce,
		}),
	}
}

func (s *Services) Wizard() WizardService {
	return s.wizard
}
