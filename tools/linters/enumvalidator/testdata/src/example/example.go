package example

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type DeckStatus string

const (
	DeckGenerating DeckStatus = "generating"
	DeckCompleted  DeckStatus = "completed"
)

type WizardSession struct {
	Status SessionStatus
}

type PitchDeck struct {
	Status DeckStatus
}

func bad() {
	s := &WizardSession{}
	s.Status = "done" // want "enum field Status assigned string literal"

	d := &PitchDeck{}
	d.Status = "rendered" // want "enum field Status assigned string literal"
}

func good() {
	s := &WizardSession{}
	s.Status = SessionCompleted // OK: using constant

	d := &PitchDeck{}
	d.Status = DeckGenerating // OK: using constant
}
