package wizard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/readiness"
	"deckforge.app/wizard/internal/signal"
)

var (
	// ErrSessionCompleted is returned for mutations on a finalized session.
	ErrSessionCompleted = errors.New("session is completed")
	// ErrInvalidStep is returned for navigation outside the allowed edges.
	ErrInvalidStep = errors.New("invalid step transition")
)

const (
	FirstStep = 1
	LastStep  = 4
)

// Machine owns the canonical in-memory state of one wizard session and is
// its single writer. All mutation operations are synchronous and never
// suspend; durability happens in the background through the autosaver. A UI
// can therefore apply a keystroke instantly while the save trails behind.
// The mutex only exists so save snapshots taken on the timer goroutine see
// consistent state; it is never held across anything that blocks.
type Machine struct {
	mu        sync.Mutex
	session   *model.WizardSession
	registry  *signal.Registry
	scoring   readiness.Config
	clock     Clock
	autosaver *Autosaver
}

// New wraps an existing session snapshot (fresh or loaded from the store).
func New(session *model.WizardSession, registry *signal.Registry, scoring readiness.Config, saver Saver, clock Clock, debounce time.Duration) *Machine {
	m := &Machine{
		session:  session,
		registry: registry,
		scoring:  scoring,
		clock:    clock,
	}
	m.autosaver = NewAutosaver(saver, m.Snapshot, clock, debounce)
	return m
}

// Snapshot returns a deep copy of the session, safe to hand to the store or
// over the API while mutations continue.
func (m *Machine) Snapshot() *model.WizardSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Autosaver exposes save state (unsaved indicator, flush) to the service.
func (m *Machine) Autosaver() *Autosaver {
	return m.autosaver
}

// Update merges a partial form edit into its step without validating or
// navigating. This is the keystroke-level path: it marks the touched fields
// that shield user input from later enrichment.
func (m *Machine) Update(patch model.StepPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	touched := patch.Apply(m.session)
	for _, f := range touched {
		m.session.MarkTouched(f)
	}
	m.bump()
	return nil
}

// Advance validates the step with the patch merged in. On success the data
// is committed, the step recorded as completed, and the wizard moves to the
// next step (step 4 stays put: generation is the service's side effect). On
// failure the errors are returned and nothing changes, including
// CurrentStep.
func (m *Machine) Advance(step int, patch model.StepPatch) (FieldErrors, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return nil, err
	}
	if step != m.session.CurrentStep {
		return nil, fmt.Errorf("%w: advance step %d while at step %d", ErrInvalidStep, step, m.session.CurrentStep)
	}

	preview := m.session.Clone()
	patch.Apply(preview)
	if errs := ValidateStep(step, preview); len(errs) > 0 {
		return errs, nil
	}

	touched := patch.Apply(m.session)
	for _, f := range touched {
		m.session.MarkTouched(f)
	}
	m.session.MarkStepCompleted(step)
	if step < LastStep {
		m.session.CurrentStep = step + 1
	}
	m.refreshReadiness()
	m.bump()
	return FieldErrors{}, nil
}

// GoBack moves one step back. Completed steps stay completed: leaving an
// earlier step invalid later on does not revoke its membership.
func (m *Machine) GoBack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goToStep(m.session.CurrentStep - 1)
}

// GoToStep jumps to any step up to the first incomplete one. Data is not
// mutated and nothing is re-validated.
func (m *Machine) GoToStep(step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goToStep(step)
}

func (m *Machine) goToStep(step int) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if step < FirstStep || step > LastStep {
		return fmt.Errorf("%w: step %d out of range", ErrInvalidStep, step)
	}
	if step > m.session.MaxCompletedStep()+1 {
		return fmt.Errorf("%w: step %d not yet reachable", ErrInvalidStep, step)
	}
	m.session.CurrentStep = step
	m.bump()
	return nil
}

// SetQuestions installs the interview question set, once. The list is
// immutable for the session's lifetime after that.
func (m *Machine) SetQuestions(questions []model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	if len(m.session.Interview.Questions) > 0 {
		return nil
	}
	m.session.Interview.Questions = questions
	m.bump()
	return nil
}

// RecordAnswer overwrites the answer text for a question and recomputes its
// extracted signals. A non-empty answer clears any skip flag; answers are
// never deleted, only overwritten. Called on every keystroke.
func (m *Machine) RecordAnswer(questionID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	m.session.Answers[questionID] = text
	if text != "" {
		m.session.ClearSkipped(questionID)
	}

	// Signals are a pure function of the answer text: no answer, no signals.
	tags := m.registry.Extract(text)
	if len(tags) == 0 {
		delete(m.session.ExtractedSignals, questionID)
	} else {
		m.session.ExtractedSignals[questionID] = tags
	}
	m.refreshReadiness()
	m.bump()
	return nil
}

// Skip flags a question as skipped. Existing answer text is kept: skip plus
// a lingering answer is legal transient state, and skip wins for completion
// counting until a later non-empty answer clears it.
func (m *Machine) Skip(questionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	m.session.MarkSkipped(questionID)
	m.refreshReadiness()
	m.bump()
	return nil
}

// MergeEnrichment folds an out-of-band pre-fill (website scrape, AI
// suggestion) into the session. Fields the user has touched in this session
// are never overwritten, whatever the payload says; only untouched,
// still-empty fields are filled. Returns the field names actually filled.
func (m *Machine) MergeEnrichment(patch model.StepPatch) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return nil, err
	}
	filled := patch.ApplyUntouched(m.session)
	if len(filled) > 0 {
		m.refreshReadiness()
		m.bump()
	}
	return filled, nil
}

// Complete finalizes the session after a successful deck generation. The
// session becomes read-only for wizard purposes.
func (m *Machine) Complete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	m.session.Status = model.SessionCompleted
	m.bump()
	return nil
}

// Readiness recomputes the investor-readiness summary from the current
// snapshot and refreshes the display cache.
func (m *Machine) Readiness() *model.Readiness {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshReadiness()
	return m.session.Readiness.Clone()
}

// ClassifyAnswer grades the stored answer for a question.
func (m *Machine) ClassifyAnswer(questionID string) signal.Quality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return signal.Classify(m.session.Answers[questionID], m.registry)
}

func (m *Machine) refreshReadiness() {
	m.session.Readiness = readiness.Compute(m.session, m.scoring)
}

func (m *Machine) mutable() error {
	if m.session.Status == model.SessionCompleted {
		return ErrSessionCompleted
	}
	return nil
}

func (m *Machine) bump() {
	now := m.clock.Now()
	m.session.LastActivityAt = now
	m.session.UpdatedAt = now
	m.autosaver.MarkDirty()
}
