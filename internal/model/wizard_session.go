package model

import (
	"slices"
	"time"
)

// SessionStatus represents the lifecycle state of a wizard session
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// SignalTag is an investor-relevant pattern detected in free-text answers.
// Tags are derived data: they are always recomputable from the answer text.
type SignalTag string

const (
	SignalHasRevenue      SignalTag = "has_revenue"
	SignalHasUsers        SignalTag = "has_users"
	SignalHasGrowth       SignalTag = "has_growth"
	SignalHasMoat         SignalTag = "has_moat"
	SignalHasMetrics      SignalTag = "has_metrics"
	SignalHasTeamStrength SignalTag = "has_team_strength"
)

// WizardSession is the aggregate root for one pass through the intake wizard.
// It is owned by a single writer at a time; the store persists it as a whole.
type WizardSession struct {
	ID                 int64                  `json:"id"`
	UserID             int64                  `json:"user_id"`
	CurrentStep        int                    `json:"current_step"`
	CompletedSteps     []int                  `json:"completed_steps"`
	CompanyInfo        CompanyInfo            `json:"company_info"`
	MarketTraction     MarketTraction         `json:"market_traction"`
	Interview          Interview              `json:"interview"`
	ReviewChoices      ReviewChoices          `json:"review_choices"`
	Answers            map[string]string      `json:"answers"`
	SkippedQuestionIDs []string               `json:"skipped_question_ids"`
	ExtractedSignals   map[string][]SignalTag `json:"extracted_signals"`
	TouchedFields      []string               `json:"touched_fields"`
	Readiness          *Readiness             `json:"readiness,omitempty"` // display cache, recomputed on demand
	Status             SessionStatus          `json:"status"`
	LastActivityAt     time.Time              `json:"last_activity_at"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// CompanyInfo holds step 1 fields.
type CompanyInfo struct {
	CompanyName string `json:"company_name"`
	WebsiteURL  string `json:"website_url,omitempty"`
	Tagline     string `json:"tagline,omitempty"`
	Industry    string `json:"industry"`
	SubCategory string `json:"sub_category,omitempty"`
	Stage       string `json:"stage,omitempty"`
}

// MarketTraction holds step 2 fields.
type MarketTraction struct {
	Problem        string `json:"problem"`
	CoreSolution   string `json:"core_solution"`
	Differentiator string `json:"differentiator"`
	Users          *int64 `json:"users,omitempty"`
	Revenue        *int64 `json:"revenue,omitempty"`
	GrowthRate     string `json:"growth_rate,omitempty"`
	FundingStage   string `json:"funding_stage"`
}

// Interview holds step 3 state. Questions are fetched once on step entry and
// treated as immutable for the session's lifetime; answers live on the session
// itself keyed by question id.
type Interview struct {
	Questions []Question `json:"questions"`
}

// ReviewChoices holds step 4 fields.
type ReviewChoices struct {
	DeckType string `json:"deck_type,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

func NewWizardSession(id, userID int64, now time.Time) *WizardSession {
	return &WizardSession{
		ID:               id,
		UserID:           userID,
		CurrentStep:      1,
		Answers:          make(map[string]string),
		ExtractedSignals: make(map[string][]SignalTag),
		Status:           SessionInProgress,
		LastActivityAt:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// StepCompleted reports whether the step has passed validation at least once.
// Completion is sticky: back-navigating and invalidating a step does not
// revoke it.
func (s *WizardSession) StepCompleted(step int) bool {
	return slices.Contains(s.CompletedSteps, step)
}

// MarkStepCompleted records the step, keeping CompletedSteps sorted and unique.
func (s *WizardSession) MarkStepCompleted(step int) {
	if s.StepCompleted(step) {
		return
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
	slices.Sort(s.CompletedSteps)
}

// MaxCompletedStep returns the highest completed step, or 0.
func (s *WizardSession) MaxCompletedStep() int {
	if len(s.CompletedSteps) == 0 {
		return 0
	}
	return s.CompletedSteps[len(s.CompletedSteps)-1]
}

func (s *WizardSession) IsSkipped(questionID string) bool {
	return slices.Contains(s.SkippedQuestionIDs, questionID)
}

func (s *WizardSession) MarkSkipped(questionID string) {
	if s.IsSkipped(questionID) {
		return
	}
	s.SkippedQuestionIDs = append(s.SkippedQuestionIDs, questionID)
	slices.Sort(s.SkippedQuestionIDs)
}

func (s *WizardSession) ClearSkipped(questionID string) {
	s.SkippedQuestionIDs = slices.DeleteFunc(s.SkippedQuestionIDs, func(id string) bool {
		return id == questionID
	})
}

// AnsweredCount counts questions with a non-empty answer that are not skipped.
// A lingering answer under a skip flag does not count: skip wins.
func (s *WizardSession) AnsweredCount() int {
	n := 0
	for id, text := range s.Answers {
		if text != "" && !s.IsSkipped(id) {
			n++
		}
	}
	return n
}

func (s *WizardSession) FieldTouched(field string) bool {
	return slices.Contains(s.TouchedFields, field)
}

func (s *WizardSession) MarkTouched(field string) {
	if s.FieldTouched(field) {
		return
	}
	s.TouchedFields = append(s.TouchedFields, field)
	slices.Sort(s.TouchedFields)
}

// Clone returns a deep copy, used for validation previews and save snapshots.
func (s *WizardSession) Clone() *WizardSession {
	c := *s
	c.CompletedSteps = slices.Clone(s.CompletedSteps)
	c.SkippedQuestionIDs = slices.Clone(s.SkippedQuestionIDs)
	c.TouchedFields = slices.Clone(s.TouchedFields)
	c.Interview.Questions = slices.Clone(s.Interview.Questions)
	c.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	c.ExtractedSignals = make(map[string][]SignalTag, len(s.ExtractedSignals))
	for k, v := range s.ExtractedSignals {
		c.ExtractedSignals[k] = slices.Clone(v)
	}
	if s.MarketTraction.Users != nil {
		u := *s.MarketTraction.Users
		c.MarketTraction.Users = &u
	}
	if s.MarketTraction.Revenue != nil {
		r := *s.MarketTraction.Revenue
		c.MarketTraction.Revenue = &r
	}
	if s.Readiness != nil {
		r := s.Readiness.Clone()
		c.Readiness = r
	}
	return &c
}
