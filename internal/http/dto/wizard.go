package dto

import (
	"time"

	"deckforge.app/wizard/internal/model"
	"deckforge.app/wizard/internal/service"
	"deckforge.app/wizard/internal/wizard"
)

// StepPatchRequest is the wire form of a partial step update. Pointer fields
// distinguish "not sent" from an explicit clear.
type StepPatchRequest struct {
	Company *CompanyInfoPatch    `json:"company,omitempty"`
	Market  *MarketTractionPatch `json:"market,omitempty"`
	Review  *ReviewChoicesPatch  `json:"review,omitempty"`
}

type CompanyInfoPatch struct {
	CompanyName *string `json:"company_name,omitempty" binding:"omitempty,max=255"`
	WebsiteURL  *string `json:"website_url,omitempty" binding:"omitempty,max=2048"`
	Tagline     *string `json:"tagline,omitempty" binding:"omitempty,max=512"`
	Industry    *string `json:"industry,omitempty" binding:"omitempty,max=64"`
	SubCategory *string `json:"sub_category,omitempty" binding:"omitempty,max=64"`
	Stage       *string `json:"stage,omitempty" binding:"omitempty,max=64"`
}

type MarketTractionPatch struct {
	Problem        *string `json:"problem,omitempty" binding:"omitempty,max=4000"`
	CoreSolution   *string `json:"core_solution,omitempty" binding:"omitempty,max=4000"`
	Differentiator *string `json:"differentiator,omitempty" binding:"omitempty,max=4000"`
	Users          *int64  `json:"users,omitempty" binding:"omitempty,min=0"`
	Revenue        *int64  `json:"revenue,omitempty" binding:"omitempty,min=0"`
	GrowthRate     *string `json:"growth_rate,omitempty" binding:"omitempty,max=64"`
	FundingStage   *string `json:"funding_stage,omitempty" binding:"omitempty,max=64"`
}

type ReviewChoicesPatch struct {
	DeckType *string `json:"deck_type,omitempty" binding:"omitempty,max=64"`
	Tone     *string `json:"tone,omitempty" binding:"omitempty,max=64"`
}

func (r StepPatchRequest) ToModel(step int) model.StepPatch {
	patch := model.StepPatch{Step: step}
	if r.Company != nil {
		patch.Company = &model.CompanyInfoPatch{
			CompanyName: r.Company.CompanyName,
			WebsiteURL:  r.Company.WebsiteURL,
			Tagline:     r.Company.Tagline,
			Industry:    r.Company.Industry,
			SubCategory: r.Company.SubCategory,
			Stage:       r.Company.Stage,
		}
	}
	if r.Market != nil {
		patch.Market = &model.MarketTractionPatch{
			Problem:        r.Market.Problem,
			CoreSolution:   r.Market.CoreSolution,
			Differentiator: r.Market.Differentiator,
			Users:          r.Market.Users,
			Revenue:        r.Market.Revenue,
			GrowthRate:     r.Market.GrowthRate,
			FundingStage:   r.Market.FundingStage,
		}
	}
	if r.Review != nil {
		patch.Review = &model.ReviewChoicesPatch{
			DeckType: r.Review.DeckType,
			Tone:     r.Review.Tone,
		}
	}
	return patch
}

type AnswerRequest struct {
	Text string `json:"text" binding:"max=8000"`
}

type AnswerResponse struct {
	QuestionID string   `json:"question_id"`
	Quality    string   `json:"quality"`
	Label      string   `json:"label,omitempty"`
	Signals    []string `json:"signals,omitempty"`
}

type SessionResponse struct {
	ID             int64                `json:"id,string"`
	CurrentStep    int                  `json:"current_step"`
	CompletedSteps []int                `json:"completed_steps"`
	Status         string               `json:"status"`
	Company        CompanyInfoResponse  `json:"company"`
	Market         MarketTractionView   `json:"market"`
	Questions      []QuestionResponse   `json:"questions"`
	Answers        map[string]string    `json:"answers"`
	SkippedIDs     []string             `json:"skipped_question_ids,omitempty"`
	Review         ReviewChoicesView    `json:"review"`
	Readiness      *ReadinessResponse   `json:"readiness,omitempty"`
	Unsaved        bool                 `json:"unsaved"`
	LastActivityAt time.Time            `json:"last_activity_at"`
	CreatedAt      time.Time            `json:"created_at"`
}

type CompanyInfoResponse struct {
	CompanyName string `json:"company_name"`
	WebsiteURL  string `json:"website_url,omitempty"`
	Tagline     string `json:"tagline,omitempty"`
	Industry    string `json:"industry"`
	SubCategory string `json:"sub_category,omitempty"`
	Stage       string `json:"stage,omitempty"`
}

type MarketTractionView struct {
	Problem        string `json:"problem"`
	CoreSolution   string `json:"core_solution"`
	Differentiator string `json:"differentiator"`
	Users          *int64 `json:"users,omitempty"`
	Revenue        *int64 `json:"revenue,omitempty"`
	GrowthRate     string `json:"growth_rate,omitempty"`
	FundingStage   string `json:"funding_stage"`
}

type ReviewChoicesView struct {
	DeckType string `json:"deck_type,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type QuestionResponse struct {
	ID           string `json:"id"`
	PromptText   string `json:"prompt_text"`
	Category     string `json:"category"`
	SlideMapping string `json:"slide_mapping,omitempty"`
}

type ReadinessResponse struct {
	OverallScore int                      `json:"overall_score"`
	Breakdown    model.ReadinessBreakdown `json:"breakdown"`
	Checklist    []ChecklistItemView      `json:"checklist"`
	Tier         string                   `json:"confidence_tier"`
}

type ChecklistItemView struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// FieldErrorsResponse carries per-field validation messages for a blocked
// advance. HTTP 422, never 4xx-as-error: the session state is unchanged.
type FieldErrorsResponse struct {
	FieldErrors wizard.FieldErrors `json:"field_errors"`
}

func ToSessionResponse(view *service.SessionView) *SessionResponse {
	s := view.Session
	resp := &SessionResponse{
		ID:             s.ID,
		CurrentStep:    s.CurrentStep,
		CompletedSteps: s.CompletedSteps,
		Status:         string(s.Status),
		Company: CompanyInfoResponse{
			CompanyName: s.CompanyInfo.CompanyName,
			WebsiteURL:  s.CompanyInfo.WebsiteURL,
			Tagline:     s.CompanyInfo.Tagline,
			Industry:    s.CompanyInfo.Industry,
			SubCategory: s.CompanyInfo.SubCategory,
			Stage:       s.CompanyInfo.Stage,
		},
		Market: MarketTractionView{
			Problem:        s.MarketTraction.Problem,
			CoreSolution:   s.MarketTraction.CoreSolution,
			Differentiator: s.MarketTraction.Differentiator,
			Users:          s.MarketTraction.Users,
			Revenue:        s.MarketTraction.Revenue,
			GrowthRate:     s.MarketTraction.GrowthRate,
			FundingStage:   s.MarketTraction.FundingStage,
		},
		Questions:  make([]QuestionResponse, 0, len(s.Interview.Questions)),
		Answers:    s.Answers,
		SkippedIDs: s.SkippedQuestionIDs,
		Review: ReviewChoicesView{
			DeckType: s.ReviewChoices.DeckType,
			Tone:     s.ReviewChoices.Tone,
		},
		Unsaved:        view.Unsaved,
		LastActivityAt: s.LastActivityAt,
		CreatedAt:      s.CreatedAt,
	}
	if resp.CompletedSteps == nil {
		resp.CompletedSteps = []int{}
	}
	for _, q := range s.Interview.Questions {
		resp.Questions = append(resp.Questions, QuestionResponse{
			ID:           q.ID,
			PromptText:   q.PromptText,
			Category:     string(q.Category),
			SlideMapping: q.SlideMapping,
		})
	}
	if s.Readiness != nil {
		resp.Readiness = ToReadinessResponse(s.Readiness)
	}
	return resp
}

func ToReadinessResponse(r *model.Readiness) *ReadinessResponse {
	resp := &ReadinessResponse{
		OverallScore: r.OverallScore,
		Breakdown:    r.Breakdown,
		Checklist:    make([]ChecklistItemView, 0, len(r.Checklist)),
		Tier:         string(r.Tier),
	}
	for _, item := range r.Checklist {
		resp.Checklist = append(resp.Checklist, ChecklistItemView{
			Label:  item.Label,
			Passed: item.Passed,
		})
	}
	return resp
}
