package wizard

import (
	"testing"

	"deckforge.app/wizard/internal/model"
)

func TestValidateStep1(t *testing.T) {
	tests := []struct {
		name    string
		company model.CompanyInfo
		wantErr []string
	}{
		{
			name:    "empty form",
			company: model.CompanyInfo{},
			wantErr: []string{"company_name", "industry"},
		},
		{
			name:    "whitespace company name",
			company: model.CompanyInfo{CompanyName: "   ", Industry: "fintech"},
			wantErr: []string{"company_name"},
		},
		{
			name:    "unknown industry",
			company: model.CompanyInfo{CompanyName: "Acme", Industry: "underwater_basket_weaving"},
			wantErr: []string{"industry"},
		},
		{
			name:    "website without scheme",
			company: model.CompanyInfo{CompanyName: "Acme", Industry: "fintech", WebsiteURL: "acme.io"},
			wantErr: []string{"website_url"},
		},
		{
			name:    "valid with https website",
			company: model.CompanyInfo{CompanyName: "Acme", Industry: "fintech", WebsiteURL: "https://acme.io"},
		},
		{
			name:    "valid without optional fields",
			company: model.CompanyInfo{CompanyName: "Acme", Industry: "ai_saas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &model.WizardSession{CompanyInfo: tt.company}
			errs := ValidateStep(1, s)
			assertFieldErrors(t, errs, tt.wantErr)
		})
	}
}

func TestValidateStep2(t *testing.T) {
	valid := model.MarketTraction{
		Problem:        "Founders spend weeks formatting decks",
		CoreSolution:   "Generate the deck from a guided interview",
		Differentiator: "Investor-readiness scoring built in",
		FundingStage:   "seed",
	}

	tests := []struct {
		name    string
		mutate  func(*model.MarketTraction)
		wantErr []string
	}{
		{
			name:   "valid narrative",
			mutate: func(m *model.MarketTraction) {},
		},
		{
			name:    "problem too short",
			mutate:  func(m *model.MarketTraction) { m.Problem = "too hard" },
			wantErr: []string{"problem"},
		},
		{
			name:    "padding does not count toward length",
			mutate:  func(m *model.MarketTraction) { m.CoreSolution = "   ai   " },
			wantErr: []string{"core_solution"},
		},
		{
			name:    "missing funding stage",
			mutate:  func(m *model.MarketTraction) { m.FundingStage = "" },
			wantErr: []string{"funding_stage"},
		},
		{
			name:    "unknown funding stage",
			mutate:  func(m *model.MarketTraction) { m.FundingStage = "series_z" },
			wantErr: []string{"funding_stage"},
		},
		{
			name: "all narratives short",
			mutate: func(m *model.MarketTraction) {
				m.Problem, m.CoreSolution, m.Differentiator = "x", "y", "z"
			},
			wantErr: []string{"problem", "core_solution", "differentiator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := valid
			tt.mutate(&mt)
			s := &model.WizardSession{MarketTraction: mt}
			errs := ValidateStep(2, s)
			assertFieldErrors(t, errs, tt.wantErr)
		})
	}
}

func TestValidateStep3RequiresQuestions(t *testing.T) {
	s := &model.WizardSession{}
	if errs := ValidateStep(3, s); len(errs) != 1 {
		t.Fatalf("expected questions error, got %v", errs)
	}

	s.Interview.Questions = []model.Question{{ID: "q1", PromptText: "What is your churn?"}}
	if errs := ValidateStep(3, s); len(errs) != 0 {
		t.Fatalf("expected no errors with questions loaded, got %v", errs)
	}
}

func TestValidateStep4NeverBlocks(t *testing.T) {
	if errs := ValidateStep(4, &model.WizardSession{}); len(errs) != 0 {
		t.Fatalf("step 4 should not validate fields, got %v", errs)
	}
}

func assertFieldErrors(t *testing.T, errs FieldErrors, want []string) {
	t.Helper()
	if len(errs) != len(want) {
		t.Fatalf("got %d errors %v, want fields %v", len(errs), errs, want)
	}
	for _, f := range want {
		if errs[f] == "" {
			t.Errorf("missing error for field %q in %v", f, errs)
		}
	}
}
