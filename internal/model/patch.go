package model

// Step patches carry partial form updates. A nil field means "not provided";
// a non-nil pointer to a zero value is an explicit clear. This distinction
// drives both merge semantics and per-field touched tracking.

type CompanyInfoPatch struct {
	CompanyName *string `json:"company_name,omitempty"`
	WebsiteURL  *string `json:"website_url,omitempty"`
	Tagline     *string `json:"tagline,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
	Stage       *string `json:"stage,omitempty"`
}

type MarketTractionPatch struct {
	Problem        *string `json:"problem,omitempty"`
	CoreSolution   *string `json:"core_solution,omitempty"`
	Differentiator *string `json:"differentiator,omitempty"`
	Users          *int64  `json:"users,omitempty"`
	Revenue        *int64  `json:"revenue,omitempty"`
	GrowthRate     *string `json:"growth_rate,omitempty"`
	FundingStage   *string `json:"funding_stage,omitempty"`
}

type ReviewChoicesPatch struct {
	DeckType *string `json:"deck_type,omitempty"`
	Tone     *string `json:"tone,omitempty"`
}

// StepPatch is a partial update addressed to one wizard step. Exactly one of
// the step fields should be set, matching Step.
type StepPatch struct {
	Step    int                  `json:"step"`
	Company *CompanyInfoPatch    `json:"company,omitempty"`
	Market  *MarketTractionPatch `json:"market,omitempty"`
	Review  *ReviewChoicesPatch  `json:"review,omitempty"`
}

// Apply merges the patch into the session's step data and returns the names
// of the fields it set. Field names are step-qualified so touched tracking
// cannot collide across steps.
func (p StepPatch) Apply(s *WizardSession) []string {
	var fields []string

	if p.Company != nil {
		c := &s.CompanyInfo
		fields = applyString(fields, "company_info.company_name", p.Company.CompanyName, &c.CompanyName)
		fields = applyString(fields, "company_info.website_url", p.Company.WebsiteURL, &c.WebsiteURL)
		fields = applyString(fields, "company_info.tagline", p.Company.Tagline, &c.Tagline)
		fields = applyString(fields, "company_info.industry", p.Company.Industry, &c.Industry)
		fields = applyString(fields, "company_info.sub_category", p.Company.SubCategory, &c.SubCategory)
		fields = applyString(fields, "company_info.stage", p.Company.Stage, &c.Stage)
	}

	if p.Market != nil {
		m := &s.MarketTraction
		fields = applyString(fields, "market_traction.problem", p.Market.Problem, &m.Problem)
		fields = applyString(fields, "market_traction.core_solution", p.Market.CoreSolution, &m.CoreSolution)
		fields = applyString(fields, "market_traction.differentiator", p.Market.Differentiator, &m.Differentiator)
		fields = applyString(fields, "market_traction.growth_rate", p.Market.GrowthRate, &m.GrowthRate)
		fields = applyString(fields, "market_traction.funding_stage", p.Market.FundingStage, &m.FundingStage)
		if p.Market.Users != nil {
			u := *p.Market.Users
			m.Users = &u
			fields = append(fields, "market_traction.users")
		}
		if p.Market.Revenue != nil {
			r := *p.Market.Revenue
			m.Revenue = &r
			fields = append(fields, "market_traction.revenue")
		}
	}

	if p.Review != nil {
		r := &s.ReviewChoices
		fields = applyString(fields, "review_choices.deck_type", p.Review.DeckType, &r.DeckType)
		fields = applyString(fields, "review_choices.tone", p.Review.Tone, &r.Tone)
	}

	return fields
}

// ApplyUntouched merges only the fields the user has never edited in this
// session and that are still at their zero value. Used for late-arriving
// enrichment: a touched field is never overwritten, even if the user cleared
// it back to empty. Returns the names of fields actually filled.
func (p StepPatch) ApplyUntouched(s *WizardSession) []string {
	preview := s.Clone()
	candidates := p.Apply(preview)

	var filled []string
	for _, name := range candidates {
		if s.FieldTouched(name) || !s.fieldEmpty(name) {
			continue
		}
		filled = append(filled, name)
	}
	if len(filled) == 0 {
		return nil
	}

	p.restrictTo(filled).Apply(s)
	return filled
}

func (s *WizardSession) fieldEmpty(name string) bool {
	switch name {
	case "company_info.company_name":
		return s.CompanyInfo.CompanyName == ""
	case "company_info.website_url":
		return s.CompanyInfo.WebsiteURL == ""
	case "company_info.tagline":
		return s.CompanyInfo.Tagline == ""
	case "company_info.industry":
		return s.CompanyInfo.Industry == ""
	case "company_info.sub_category":
		return s.CompanyInfo.SubCategory == ""
	case "company_info.stage":
		return s.CompanyInfo.Stage == ""
	case "market_traction.problem":
		return s.MarketTraction.Problem == ""
	case "market_traction.core_solution":
		return s.MarketTraction.CoreSolution == ""
	case "market_traction.differentiator":
		return s.MarketTraction.Differentiator == ""
	case "market_traction.growth_rate":
		return s.MarketTraction.GrowthRate == ""
	case "market_traction.funding_stage":
		return s.MarketTraction.FundingStage == ""
	case "market_traction.users":
		return s.MarketTraction.Users == nil
	case "market_traction.revenue":
		return s.MarketTraction.Revenue == nil
	case "review_choices.deck_type":
		return s.ReviewChoices.DeckType == ""
	case "review_choices.tone":
		return s.ReviewChoices.Tone == ""
	}
	return false
}

// restrictTo returns a copy of the patch containing only the named fields.
func (p StepPatch) restrictTo(names []string) StepPatch {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	out := StepPatch{Step: p.Step}
	if p.Company != nil {
		c := &CompanyInfoPatch{}
		if keep["company_info.company_name"] {
			c.CompanyName = p.Company.CompanyName
		}
		if keep["company_info.website_url"] {
			c.WebsiteURL = p.Company.WebsiteURL
		}
		if keep["company_info.tagline"] {
			c.Tagline = p.Company.Tagline
		}
		if keep["company_info.industry"] {
			c.Industry = p.Company.Industry
		}
		if keep["company_info.sub_category"] {
			c.SubCategory = p.Company.SubCategory
		}
		if keep["company_info.stage"] {
			c.Stage = p.Company.Stage
		}
		out.Company = c
	}
	if p.Market != nil {
		m := &MarketTractionPatch{}
		if keep["market_traction.problem"] {
			m.Problem = p.Market.Problem
		}
		if keep["market_traction.core_solution"] {
			m.CoreSolution = p.Market.CoreSolution
		}
		if keep["market_traction.differentiator"] {
			m.Differentiator = p.Market.Differentiator
		}
		if keep["market_traction.growth_rate"] {
			m.GrowthRate = p.Market.GrowthRate
		}
		if keep["market_traction.funding_stage"] {
			m.FundingStage = p.Market.FundingStage
		}
		if keep["market_traction.users"] {
			m.Users = p.Market.Users
		}
		if keep["market_traction.revenue"] {
			m.Revenue = p.Market.Revenue
		}
		out.Market = m
	}
	if p.Review != nil {
		r := &ReviewChoicesPatch{}
		if keep["review_choices.deck_type"] {
			r.DeckType = p.Review.DeckType
		}
		if keep["review_choices.tone"] {
			r.Tone = p.Review.Tone
		}
		out.Review = r
	}
	return out
}

func applyString(fields []string, name string, src *string, dst *string) []string {
	if src == nil {
		return fields
	}
	*dst = *src
	return append(fields, name)
}
