package wizard

import (
	"regexp"
	"strings"

	"deckforge.app/wizard/internal/model"
)

// FieldErrors maps a field name to a user-facing error message. Validation
// failures are data, never Go errors: they are always recoverable by
// correction.
type FieldErrors map[string]string

var websitePattern = regexp.MustCompile(`^https?://`)

const minNarrativeLen = 10

// ValidateStep checks the step's data on the given session snapshot and
// returns an empty map when the step may be advanced past.
//
// Steps 3 and 4 never block: interview questions are all answerable or
// skippable, and step 4's generate action is a side effect, not a validation.
func ValidateStep(step int, s *model.WizardSession) FieldErrors {
	errs := FieldErrors{}

	switch step {
	case 1:
		c := s.CompanyInfo
		if strings.TrimSpace(c.CompanyName) == "" {
			errs["company_name"] = "Company name is required"
		}
		if c.Industry == "" {
			errs["industry"] = "Industry is required"
		} else if !model.ValidIndustry(c.Industry) {
			errs["industry"] = "Unknown industry"
		}
		if c.WebsiteURL != "" && !websitePattern.MatchString(c.WebsiteURL) {
			errs["website_url"] = "Please enter a valid URL"
		}

	case 2:
		m := s.MarketTraction
		if len(strings.TrimSpace(m.Problem)) < minNarrativeLen {
			errs["problem"] = "Describe the problem clearly"
		}
		if len(strings.TrimSpace(m.CoreSolution)) < minNarrativeLen {
			errs["core_solution"] = "Describe your solution"
		}
		if len(strings.TrimSpace(m.Differentiator)) < minNarrativeLen {
			errs["differentiator"] = "What makes you different?"
		}
		if m.FundingStage == "" {
			errs["funding_stage"] = "Funding stage is required"
		} else if !model.ValidFundingStage(m.FundingStage) {
			errs["funding_stage"] = "Unknown funding stage"
		}

	case 3:
		if len(s.Interview.Questions) == 0 {
			errs["questions"] = "Interview questions are still loading"
		}

	case 4:
		// Generation is gated by the service, not by field validation.
	}

	if len(errs) == 0 {
		return FieldErrors{}
	}
	return errs
}
