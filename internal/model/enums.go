package model

// Industries selectable on step 1. "other" is valid but scores lower on
// industry specificity.
var Industries = []string{
	"ai_saas",
	"fintech",
	"healthcare",
	"edtech",
	"ecommerce",
	"marketplace",
	"enterprise",
	"consumer",
	"climate",
	"proptech",
	"logistics",
	"media",
	"other",
}

// FundingStages selectable on step 2.
var FundingStages = []string{
	"pre_seed",
	"seed",
	"series_a",
}

// DeckTypes selectable on step 4.
var DeckTypes = []string{
	"pre_seed",
	"seed",
	"demo_day",
}

// Tones selectable on step 4.
var Tones = []string{
	"clear",
	"confident",
	"conservative",
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func ValidIndustry(v string) bool     { return contains(Industries, v) }
func ValidFundingStage(v string) bool { return contains(FundingStages, v) }
func ValidDeckType(v string) bool     { return contains(DeckTypes, v) }
func ValidTone(v string) bool         { return contains(Tones, v) }
