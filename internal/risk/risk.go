package risk

import (
	"math"

	"github.com/ppiankov/autogate/internal/model"
)

// Factor weights. Fixed, sum to 1.0.
const (
	weightValue         = 0.35
	weightReversibility = 0.20
	weightCategory      = 0.15
	weightUrgency       = 0.15
	weightVisibility    = 0.15
)

// Factor names used as keys in RiskAssessment.Factors.
const (
	FactorValue         = "financial_value"
	FactorReversibility = "reversibility"
	FactorCategory      = "category_base"
	FactorUrgency       = "urgency"
	FactorVisibility    = "external_visibility"
)

// categoryBase is the fixed base risk per category, 0–100.
// Content is the cheapest to get wrong; configuration the most expensive.
var categoryBase = map[model.Category]float64{
	model.CategoryContent:       20,
	model.CategoryBuild:         30,
	model.CategoryTrading:       50,
	model.CategoryDeployment:    70,
	model.CategoryConfiguration: 80,
}

// defaultCategoryBase is the fallback for unknown categories.
// The classifier never fails; unknowns land in the middle of the range.
const defaultCategoryBase = 50

// urgencyFactor maps urgency to a 0–100 contribution.
var urgencyFactor = map[model.Urgency]float64{
	model.UrgencyLow:      0,
	model.UrgencyNormal:   33,
	model.UrgencyHigh:     66,
	model.UrgencyCritical: 100,
}

// Assess computes a deterministic, explainable risk score for an action.
// This is NOT anomaly detection but a fixed weighted sum over five
// normalized factors. Pure: no side effects, never fails.
func Assess(a *model.Action) model.RiskAssessment {
	factors := map[string]float64{
		FactorValue:         weightValue * valueFactor(a.Value),
		FactorReversibility: weightReversibility * reversibilityFactor(a.Reversible),
		FactorCategory:      weightCategory * categoryFactor(a.Category),
		FactorUrgency:       weightUrgency * urgencyFactor[a.Urgency],
		FactorVisibility:    weightVisibility * visibilityFactor(a),
	}

	sum := 0.0
	for _, c := range factors {
		sum += c
	}

	score := int(math.Round(sum))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return model.RiskAssessment{
		Score:   score,
		Level:   LevelForScore(score),
		Factors: factors,
	}
}

// LevelForScore derives the categorical level from a score via fixed
// thresholds. Monotonic non-decreasing in score.
func LevelForScore(score int) model.RiskLevel {
	switch {
	case score <= 20:
		return model.RiskSafe
	case score <= 40:
		return model.RiskLow
	case score <= 60:
		return model.RiskMedium
	case score <= 80:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// valueFactor maps a monetary magnitude through five bands to 0–100.
// An unset value contributes nothing.
func valueFactor(v *float64) float64 {
	if v == nil {
		return 0
	}
	switch val := *v; {
	case val < 10: // negligible
		return 0
	case val < 100: // low
		return 25
	case val < 1_000: // medium
		return 50
	case val < 10_000: // high
		return 75
	default: // critical
		return 100
	}
}

func reversibilityFactor(reversible bool) float64 {
	if reversible {
		return 0
	}
	return 100
}

func categoryFactor(c model.Category) float64 {
	if base, ok := categoryBase[c]; ok {
		return base
	}
	return defaultCategoryBase
}

func visibilityFactor(a *model.Action) float64 {
	if a.PublicFacing() {
		return 100
	}
	return 0
}
