package boundary

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

// Kind identifies a class of boundary violation.
type Kind string

const (
	KindValueExceedsLimit    Kind = "value_exceeds_limit"
	KindDailyCapExceeded     Kind = "daily_cap_exceeded"
	KindCategoryAlwaysReview Kind = "category_always_review"
	KindPathRequiresReview   Kind = "path_requires_review"
	KindOutsideActiveHours   Kind = "outside_active_hours"
	KindMissingConfig        Kind = "missing_boundary_config"
)

// Severity grades a violation. Critical violations push the router from
// queue_approval to reject for always-review categories.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Violation is one policy limit an action would cross.
type Violation struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (%s): %s", v.Kind, v.Severity, v.Reason)
}

// HasCritical reports whether any violation is critical-severity.
func HasCritical(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Reasons flattens violations to strings for decision records.
func Reasons(violations []Violation) []string {
	if len(violations) == 0 {
		return nil
	}
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.String()
	}
	return out
}

// Check validates an action against the boundaries tree and today's usage.
// A non-empty result means the action must not auto-execute regardless of
// its risk score. Fails closed: a category whose domain section is missing
// yields a critical violation, never a silent allow.
func Check(a *model.Action, b Boundaries, usage Usage, now time.Time) []Violation {
	var violations []Violation

	if !b.sectionFor(a.Category) {
		violations = append(violations, Violation{
			Kind:     KindMissingConfig,
			Severity: SeverityCritical,
			Reason:   fmt.Sprintf("no boundary configuration for category %q", a.Category),
		})
		return violations
	}

	if b.ActiveHours != nil && !b.ActiveHours.Contains(now.UTC().Hour()) {
		violations = append(violations, Violation{
			Kind:     KindOutsideActiveHours,
			Severity: SeverityWarning,
			Reason: fmt.Sprintf("hour %02d UTC outside active window %02d-%02d",
				now.UTC().Hour(), b.ActiveHours.Start, b.ActiveHours.End),
		})
	}

	violations = append(violations, checkFinancial(a, b.Financial, usage)...)

	switch a.Category {
	case model.CategoryTrading:
		violations = append(violations, checkTrading(a, b.Trading, usage)...)
	case model.CategoryContent:
		violations = append(violations, checkContent(a, b.Content, usage)...)
	case model.CategoryBuild, model.CategoryDeployment, model.CategoryConfiguration:
		violations = append(violations, checkDevelopment(a, b.Development, usage)...)
	}

	return violations
}

func checkFinancial(a *model.Action, f *FinancialLimits, usage Usage) []Violation {
	if f == nil || a.Value == nil {
		return nil
	}
	var out []Violation
	value := *a.Value

	if f.MaxActionValue > 0 && value > f.MaxActionValue {
		out = append(out, Violation{
			Kind:     KindValueExceedsLimit,
			Severity: SeverityCritical,
			Reason:   fmt.Sprintf("value %.2f exceeds max_action_value %.2f", value, f.MaxActionValue),
		})
	}
	if f.DailyValueCap > 0 && usage.TotalValue+value > f.DailyValueCap {
		out = append(out, Violation{
			Kind:     KindDailyCapExceeded,
			Severity: SeverityCritical,
			Reason: fmt.Sprintf("daily value %.2f + %.2f exceeds daily_value_cap %.2f",
				usage.TotalValue, value, f.DailyValueCap),
		})
	}
	return out
}

func checkTrading(a *model.Action, t *TradingLimits, usage Usage) []Violation {
	var out []Violation
	value := a.MonetaryValue()

	if t.MaxTradeValue > 0 && value > t.MaxTradeValue {
		out = append(out, Violation{
			Kind:     KindValueExceedsLimit,
			Severity: SeverityCritical,
			Reason:   fmt.Sprintf("trade value %.2f exceeds max_trade_value %.2f", value, t.MaxTradeValue),
		})
	}
	if t.DailyTradeCap > 0 && usage.CategoryValue[model.CategoryTrading]+value > t.DailyTradeCap {
		out = append(out, Violation{
			Kind:     KindDailyCapExceeded,
			Severity: SeverityCritical,
			Reason: fmt.Sprintf("daily trade value %.2f + %.2f exceeds daily_trade_cap %.2f",
				usage.CategoryValue[model.CategoryTrading], value, t.DailyTradeCap),
		})
	}
	if t.MaxDailyTrades > 0 && usage.CategoryCount[model.CategoryTrading] >= t.MaxDailyTrades {
		out = append(out, Violation{
			Kind:     KindDailyCapExceeded,
			Severity: SeverityCritical,
			Reason: fmt.Sprintf("trade count %d at max_daily_trades %d",
				usage.CategoryCount[model.CategoryTrading], t.MaxDailyTrades),
		})
	}
	return out
}

func checkContent(a *model.Action, c *ContentLimits, usage Usage) []Violation {
	var out []Violation

	if c.DailyActionCap > 0 && usage.CategoryCount[model.CategoryContent] >= c.DailyActionCap {
		out = append(out, Violation{
			Kind:     KindDailyCapExceeded,
			Severity: SeverityWarning,
			Reason: fmt.Sprintf("content count %d at daily_action_cap %d",
				usage.CategoryCount[model.CategoryContent], c.DailyActionCap),
		})
	}
	if topic := matchPattern(actionTopics(a), c.ReviewTopics); topic != "" {
		out = append(out, Violation{
			Kind:     KindPathRequiresReview,
			Severity: SeverityWarning,
			Reason:   fmt.Sprintf("topic matches review pattern %q", topic),
		})
	}
	return out
}

func checkDevelopment(a *model.Action, d *DevelopmentLimits, usage Usage) []Violation {
	var out []Violation

	if d.AlwaysReview && (a.Category == model.CategoryDeployment || a.Category == model.CategoryConfiguration) {
		out = append(out, Violation{
			Kind:     KindCategoryAlwaysReview,
			Severity: SeverityWarning,
			Reason:   fmt.Sprintf("category %q always requires review", a.Category),
		})
	}
	if a.Category == model.CategoryDeployment && d.DailyDeployCap > 0 &&
		usage.CategoryCount[model.CategoryDeployment] >= d.DailyDeployCap {
		out = append(out, Violation{
			Kind:     KindDailyCapExceeded,
			Severity: SeverityCritical,
			Reason: fmt.Sprintf("deploy count %d at daily_deploy_cap %d",
				usage.CategoryCount[model.CategoryDeployment], d.DailyDeployCap),
		})
	}
	if path := matchPattern([]string{a.MetaString("path"), a.MetaString("target")}, d.ProtectedPaths); path != "" {
		out = append(out, Violation{
			Kind:     KindPathRequiresReview,
			Severity: SeverityCritical,
			Reason:   fmt.Sprintf("target matches protected path %q", path),
		})
	}
	return out
}

// actionTopics collects the metadata fields a content review pattern can
// match against.
func actionTopics(a *model.Action) []string {
	return []string{a.MetaString("topic"), a.Name, a.Description}
}

// matchPattern returns the first pattern that any candidate contains,
// case-insensitive. Empty candidates are skipped.
func matchPattern(candidates, patterns []string) string {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		lp := strings.ToLower(p)
		for _, c := range candidates {
			if c == "" {
				continue
			}
			if strings.Contains(strings.ToLower(c), lp) {
				return p
			}
		}
	}
	return ""
}
