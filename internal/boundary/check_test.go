package boundary

import (
	"testing"
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

func fv(v float64) *float64 { return &v }

var noon = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func hasKind(violations []Violation, kind Kind) bool {
	for _, v := range violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckFailsClosedOnMissingSection(t *testing.T) {
	b := *Default()
	b.Trading = nil

	a := model.Action{Category: model.CategoryTrading, Name: "buy", Value: fv(1)}
	violations := Check(&a, b, Usage{}, noon)

	if len(violations) != 1 {
		t.Fatalf("expected exactly the missing-config violation, got %v", violations)
	}
	if violations[0].Kind != KindMissingConfig || violations[0].Severity != SeverityCritical {
		t.Fatalf("expected critical missing_boundary_config, got %+v", violations[0])
	}
}

func TestCheckUnknownCategoryFailsClosed(t *testing.T) {
	a := model.Action{Category: model.Category("gardening"), Name: "water"}
	violations := Check(&a, *Default(), Usage{}, noon)

	if !hasKind(violations, KindMissingConfig) {
		t.Fatalf("expected missing-config violation for unknown category, got %v", violations)
	}
}

func TestCheckValueExceedsLimit(t *testing.T) {
	a := model.Action{Category: model.CategoryTrading, Name: "big buy", Value: fv(5_000)}
	violations := Check(&a, *Default(), Usage{}, noon)

	if !hasKind(violations, KindValueExceedsLimit) {
		t.Fatalf("expected value violation, got %v", violations)
	}
	if !HasCritical(violations) {
		t.Fatal("expected a critical violation for value over limit")
	}
}

func TestCheckDailyValueCap(t *testing.T) {
	usage := Usage{
		TotalValue:    4_900,
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}
	a := model.Action{Category: model.CategoryTrading, Name: "buy", Value: fv(200)}
	violations := Check(&a, *Default(), usage, noon)

	if !hasKind(violations, KindDailyCapExceeded) {
		t.Fatalf("expected daily cap violation at 4900+200 over 5000, got %v", violations)
	}
}

func TestCheckUnderAllLimitsPasses(t *testing.T) {
	a := model.Action{Category: model.CategoryTrading, Name: "small buy", Value: fv(50)}
	violations := Check(&a, *Default(), Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestCheckMaxDailyTrades(t *testing.T) {
	usage := Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{model.CategoryTrading: 20},
	}
	a := model.Action{Category: model.CategoryTrading, Name: "one more", Value: fv(10)}
	violations := Check(&a, *Default(), usage, noon)

	if !hasKind(violations, KindDailyCapExceeded) {
		t.Fatalf("expected trade count violation at cap, got %v", violations)
	}
}

func TestCheckContentReviewTopics(t *testing.T) {
	a := model.Action{
		Category: model.CategoryContent,
		Name:     "publish post",
		Metadata: map[string]any{"topic": "Medical disclaimers"},
	}
	violations := Check(&a, *Default(), Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if !hasKind(violations, KindPathRequiresReview) {
		t.Fatalf("expected review-topic violation, got %v", violations)
	}
	if HasCritical(violations) {
		t.Fatal("review topic should be a warning, not critical")
	}
}

func TestCheckDeploymentAlwaysReview(t *testing.T) {
	a := model.Action{Category: model.CategoryDeployment, Name: "deploy api"}
	violations := Check(&a, *Default(), Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if !hasKind(violations, KindCategoryAlwaysReview) {
		t.Fatalf("expected always-review violation, got %v", violations)
	}
}

func TestCheckProtectedPath(t *testing.T) {
	a := model.Action{
		Category: model.CategoryConfiguration,
		Name:     "edit config",
		Metadata: map[string]any{"path": "/etc/nginx/nginx.conf"},
	}
	violations := Check(&a, *Default(), Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if !hasKind(violations, KindPathRequiresReview) {
		t.Fatalf("expected protected-path violation, got %v", violations)
	}
	if !HasCritical(violations) {
		t.Fatal("expected protected path to be critical")
	}
}

func TestCheckBuildUnderCapPasses(t *testing.T) {
	a := model.Action{Category: model.CategoryBuild, Name: "run tests"}
	violations := Check(&a, *Default(), Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if len(violations) != 0 {
		t.Fatalf("expected build under limits to pass, got %v", violations)
	}
}

func TestCheckActiveHours(t *testing.T) {
	b := *Default()
	b.ActiveHours = &ActiveHours{Start: 9, End: 17}

	a := model.Action{Category: model.CategoryBuild, Name: "run tests"}
	midnight := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	violations := Check(&a, b, Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, midnight)
	if !hasKind(violations, KindOutsideActiveHours) {
		t.Fatalf("expected outside-hours violation at 02:00, got %v", violations)
	}

	violations = Check(&a, b, Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)
	if hasKind(violations, KindOutsideActiveHours) {
		t.Fatalf("expected no hours violation at noon, got %v", violations)
	}
}

func TestActiveHoursWrapMidnight(t *testing.T) {
	h := ActiveHours{Start: 22, End: 6}
	tests := []struct {
		hour int
		want bool
	}{
		{23, true},
		{2, true},
		{6, false},
		{12, false},
		{22, true},
	}
	for _, tt := range tests {
		if got := h.Contains(tt.hour); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
	always := ActiveHours{Start: 0, End: 0}
	if !always.Contains(3) {
		t.Error("start == end should mean always active")
	}
}

func TestZeroLimitDisablesCheck(t *testing.T) {
	b := *Default()
	b.Financial.MaxActionValue = 0
	b.Trading.MaxTradeValue = 0

	a := model.Action{Category: model.CategoryTrading, Name: "huge buy", Value: fv(1_000_000)}
	violations := Check(&a, b, Usage{
		CategoryValue: map[model.Category]float64{},
		CategoryCount: map[model.Category]int{},
	}, noon)

	if hasKind(violations, KindValueExceedsLimit) {
		t.Fatalf("zero limits should disable value checks, got %v", violations)
	}
}
