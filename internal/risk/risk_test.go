package risk

import (
	"testing"

	"github.com/ppiankov/autogate/internal/model"
)

func fv(v float64) *float64 { return &v }

func TestAssessScenarios(t *testing.T) {
	tests := []struct {
		name      string
		action    model.Action
		wantScore int
		wantLevel model.RiskLevel
	}{
		{
			name: "cheap reversible content is safe",
			action: model.Action{
				Category:   model.CategoryContent,
				Name:       "post changelog",
				Value:      fv(5),
				Reversible: true,
				Urgency:    model.UrgencyLow,
			},
			wantScore: 3,
			wantLevel: model.RiskSafe,
		},
		{
			name: "mid-value irreversible trade is medium",
			action: model.Action{
				Category: model.CategoryTrading,
				Name:     "buy position",
				Value:    fv(500),
				Urgency:  model.UrgencyNormal,
			},
			wantScore: 50,
			wantLevel: model.RiskMedium,
		},
		{
			name: "public critical deployment is high",
			action: model.Action{
				Category: model.CategoryDeployment,
				Name:     "deploy api",
				Urgency:  model.UrgencyCritical,
				Metadata: map[string]any{"public": true},
			},
			wantScore: 61,
			wantLevel: model.RiskHigh,
		},
		{
			name: "expensive public config change is critical",
			action: model.Action{
				Category: model.CategoryConfiguration,
				Name:     "rotate prod credentials",
				Value:    fv(50_000),
				Urgency:  model.UrgencyCritical,
				Metadata: map[string]any{"external_visibility": true},
			},
			wantScore: 97,
			wantLevel: model.RiskCritical,
		},
		{
			name: "unknown category lands mid-range not zero",
			action: model.Action{
				Category:   model.Category("gardening"),
				Name:       "water plants",
				Reversible: true,
				Urgency:    model.UrgencyLow,
			},
			wantScore: 8,
			wantLevel: model.RiskSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(&tt.action)
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d (factors %v)", got.Score, tt.wantScore, got.Factors)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestAssessIsDeterministic(t *testing.T) {
	a := model.Action{
		Category: model.CategoryTrading,
		Name:     "rebalance",
		Value:    fv(750),
		Urgency:  model.UrgencyHigh,
	}
	first := Assess(&a)
	for i := 0; i < 10; i++ {
		if got := Assess(&a); got.Score != first.Score || got.Level != first.Level {
			t.Fatalf("assessment varied across calls: %+v vs %+v", got, first)
		}
	}
}

func TestAssessExplainsEveryFactor(t *testing.T) {
	a := model.Action{Category: model.CategoryBuild, Name: "run ci", Urgency: model.UrgencyNormal}
	got := Assess(&a)

	for _, factor := range []string{FactorValue, FactorReversibility, FactorCategory, FactorUrgency, FactorVisibility} {
		if _, ok := got.Factors[factor]; !ok {
			t.Errorf("missing factor %q in assessment", factor)
		}
	}
	if len(got.Factors) != 5 {
		t.Errorf("expected exactly 5 factors, got %d", len(got.Factors))
	}
}

func TestValueBands(t *testing.T) {
	tests := []struct {
		value *float64
		want  float64
	}{
		{nil, 0},
		{fv(0), 0},
		{fv(9.99), 0},
		{fv(10), 25},
		{fv(99), 25},
		{fv(100), 50},
		{fv(999), 50},
		{fv(1_000), 75},
		{fv(9_999), 75},
		{fv(10_000), 100},
		{fv(1_000_000), 100},
	}
	for _, tt := range tests {
		if got := valueFactor(tt.value); got != tt.want {
			t.Errorf("valueFactor(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{0, model.RiskSafe},
		{20, model.RiskSafe},
		{21, model.RiskLow},
		{40, model.RiskLow},
		{41, model.RiskMedium},
		{60, model.RiskMedium},
		{61, model.RiskHigh},
		{80, model.RiskHigh},
		{81, model.RiskCritical},
		{100, model.RiskCritical},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLevelMonotonicInScore(t *testing.T) {
	prev := LevelForScore(0)
	for score := 1; score <= 100; score++ {
		cur := LevelForScore(score)
		if model.RiskRank[cur] < model.RiskRank[prev] {
			t.Fatalf("level decreased from %s to %s at score %d", prev, cur, score)
		}
		prev = cur
	}
}

func FuzzAssessBounds(f *testing.F) {
	f.Add("trading", "buy", 100.0, true, "normal", true)
	f.Add("content", "", -5.0, false, "bogus", false)
	f.Add("x", "y", 1e12, false, "critical", true)

	f.Fuzz(func(t *testing.T, category, name string, value float64, reversible bool, urgency string, public bool) {
		a := model.Action{
			Category:   model.Category(category),
			Name:       name,
			Value:      &value,
			Reversible: reversible,
			Urgency:    model.Urgency(urgency),
			Metadata:   map[string]any{"public": public},
		}
		got := Assess(&a)
		if got.Score < 0 || got.Score > 100 {
			t.Fatalf("score %d out of [0,100]", got.Score)
		}
		if _, ok := model.RiskRank[got.Level]; !ok {
			t.Fatalf("unknown level %q", got.Level)
		}
	})
}
