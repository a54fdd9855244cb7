package boundary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/autogate/internal/model"
)

// FinancialLimits caps monetary exposure across all action categories.
// Zero values mean no limit for that dimension.
type FinancialLimits struct {
	MaxActionValue float64 `yaml:"max_action_value" json:"max_action_value"`
	DailyValueCap  float64 `yaml:"daily_value_cap"  json:"daily_value_cap"`
}

// ContentLimits governs content-category actions.
type ContentLimits struct {
	DailyActionCap int      `yaml:"daily_action_cap" json:"daily_action_cap"`
	ReviewTopics   []string `yaml:"review_topics"    json:"review_topics"`
}

// DevelopmentLimits governs build, deployment, and configuration actions.
type DevelopmentLimits struct {
	DailyDeployCap int      `yaml:"daily_deploy_cap" json:"daily_deploy_cap"`
	ProtectedPaths []string `yaml:"protected_paths"  json:"protected_paths"`
	AlwaysReview   bool     `yaml:"always_review"    json:"always_review"`
}

// TradingLimits governs trading-category actions.
type TradingLimits struct {
	MaxTradeValue  float64 `yaml:"max_trade_value"  json:"max_trade_value"`
	DailyTradeCap  float64 `yaml:"daily_trade_cap"  json:"daily_trade_cap"`
	MaxDailyTrades int     `yaml:"max_daily_trades" json:"max_daily_trades"`
}

// ActiveHours is a UTC hour window [Start, End) during which automated
// actions may run. Start == End means always active.
type ActiveHours struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end"   json:"end"`
}

// Contains reports whether the given UTC hour falls inside the window.
// Windows may wrap midnight (e.g. 22–6).
func (h ActiveHours) Contains(hour int) bool {
	if h.Start == h.End {
		return true
	}
	if h.Start < h.End {
		return hour >= h.Start && hour < h.End
	}
	return hour >= h.Start || hour < h.End
}

// Boundaries is the full policy limit tree, keyed by domain.
// A nil section means "not configured"; the checker fails closed on it.
// Plain data: concurrent access goes through Store.
type Boundaries struct {
	Financial   *FinancialLimits   `yaml:"financial"    json:"financial,omitempty"`
	Content     *ContentLimits     `yaml:"content"      json:"content,omitempty"`
	Development *DevelopmentLimits `yaml:"development"  json:"development,omitempty"`
	Trading     *TradingLimits     `yaml:"trading"      json:"trading,omitempty"`
	ActiveHours *ActiveHours       `yaml:"active_hours" json:"active_hours,omitempty"`
}

// Default returns the built-in boundaries. Conservative: deployments and
// configuration changes always require review, trading is tightly capped.
func Default() *Boundaries {
	return &Boundaries{
		Financial: &FinancialLimits{
			MaxActionValue: 1_000,
			DailyValueCap:  5_000,
		},
		Content: &ContentLimits{
			DailyActionCap: 50,
			ReviewTopics:   []string{"legal", "medical", "financial-advice"},
		},
		Development: &DevelopmentLimits{
			DailyDeployCap: 10,
			ProtectedPaths: []string{"/etc", "/prod", "secrets"},
			AlwaysReview:   true,
		},
		Trading: &TradingLimits{
			MaxTradeValue:  500,
			DailyTradeCap:  2_000,
			MaxDailyTrades: 20,
		},
		ActiveHours: &ActiveHours{Start: 0, End: 0},
	}
}

// Load reads boundaries from a YAML file. A missing file returns defaults;
// invalid YAML returns an error. Defaults are the starting point and the
// file overwrites only the fields it specifies.
func Load(path string) (*Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("boundary: read config: %w", err)
	}

	b := Default()
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("boundary: parse config: %w", err)
	}
	return b, nil
}

// clone returns a deep copy.
func (b Boundaries) clone() Boundaries {
	out := Boundaries{}
	if b.Financial != nil {
		f := *b.Financial
		out.Financial = &f
	}
	if b.Content != nil {
		c := *b.Content
		c.ReviewTopics = append([]string(nil), b.Content.ReviewTopics...)
		out.Content = &c
	}
	if b.Development != nil {
		d := *b.Development
		d.ProtectedPaths = append([]string(nil), b.Development.ProtectedPaths...)
		out.Development = &d
	}
	if b.Trading != nil {
		t := *b.Trading
		out.Trading = &t
	}
	if b.ActiveHours != nil {
		h := *b.ActiveHours
		out.ActiveHours = &h
	}
	return out
}

// sectionFor reports whether the domain section relevant to a category is
// configured. Build, deployment, and configuration share the development
// domain.
func (b Boundaries) sectionFor(c model.Category) bool {
	switch c {
	case model.CategoryTrading:
		return b.Trading != nil
	case model.CategoryContent:
		return b.Content != nil
	case model.CategoryBuild, model.CategoryDeployment, model.CategoryConfiguration:
		return b.Development != nil
	default:
		return false
	}
}

// DefaultConfigYAML returns a commented YAML template for init commands.
func DefaultConfigYAML() string {
	return `# autogate boundaries configuration
# Generated by: autogate boundaries init
#
# Each domain section limits what the engine may auto-execute.
# A missing section fails closed: actions in that domain are never
# auto-executed. Zero-valued numeric limits disable that single check.

# Monetary exposure across all categories.
financial:
  max_action_value: 1000
  daily_value_cap: 5000

# Content publishing.
content:
  daily_action_cap: 50
  review_topics: ["legal", "medical", "financial-advice"]

# Build, deployment, and configuration changes.
development:
  daily_deploy_cap: 10
  protected_paths: ["/etc", "/prod", "secrets"]
  always_review: true

# Trading.
trading:
  max_trade_value: 500
  daily_trade_cap: 2000
  max_daily_trades: 20

# UTC hour window during which automated actions may run.
# start == end means always active.
active_hours:
  start: 0
  end: 0
`
}
