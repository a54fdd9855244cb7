package boundary

import "sync"

// Store holds the live boundaries tree and serializes updates.
// Reads take consistent deep-copy snapshots; writes are last-writer-wins
// with no partial-field races.
type Store struct {
	mu sync.RWMutex
	b  Boundaries
}

// NewStore wraps a boundaries tree. A nil tree starts from defaults.
func NewStore(b *Boundaries) *Store {
	if b == nil {
		b = Default()
	}
	return &Store{b: b.clone()}
}

// Snapshot returns a deep copy safe to read without holding the lock.
func (s *Store) Snapshot() Boundaries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.b.clone()
}

// Replace swaps the entire tree for a freshly loaded one (hot reload).
func (s *Store) Replace(next *Boundaries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b = next.clone()
}

// Update is a partial boundaries override. Nil fields keep current values,
// so an update can never silently reset an unspecified limit to its default.
type Update struct {
	Financial   *FinancialUpdate   `yaml:"financial"    json:"financial,omitempty"`
	Content     *ContentUpdate     `yaml:"content"      json:"content,omitempty"`
	Development *DevelopmentUpdate `yaml:"development"  json:"development,omitempty"`
	Trading     *TradingUpdate     `yaml:"trading"      json:"trading,omitempty"`
	ActiveHours *ActiveHours       `yaml:"active_hours" json:"active_hours,omitempty"`
}

// FinancialUpdate overrides individual financial limits.
type FinancialUpdate struct {
	MaxActionValue *float64 `yaml:"max_action_value" json:"max_action_value,omitempty"`
	DailyValueCap  *float64 `yaml:"daily_value_cap"  json:"daily_value_cap,omitempty"`
}

// ContentUpdate overrides individual content limits.
type ContentUpdate struct {
	DailyActionCap *int      `yaml:"daily_action_cap" json:"daily_action_cap,omitempty"`
	ReviewTopics   *[]string `yaml:"review_topics"    json:"review_topics,omitempty"`
}

// DevelopmentUpdate overrides individual development limits.
type DevelopmentUpdate struct {
	DailyDeployCap *int      `yaml:"daily_deploy_cap" json:"daily_deploy_cap,omitempty"`
	ProtectedPaths *[]string `yaml:"protected_paths"  json:"protected_paths,omitempty"`
	AlwaysReview   *bool     `yaml:"always_review"    json:"always_review,omitempty"`
}

// TradingUpdate overrides individual trading limits.
type TradingUpdate struct {
	MaxTradeValue  *float64 `yaml:"max_trade_value"  json:"max_trade_value,omitempty"`
	DailyTradeCap  *float64 `yaml:"daily_trade_cap"  json:"daily_trade_cap,omitempty"`
	MaxDailyTrades *int     `yaml:"max_daily_trades" json:"max_daily_trades,omitempty"`
}

// Apply merges a partial update field-by-field over current values.
func (s *Store) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Financial != nil {
		if s.b.Financial == nil {
			s.b.Financial = &FinancialLimits{}
		}
		if u.Financial.MaxActionValue != nil {
			s.b.Financial.MaxActionValue = *u.Financial.MaxActionValue
		}
		if u.Financial.DailyValueCap != nil {
			s.b.Financial.DailyValueCap = *u.Financial.DailyValueCap
		}
	}

	if u.Content != nil {
		if s.b.Content == nil {
			s.b.Content = &ContentLimits{}
		}
		if u.Content.DailyActionCap != nil {
			s.b.Content.DailyActionCap = *u.Content.DailyActionCap
		}
		if u.Content.ReviewTopics != nil {
			s.b.Content.ReviewTopics = append([]string(nil), *u.Content.ReviewTopics...)
		}
	}

	if u.Development != nil {
		if s.b.Development == nil {
			s.b.Development = &DevelopmentLimits{}
		}
		if u.Development.DailyDeployCap != nil {
			s.b.Development.DailyDeployCap = *u.Development.DailyDeployCap
		}
		if u.Development.ProtectedPaths != nil {
			s.b.Development.ProtectedPaths = append([]string(nil), *u.Development.ProtectedPaths...)
		}
		if u.Development.AlwaysReview != nil {
			s.b.Development.AlwaysReview = *u.Development.AlwaysReview
		}
	}

	if u.Trading != nil {
		if s.b.Trading == nil {
			s.b.Trading = &TradingLimits{}
		}
		if u.Trading.MaxTradeValue != nil {
			s.b.Trading.MaxTradeValue = *u.Trading.MaxTradeValue
		}
		if u.Trading.DailyTradeCap != nil {
			s.b.Trading.DailyTradeCap = *u.Trading.DailyTradeCap
		}
		if u.Trading.MaxDailyTrades != nil {
			s.b.Trading.MaxDailyTrades = *u.Trading.MaxDailyTrades
		}
	}

	if u.ActiveHours != nil {
		hours := *u.ActiveHours
		s.b.ActiveHours = &hours
	}
}
