package boundary

import (
	"sync"
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

// Usage is a snapshot of today's recorded activity, used by daily-cap
// checks. Maps are keyed by category; TotalValue spans all categories.
type Usage struct {
	Day           string                     `json:"day"`
	TotalValue    float64                    `json:"total_value"`
	CategoryValue map[model.Category]float64 `json:"category_value"`
	CategoryCount map[model.Category]int     `json:"category_count"`
}

// Tracker accumulates per-category daily spend and action counts.
// The window is the UTC calendar day; counters reset when the day rolls.
// Only executed work should be recorded; rejected and still-pending
// actions consume no budget.
type Tracker struct {
	mu    sync.Mutex
	day   string
	value map[model.Category]float64
	count map[model.Category]int
	total float64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		value: make(map[model.Category]float64),
		count: make(map[model.Category]int),
	}
}

// Record adds an executed action's value and count to today's totals.
func (t *Tracker) Record(category model.Category, value float64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.roll(now)
	t.value[category] += value
	t.count[category]++
	t.total += value
}

// Snapshot returns a copy of today's usage.
func (t *Tracker) Snapshot(now time.Time) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.roll(now)
	u := Usage{
		Day:           t.day,
		TotalValue:    t.total,
		CategoryValue: make(map[model.Category]float64, len(t.value)),
		CategoryCount: make(map[model.Category]int, len(t.count)),
	}
	for c, v := range t.value {
		u.CategoryValue[c] = v
	}
	for c, n := range t.count {
		u.CategoryCount[c] = n
	}
	return u
}

// roll resets counters when the UTC day changes. Caller holds the lock.
func (t *Tracker) roll(now time.Time) {
	day := now.UTC().Format("2006-01-02")
	if day != t.day {
		t.day = day
		t.value = make(map[model.Category]float64)
		t.count = make(map[model.Category]int)
		t.total = 0
	}
}
