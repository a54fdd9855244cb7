package engine

import (
	"time"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/boundary"
	"github.com/ppiankov/autogate/internal/notify"
	"github.com/ppiankov/autogate/internal/queue"
)

// DefaultSweepInterval is how often the background sweep expires stale
// requests and checks escalations.
const DefaultSweepInterval = time.Hour

// Config holds everything needed to construct an Engine.
// Zero values get safe defaults; the zero Config is usable.
type Config struct {
	// Boundaries is the initial policy limit tree. Nil means built-in
	// defaults.
	Boundaries *boundary.Boundaries

	// BoundariesPath, when set, is watched for changes and hot-reloaded
	// while the engine runs.
	BoundariesPath string

	// Queue tunables: capacity, expiration window, escalation age,
	// eviction policy.
	Queue queue.Config

	// Retention bounds the in-memory audit log. Zero means unbounded.
	Retention audit.Retention

	// SweepInterval is the cadence of the expiration/escalation sweep.
	SweepInterval time.Duration

	// Notifier receives approval_needed/escalation/decision/daily_summary
	// events. Nil means notifications are dropped.
	Notifier notify.Notifier
}

func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Notifier == nil {
		c.Notifier = notify.Discard{}
	}
	return c
}
