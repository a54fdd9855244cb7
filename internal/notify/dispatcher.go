package notify

import (
	"sync"
	"time"
)

// WebhookConfig defines one webhook notification destination.
type WebhookConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack"
	Events  []string          `yaml:"events"  json:"events"` // e.g. ["approval_needed", "escalation"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Dispatcher fans out events to every webhook whose Events list matches.
// A per-minute rate limit caps outbound volume; over-limit events are
// dropped, never queued. Notification is best-effort by contract.
type Dispatcher struct {
	configs []WebhookConfig
	limiter *limiter
	send    func(WebhookConfig, Event, Payload) error
}

// NewDispatcher creates a Dispatcher. Returns nil if configs is empty
// (callers should nil-check, as with the zero Notifier). A non-positive
// perMinute disables the rate limit.
func NewDispatcher(configs []WebhookConfig, perMinute int) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	return &Dispatcher{
		configs: configs,
		limiter: newLimiter(perMinute),
		send:    Send,
	}
}

// Notify implements Notifier. Fires goroutines so the caller never blocks;
// delivery errors are swallowed.
func (d *Dispatcher) Notify(event Event, payload Payload) {
	if d == nil {
		return
	}
	for _, cfg := range d.configs {
		if !matches(cfg.Events, event) {
			continue
		}
		if !d.limiter.allow(time.Now()) {
			return
		}
		go func(cfg WebhookConfig) { _ = d.send(cfg, event, payload) }(cfg)
	}
}

func matches(events []string, event Event) bool {
	for _, e := range events {
		if e == string(event) || e == "*" {
			return true
		}
	}
	return false
}

// limiter is a fixed-window message counter: at most max sends per minute.
type limiter struct {
	mu          sync.Mutex
	max         int
	count       int
	windowStart time.Time
}

func newLimiter(perMinute int) *limiter {
	return &limiter{max: perMinute}
}

func (l *limiter) allow(now time.Time) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.windowStart) >= time.Minute {
		l.count = 0
		l.windowStart = now
	}
	if l.count >= l.max {
		return false
	}
	l.count++
	return true
}
