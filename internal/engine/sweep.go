package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/boundary"
	"github.com/ppiankov/autogate/internal/notify"
)

// Start launches the background expiration/escalation sweep and, when a
// boundaries path is configured, the hot-reload watcher. Idempotent.
// Stop cancels both; the engine is usable without Start for hosts that
// drive sweeps themselves via Sweep.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.sweepLoop(ctx)
	}()

	if e.cfg.BoundariesPath != "" {
		reloader, err := boundary.NewReloader(e.boundaries, e.cfg.BoundariesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "engine: boundaries watch disabled: %v\n", err)
			return
		}
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			_ = reloader.Run(ctx)
		}()
	}
}

// Stop cancels background work and waits for it to finish. Safe to call
// without Start and safe to call twice.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

func (e *Engine) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	lastSummaryDay := e.now().UTC().Format("2006-01-02")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep()

			// One summary per UTC day, on the first sweep after the roll.
			day := e.now().UTC().Format("2006-01-02")
			if day != lastSummaryDay {
				lastSummaryDay = day
				e.notifySummary()
			}
		}
	}
}

// Sweep runs one expiration pass and one escalation check, notifying for
// every flagged request. Exposed so hosts and tests can drive sweeps
// without the background ticker.
func (e *Engine) Sweep() {
	now := e.now().UTC()

	e.queue.ExpireStale(now)

	for _, req := range e.queue.CheckEscalations(now) {
		e.notifier.Notify(notify.EventEscalation, notify.Payload{
			Timestamp: now.Format(audit.TimestampFormat),
			ActionID:  req.Decision.Action.ID,
			RequestID: req.ID,
			Category:  string(req.Decision.Action.Category),
			Name:      req.Decision.Action.Name,
			Outcome:   string(req.Decision.Outcome),
			Reason:    "needs elevated attention",
			Score:     req.Decision.Assessment.Score,
			Level:     string(req.Decision.Assessment.Level),
			Priority:  req.Priority,
		})
	}
}

func (e *Engine) notifySummary() {
	s := e.queue.Stats()
	e.notifier.Notify(notify.EventDailySummary, notify.Payload{
		Timestamp: e.now().UTC().Format(audit.TimestampFormat),
		Summary: fmt.Sprintf("pending=%d approved=%d rejected=%d expired=%d escalated=%d",
			s.Pending, s.Approved, s.Rejected, s.Expired, s.Escalated),
	})
}
