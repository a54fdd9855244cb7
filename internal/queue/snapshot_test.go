package queue

import (
	"testing"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	q := newTestQueue(t, Config{})

	a, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskMedium))
	b, _ := q.Add(testDecision(model.UrgencyHigh, model.RiskCritical))
	c, _ := q.Add(testDecision(model.UrgencyLow, model.RiskMedium))
	q.Approve(a.ID, "alice", "ok")

	data, err := q.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	restored := New(Config{}, audit.New(audit.Retention{}))
	if err := restored.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if restored.Len() != 2 {
		t.Fatalf("pending = %d, want 2", restored.Len())
	}
	// Priority ordering is rebuilt, not trusted from the snapshot.
	pending := restored.Pending()
	if pending[0].ID != b.ID || pending[1].ID != c.ID {
		t.Fatalf("order = [%s %s], want [%s %s]", pending[0].ID, pending[1].ID, b.ID, c.ID)
	}

	s := restored.Stats()
	if s.Approved != 1 {
		t.Errorf("approved = %d, want 1 rebuilt from snapshot", s.Approved)
	}
	if s.AvgResolutionWait < 0 {
		t.Errorf("avg wait = %v", s.AvgResolutionWait)
	}

	// Resolved requests stay queryable and terminal after import.
	got, ok := restored.Get(a.ID)
	if !ok || got.Status != model.StatusApproved {
		t.Fatalf("restored resolved request: %+v ok=%v", got, ok)
	}
}

func TestImportRejectsMalformedSnapshot(t *testing.T) {
	q := newTestQueue(t, Config{})
	if err := q.Import([]byte("{oops")); err == nil {
		t.Fatal("expected parse error")
	}
}
