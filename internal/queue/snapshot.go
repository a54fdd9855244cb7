package queue

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ppiankov/autogate/internal/model"
)

// Snapshot is the JSON-serializable form of the queue for host
// persistence. Pending ordering is derived, not stored.
type Snapshot struct {
	Requests []model.ApprovalRequest `json:"requests"`
}

// Export serializes every request, pending and resolved.
func (q *Queue) Export() ([]byte, error) {
	q.mu.RLock()
	snap := Snapshot{Requests: make([]model.ApprovalRequest, 0, len(q.byID))}
	for _, req := range q.byID {
		snap.Requests = append(snap.Requests, *req)
	}
	q.mu.RUnlock()

	sort.Slice(snap.Requests, func(i, j int) bool {
		return snap.Requests[i].CreatedAt.Before(snap.Requests[j].CreatedAt)
	})

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("queue: marshal snapshot: %w", err)
	}
	return data, nil
}

// Import restores queue contents from an exported snapshot, rebuilding
// the pending ordering and resolution aggregates.
func (q *Queue) Import(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("queue: parse snapshot: %w", err)
	}

	// Creation order first, so insertLocked keeps FIFO among equal
	// priorities even for snapshots produced elsewhere.
	sort.Slice(snap.Requests, func(i, j int) bool {
		return snap.Requests[i].CreatedAt.Before(snap.Requests[j].CreatedAt)
	})

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	q.byID = make(map[string]*model.ApprovalRequest, len(snap.Requests))
	q.approved, q.rejected, q.expired, q.escalated = 0, 0, 0, 0
	q.totalWait, q.resolved = 0, 0

	for i := range snap.Requests {
		req := snap.Requests[i]
		r := &req
		q.byID[r.ID] = r

		switch r.Status {
		case model.StatusPending:
			q.insertLocked(r)
		case model.StatusApproved:
			q.approved++
		case model.StatusRejected:
			q.rejected++
		case model.StatusExpired:
			q.expired++
		case model.StatusEscalated:
			q.escalated++
		}
		if (r.Status == model.StatusApproved || r.Status == model.StatusRejected) && r.ResolvedAt != nil {
			q.totalWait += r.ResolvedAt.Sub(r.CreatedAt)
			q.resolved++
		}
	}
	return nil
}
