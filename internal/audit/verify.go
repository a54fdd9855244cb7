package audit

import "fmt"

// Result holds the outcome of a hash chain verification.
// BrokenAt is the index of the first entry whose stored hash or chain
// link does not match recomputation, or -1 when the chain is intact.
type Result struct {
	Valid    bool   `json:"valid"`
	Entries  int    `json:"entries"`
	BrokenAt int    `json:"broken_at"`
	Error    string `json:"error,omitempty"`
}

// Verify recomputes the chain from the trusted starting hash and reports
// the first broken link, if any. Read-only: a broken chain is reported,
// never repaired. Remediation is the host's call.
func (l *Log) Verify() Result {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return verifyChain(l.entries, l.trusted)
}

// verifyChain validates entries against an expected starting hash.
func verifyChain(entries []Entry, trusted string) Result {
	expected := trusted
	for _, e := range entries {
		if e.PrevHash != expected {
			return Result{
				Entries:  len(entries),
				BrokenAt: e.Index,
				Error:    fmt.Sprintf("chain link mismatch at index %d: expected prev_hash %s, got %s", e.Index, expected, e.PrevHash),
			}
		}
		if recomputed := HashEntry(e); recomputed != e.Hash {
			return Result{
				Entries:  len(entries),
				BrokenAt: e.Index,
				Error:    fmt.Sprintf("hash mismatch at index %d: entry was altered after recording", e.Index),
			}
		}
		expected = e.Hash
	}
	return Result{Valid: true, Entries: len(entries), BrokenAt: -1}
}
