package audit

import (
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the JSON-serializable form of a log, for hosts that need
// durability. The engine itself keeps audit state in process memory only.
type Snapshot struct {
	TrustedHash string  `json:"trusted_hash"`
	NextIndex   int     `json:"next_index"`
	Entries     []Entry `json:"entries"`
}

// Export serializes the log for host persistence.
func (l *Log) Export() ([]byte, error) {
	l.mu.RLock()
	snap := Snapshot{
		TrustedHash: l.trusted,
		NextIndex:   l.next,
		Entries:     append([]Entry(nil), l.entries...),
	}
	l.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("audit: marshal snapshot: %w", err)
	}
	return data, nil
}

// ExportTo writes the exported snapshot to w.
func (l *Log) ExportTo(w io.Writer) error {
	data, err := l.Export()
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Import restores a log from an exported snapshot. The chain is verified
// before the log is accepted; a tampered snapshot is rejected.
func Import(data []byte, retention Retention) (*Log, error) {
	snap, err := parseSnapshot(data)
	if err != nil {
		return nil, err
	}

	if res := verifyChain(snap.Entries, snap.TrustedHash); !res.Valid {
		return nil, fmt.Errorf("audit: snapshot failed verification: %s", res.Error)
	}

	l := New(retention)
	l.trusted = snap.TrustedHash
	l.entries = snap.Entries
	l.next = snap.NextIndex
	if n := len(snap.Entries); n > 0 && snap.Entries[n-1].Index >= l.next {
		l.next = snap.Entries[n-1].Index + 1
	}
	return l, nil
}

// ImportSnapshot replaces this log's contents with a previously exported
// snapshot. The chain is verified first; a tampered snapshot leaves the
// log untouched.
func (l *Log) ImportSnapshot(data []byte) error {
	snap, err := parseSnapshot(data)
	if err != nil {
		return err
	}
	if res := verifyChain(snap.Entries, snap.TrustedHash); !res.Valid {
		return fmt.Errorf("audit: snapshot failed verification: %s", res.Error)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.trusted = snap.TrustedHash
	l.entries = snap.Entries
	l.next = snap.NextIndex
	if n := len(snap.Entries); n > 0 && snap.Entries[n-1].Index >= l.next {
		l.next = snap.Entries[n-1].Index + 1
	}
	return nil
}

// VerifySnapshot validates an exported snapshot without constructing a log.
func VerifySnapshot(data []byte) Result {
	snap, err := parseSnapshot(data)
	if err != nil {
		return Result{BrokenAt: -1, Error: err.Error()}
	}
	return verifyChain(snap.Entries, snap.TrustedHash)
}

func parseSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("audit: parse snapshot: %w", err)
	}
	if snap.TrustedHash == "" {
		snap.TrustedHash = GenesisHash
	}
	return snap, nil
}
