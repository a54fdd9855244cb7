package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Retention bounds the in-memory log. Zero values mean unbounded.
// Applied atomically with appends: pruning and appending share one lock.
type Retention struct {
	MaxEntries int           `yaml:"max_entries" json:"max_entries"`
	MaxAge     time.Duration `yaml:"max_age"     json:"max_age"`
}

// prunedRange is the payload of a retention_pruned entry. It names the
// removed range and the hash the retained suffix now chains from, so
// integrity stays verifiable after truncation.
type prunedRange struct {
	FromIndex   int    `json:"from_index"`
	ToIndex     int    `json:"to_index"`
	Removed     int    `json:"removed"`
	TrustedHash string `json:"trusted_hash"`
}

// Log is an append-only, in-memory audit log with SHA-256 hash chaining.
// Each entry chains from its predecessor; the first entry of a fresh log
// chains from GenesisHash. History is never rewritten; retention may
// truncate the chain's start, recording the truncation as its own entry.
type Log struct {
	mu        sync.RWMutex
	entries   []Entry
	next      int    // next entry index (monotonic, survives pruning)
	trusted   string // expected prev_hash of entries[0]
	retention Retention
	now       func() time.Time
}

// New creates an empty log chaining from genesis.
func New(retention Retention) *Log {
	return &Log{
		trusted:   GenesisHash,
		retention: retention,
		now:       time.Now,
	}
}

// Append records an entry of the given type. The payload is serialized
// once at append time and snapshotted into the chain.
func (l *Log) Append(t Type, actionID string, payload any) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.appendLocked(t, actionID, payload)
	if err != nil {
		return Entry{}, err
	}
	l.applyRetentionLocked()
	return e, nil
}

func (l *Log) appendLocked(t Type, actionID string, payload any) (Entry, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Entry{}, fmt.Errorf("audit: marshal payload: %w", err)
		}
		raw = b
	}

	e := Entry{
		Index:     l.next,
		Timestamp: l.now().UTC().Format(TimestampFormat),
		Type:      t,
		ActionID:  actionID,
		Payload:   raw,
		PrevHash:  l.tailLocked(),
	}
	e.Hash = HashEntry(e)

	l.entries = append(l.entries, e)
	l.next++
	return e, nil
}

// tailLocked returns the hash the next entry must chain from.
func (l *Log) tailLocked() string {
	if n := len(l.entries); n > 0 {
		return l.entries[n-1].Hash
	}
	return l.trusted
}

// applyRetentionLocked enforces MaxEntries and MaxAge after an append.
func (l *Log) applyRetentionLocked() {
	cut := 0
	if l.retention.MaxEntries > 0 && len(l.entries) > l.retention.MaxEntries {
		cut = len(l.entries) - l.retention.MaxEntries
	}
	if l.retention.MaxAge > 0 {
		oldest := l.now().UTC().Add(-l.retention.MaxAge).Format(TimestampFormat)
		for cut < len(l.entries)-1 && l.entries[cut].Timestamp < oldest {
			cut++
		}
	}
	if cut > 0 {
		l.truncateLocked(cut)
	}
}

// Prune removes all entries older than the cutoff, keeping at least the
// most recent entry, and returns how many were removed. The truncation is
// recorded as a retention_pruned entry so the retained suffix remains
// verifiable from the recorded trusted hash.
func (l *Log) Prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := cutoff.UTC().Format(TimestampFormat)
	cut := 0
	for cut < len(l.entries) && l.entries[cut].Timestamp < limit {
		cut++
	}
	if cut == 0 {
		return 0
	}
	l.truncateLocked(cut)
	return cut
}

// truncateLocked drops entries[:cut], advances the trusted starting hash
// to the last removed entry's hash, and appends the truncation record.
func (l *Log) truncateLocked(cut int) {
	from := l.entries[0].Index
	to := l.entries[cut-1].Index
	l.trusted = l.entries[cut-1].Hash
	l.entries = append([]Entry(nil), l.entries[cut:]...)

	// The truncation record chains from the retained tail (or, when
	// everything was pruned, from the new trusted hash).
	_, _ = l.appendLocked(TypeRetentionPruned, "", prunedRange{
		FromIndex:   from,
		ToIndex:     to,
		Removed:     cut,
		TrustedHash: l.trusted,
	})
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// TrustedHash returns the hash the retained chain starts from: genesis
// for an unpruned log, otherwise the last pruned entry's hash.
func (l *Log) TrustedHash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.trusted
}

// Entries returns a copy of all retained entries in order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// ByActionID returns all retained entries for one action, in order.
func (l *Log) ByActionID(actionID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.ActionID == actionID {
			out = append(out, e)
		}
	}
	return out
}

// ByType returns all retained entries of one type, in order.
func (l *Log) ByType(t Type) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ByTimeRange returns retained entries with from <= ts < to.
func (l *Log) ByTimeRange(from, to time.Time) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lo := from.UTC().Format(TimestampFormat)
	hi := to.UTC().Format(TimestampFormat)

	var out []Entry
	for _, e := range l.entries {
		if e.Timestamp >= lo && e.Timestamp < hi {
			out = append(out, e)
		}
	}
	return out
}
