package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Type classifies an audit entry.
type Type string

const (
	TypeActionReceived   Type = "action_received"
	TypeRiskAssessed     Type = "risk_assessed"
	TypeDecisionMade     Type = "decision_made"
	TypeQueued           Type = "queued"
	TypeApproved         Type = "approved"
	TypeRejected         Type = "rejected"
	TypeExpired          Type = "expired"
	TypeEscalated        Type = "escalated"
	TypeExecuted         Type = "executed"
	TypeExecutionFailed  Type = "execution_failed"
	TypeRolledBack       Type = "rolled_back"
	TypeBoundaryViolated Type = "boundary_violated"
	TypeValidationFailed Type = "validation_failed"
	TypeRetentionPruned  Type = "retention_pruned"
)

// TimestampFormat is the layout used in audit entry timestamps.
// Lexicographic order equals chronological order.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// GenesisHash is the prev_hash for the first entry in an unpruned log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// Entry is one record in the hash-chained audit log.
// Hash covers every other field (including PrevHash), so altering any
// recorded entry breaks the chain at that index. Append-only.
type Entry struct {
	Index     int             `json:"index"`
	Timestamp string          `json:"ts"`
	Type      Type            `json:"type"`
	ActionID  string          `json:"action_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	PrevHash  string          `json:"prev_hash"`
	Hash      string          `json:"hash"`
}

// entryBody is Entry minus its own hash, marshaled for hashing.
// All fields are scalars or raw JSON to guarantee deterministic field order.
type entryBody struct {
	Index     int             `json:"index"`
	Timestamp string          `json:"ts"`
	Type      Type            `json:"type"`
	ActionID  string          `json:"action_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	PrevHash  string          `json:"prev_hash"`
}

// HashEntry computes the canonical hash of an entry's body.
func HashEntry(e Entry) string {
	body, err := json.Marshal(entryBody{
		Index:     e.Index,
		Timestamp: e.Timestamp,
		Type:      e.Type,
		ActionID:  e.ActionID,
		Payload:   e.Payload,
		PrevHash:  e.PrevHash,
	})
	if err != nil {
		// entryBody contains nothing unmarshalable
		panic("audit: marshal entry body: " + err.Error())
	}
	return HashBytes(body)
}

// HashBytes returns "sha256:<hex>" of the given bytes.
func HashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(h[:])
}
