package engine

import (
	"encoding/json"
	"fmt"
)

// State is the JSON-serializable snapshot of engine memory: the audit
// chain and the queue contents. Hosts needing durability export it on
// shutdown and import it on startup; the engine itself never touches disk.
type State struct {
	Audit json.RawMessage `json:"audit"`
	Queue json.RawMessage `json:"queue"`
}

// ExportState snapshots the audit log and queue.
func (e *Engine) ExportState() ([]byte, error) {
	auditData, err := e.log.Export()
	if err != nil {
		return nil, err
	}
	queueData, err := e.queue.Export()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(State{Audit: auditData, Queue: queueData}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("engine: marshal state: %w", err)
	}
	return data, nil
}

// ImportState restores a previously exported snapshot. The audit chain is
// verified before anything is replaced; a tampered snapshot is rejected
// whole.
func (e *Engine) ImportState(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("engine: parse state: %w", err)
	}

	if err := e.log.ImportSnapshot(st.Audit); err != nil {
		return err
	}
	return e.queue.Import(st.Queue)
}
