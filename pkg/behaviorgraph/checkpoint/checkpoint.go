package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to the checkpoint structure.
const Version = 1

// Checkpoint is a snapshot of an engine cursor.
//
// Variables are not part of a checkpoint; they live in the persistent
// variable store. Resuming re-enters NodeID, so any wait the node set up
// is re-established by running its Handle again.
type Checkpoint struct {
	Version   int       `json:"version"`
	EngineID  string    `json:"engine_id"`
	Graph     string    `json:"graph"`
	NodeID    string    `json:"node_id"`
	Status    string    `json:"status"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	PrevNodeID string `json:"prev_node_id,omitempty"`
	Visits     int    `json:"visits,omitempty"`
}

// New creates a checkpoint for an engine positioned at nodeID.
func New(engineID, graph, nodeID, status string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		EngineID:  engineID,
		Graph:     graph,
		NodeID:    nodeID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

// WithPrevNode records the node visited before NodeID.
func (c *Checkpoint) WithPrevNode(nodeID string) *Checkpoint {
	c.PrevNodeID = nodeID
	return c
}

// WithVisits records how many nodes the engine has visited.
func (c *Checkpoint) WithVisits(n int) *Checkpoint {
	c.Visits = n
	return c
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint and checks its version.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if c.Version != Version {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrVersionMismatch, c.Version, Version)
	}
	return &c, nil
}

// Save marshals cp and writes it to store.
// It returns the encoded size for metrics.
func Save(store Store, cp *Checkpoint) (int, error) {
	data, err := cp.Marshal()
	if err != nil {
		return 0, fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := store.Save(cp.EngineID, cp.NodeID, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Latest loads the most recent checkpoint for an engine.
// Returns an error wrapping ErrNotFound if the engine has none.
func Latest(store Store, engineID string) (*Checkpoint, error) {
	infos, err := store.List(engineID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: engine %s", ErrNotFound, engineID)
	}
	latest := infos[len(infos)-1]
	data, err := store.Load(engineID, latest.NodeID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	cp, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	cp.Sequence = latest.Sequence
	return cp, nil
}
