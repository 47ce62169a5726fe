// Package checkpoint persists engine cursors so a traversal can be resumed
// after a restart or a save/load cycle.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints keyed by engine and node.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a checkpoint for an engine at a node, overwriting any
	// previous checkpoint for the same pair. Each save gets the next
	// sequence number for the engine.
	Save(engineID, nodeID string, data []byte) error

	// Load retrieves a checkpoint.
	// Returns ErrNotFound if it doesn't exist.
	Load(engineID, nodeID string) ([]byte, error)

	// List returns all checkpoints for an engine ordered by sequence.
	// Returns an empty slice (not an error) if the engine has none.
	List(engineID string) ([]Info, error)

	// Delete removes one checkpoint. Returns nil if it doesn't exist.
	Delete(engineID, nodeID string) error

	// DeleteEngine removes all checkpoints for an engine.
	DeleteEngine(engineID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored checkpoint without loading it.
type Info struct {
	EngineID  string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a checkpoint doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")

	// ErrCorrupt indicates stored data could not be decoded.
	ErrCorrupt = errors.New("checkpoint corrupt")

	// ErrVersionMismatch indicates a checkpoint written by an incompatible format.
	ErrVersionMismatch = errors.New("checkpoint version mismatch")
)
