// Package signal delivers named, fire-and-forget messages to running engines.
//
// Signals let the outside world resume a waiting graph: an animation
// finished, a button was pressed, a trigger volume was entered. A node
// that wants to wait for one locks its engine and starts a WaitSignal
// job; the job polls the store once per tick and unlocks the engine when
// a matching signal arrives.
package signal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a signal.
type Status string

// Signal status constants.
const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Signal is a message addressed to one engine.
type Signal struct {
	// ID uniquely identifies this signal.
	ID string `json:"id"`

	// Name is the signal type (e.g., "anim.done", "button.pressed").
	Name string `json:"name"`

	// TargetID is the engine ID this signal is sent to.
	TargetID string `json:"target_id"`

	// Payload contains signal-specific data.
	Payload map[string]any `json:"payload,omitempty"`

	// SenderID identifies who sent the signal.
	SenderID string `json:"sender_id,omitempty"`

	Status Status `json:"status"`

	SentAt      time.Time  `json:"sent_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	// Error contains error details if processing failed.
	Error string `json:"error,omitempty"`
}

// NewSignal creates a pending signal with the given name and target engine.
func NewSignal(name, targetID string, payload map[string]any) *Signal {
	return &Signal{
		ID:       newID(),
		Name:     name,
		TargetID: targetID,
		Payload:  payload,
		Status:   StatusPending,
		SentAt:   time.Now(),
	}
}

func newID() string {
	return fmt.Sprintf("sig-%s", uuid.New().String()[:8])
}

// WithSender sets the sender ID on the signal.
func (s *Signal) WithSender(senderID string) *Signal {
	s.SenderID = senderID
	return s
}

// Clone creates a deep copy of the signal.
func (s *Signal) Clone() *Signal {
	c := *s
	if s.Payload != nil {
		c.Payload = make(map[string]any, len(s.Payload))
		for k, v := range s.Payload {
			c.Payload[k] = v
		}
	}
	if s.ProcessedAt != nil {
		t := *s.ProcessedAt
		c.ProcessedAt = &t
	}
	return &c
}

var (
	// ErrSignalNotFound is returned when a signal cannot be found.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrInvalidSignal is returned by Send for signals without a name or target.
	ErrInvalidSignal = errors.New("invalid signal")
)

// Store persists and retrieves signals.
type Store interface {
	// Enqueue adds a signal for delivery.
	Enqueue(ctx context.Context, signal *Signal) error

	// Dequeue returns pending signals for a target in send order.
	// Signals stay pending until marked processed or failed.
	Dequeue(ctx context.Context, targetID string) ([]*Signal, error)

	// Get retrieves a signal by ID.
	Get(ctx context.Context, signalID string) (*Signal, error)

	// MarkProcessed marks a signal as successfully processed.
	MarkProcessed(ctx context.Context, signalID string) error

	// MarkFailed marks a signal as failed with an error.
	MarkFailed(ctx context.Context, signalID string, err error) error

	// ListByTarget returns all signals for a target.
	ListByTarget(ctx context.Context, targetID string) ([]*Signal, error)

	// Delete removes a signal.
	Delete(ctx context.Context, signalID string) error

	// Purge removes every signal for a target and returns how many were removed.
	Purge(ctx context.Context, targetID string) (int, error)
}

// Send validates sig and enqueues it.
func Send(ctx context.Context, store Store, sig *Signal) error {
	if sig == nil || sig.Name == "" || sig.TargetID == "" {
		return fmt.Errorf("%w: name and target are required", ErrInvalidSignal)
	}
	return store.Enqueue(ctx, sig)
}

// Take consumes the oldest pending signal called name for targetID.
// It returns nil and no error when no such signal is pending.
func Take(ctx context.Context, store Store, targetID, name string) (*Signal, error) {
	pending, err := store.Dequeue(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("dequeue signals: %w", err)
	}
	for _, sig := range pending {
		if sig.Name != name {
			continue
		}
		if err := store.MarkProcessed(ctx, sig.ID); err != nil {
			return nil, fmt.Errorf("mark signal %s processed: %w", sig.ID, err)
		}
		return sig, nil
	}
	return nil, nil
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	signals  map[string]*Signal
	byTarget map[string][]string // targetID -> signal IDs in send order
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory signal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		signals:  make(map[string]*Signal),
		byTarget: make(map[string][]string),
	}
}

// Enqueue implements Store. Missing IDs, timestamps and statuses are filled in.
func (s *MemoryStore) Enqueue(_ context.Context, signal *Signal) error {
	if signal.ID == "" {
		signal.ID = newID()
	}
	if signal.SentAt.IsZero() {
		signal.SentAt = time.Now()
	}
	if signal.Status == "" {
		signal.Status = StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.signals[signal.ID] = signal.Clone()
	s.byTarget[signal.TargetID] = append(s.byTarget[signal.TargetID], signal.ID)
	return nil
}

// Dequeue implements Store.
func (s *MemoryStore) Dequeue(_ context.Context, targetID string) ([]*Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*Signal
	for _, id := range s.byTarget[targetID] {
		if sig := s.signals[id]; sig != nil && sig.Status == StatusPending {
			pending = append(pending, sig.Clone())
		}
	}
	return pending, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, signalID string) (*Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sig, ok := s.signals[signalID]
	if !ok {
		return nil, ErrSignalNotFound
	}
	return sig.Clone(), nil
}

// MarkProcessed implements Store.
func (s *MemoryStore) MarkProcessed(_ context.Context, signalID string) error {
	return s.finish(signalID, StatusProcessed, nil)
}

// MarkFailed implements Store.
func (s *MemoryStore) MarkFailed(_ context.Context, signalID string, err error) error {
	return s.finish(signalID, StatusFailed, err)
}

func (s *MemoryStore) finish(signalID string, status Status, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.signals[signalID]
	if !ok {
		return ErrSignalNotFound
	}
	now := time.Now()
	sig.Status = status
	sig.ProcessedAt = &now
	if err != nil {
		sig.Error = err.Error()
	}
	return nil
}

// ListByTarget implements Store.
func (s *MemoryStore) ListByTarget(_ context.Context, targetID string) ([]*Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byTarget[targetID]
	result := make([]*Signal, 0, len(ids))
	for _, id := range ids {
		if sig := s.signals[id]; sig != nil {
			result = append(result, sig.Clone())
		}
	}
	return result, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, signalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, ok := s.signals[signalID]
	if !ok {
		return ErrSignalNotFound
	}
	ids := s.byTarget[sig.TargetID]
	for i, id := range ids {
		if id == signalID {
			s.byTarget[sig.TargetID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	delete(s.signals, signalID)
	return nil
}

// Purge implements Store.
func (s *MemoryStore) Purge(_ context.Context, targetID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byTarget[targetID]
	for _, id := range ids {
		delete(s.signals, id)
	}
	delete(s.byTarget, targetID)
	return len(ids), nil
}
