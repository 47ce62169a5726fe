package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a notification published by an engine.
// Events are immutable once created.
type Event interface {
	ID() string     // Unique event identifier
	Type() string   // Event type (e.g., "node.entered")
	Source() string // ID of the engine that published the event

	// CorrelationID groups the events of one traversal. Engines use the
	// run ID assigned at StartGraph.
	CorrelationID() string

	Timestamp() time.Time

	Data() any         // Typed payload
	DataBytes() []byte // Serialized payload
}

// Metadata contains common event metadata fields.
type Metadata struct {
	EventID       string    `json:"id"`
	EventType     string    `json:"type"`
	EventSource   string    `json:"source"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// BaseEvent provides a generic event implementation.
// T is the payload type for type-safe access.
type BaseEvent[T any] struct {
	Meta    Metadata `json:"metadata"`
	Payload T        `json:"payload"`

	cachedBytes []byte
}

// ID returns the unique event identifier.
func (e *BaseEvent[T]) ID() string { return e.Meta.EventID }

// Type returns the event type.
func (e *BaseEvent[T]) Type() string { return e.Meta.EventType }

// Source returns the publishing engine's ID.
func (e *BaseEvent[T]) Source() string { return e.Meta.EventSource }

// CorrelationID returns the run the event belongs to.
func (e *BaseEvent[T]) CorrelationID() string { return e.Meta.CorrelationID }

// Timestamp returns when the event occurred.
func (e *BaseEvent[T]) Timestamp() time.Time { return e.Meta.Timestamp }

// Data returns the event payload.
func (e *BaseEvent[T]) Data() any { return e.Payload }

// TypedData returns the strongly-typed payload.
func (e *BaseEvent[T]) TypedData() T { return e.Payload }

// DataBytes returns the JSON-encoded payload. The result is cached.
func (e *BaseEvent[T]) DataBytes() []byte {
	if e.cachedBytes == nil {
		e.cachedBytes, _ = json.Marshal(e.Payload)
	}
	return e.cachedBytes
}

// Option configures event creation.
type Option func(*Metadata)

// WithEventID sets a specific event ID (default: random UUID).
func WithEventID(id string) Option {
	return func(m *Metadata) { m.EventID = id }
}

// WithCorrelationID sets the correlation ID.
func WithCorrelationID(id string) Option {
	return func(m *Metadata) { m.CorrelationID = id }
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) Option {
	return func(m *Metadata) { m.Timestamp = t }
}

// New creates an event of the given type published by source.
// Without WithCorrelationID the event ID is used as the correlation ID.
func New[T any](eventType, source string, payload T, opts ...Option) *BaseEvent[T] {
	meta := Metadata{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		EventSource: source,
		Timestamp:   time.Now(),
	}
	for _, opt := range opts {
		opt(&meta)
	}
	if meta.CorrelationID == "" {
		meta.CorrelationID = meta.EventID
	}
	return &BaseEvent[T]{Meta: meta, Payload: payload}
}

// Handler processes events delivered by a Bus.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// TypedHandler wraps a function handling a specific payload type.
// Events carrying a different payload type fail with an *Error.
func TypedHandler[T any](fn func(ctx context.Context, payload T, meta Metadata) error) Handler {
	return HandlerFunc(func(ctx context.Context, evt Event) error {
		payload, ok := evt.Data().(T)
		if !ok {
			var want T
			return &Error{
				Event:   evt,
				Message: "unexpected payload type",
				Err:     fmt.Errorf("want %T, got %T", want, evt.Data()),
			}
		}
		return fn(ctx, payload, Metadata{
			EventID:       evt.ID(),
			EventType:     evt.Type(),
			EventSource:   evt.Source(),
			CorrelationID: evt.CorrelationID(),
			Timestamp:     evt.Timestamp(),
		})
	})
}
