// Package vars provides the persistent variable store that conditions read
// and node handlers write.
//
// Conditions only ever see a Reader. Writes happen through explicit Set calls
// from node Handle bodies, never from condition evaluation.
package vars

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for variable access.
var (
	// ErrNotFound indicates the key has never been set.
	ErrNotFound = errors.New("variable not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("variable store closed")

	// ErrEmptyKey indicates an empty variable name.
	ErrEmptyKey = errors.New("variable key cannot be empty")
)

// Reader is the read-only view of a variable store.
// Implementations must be safe for concurrent use.
type Reader interface {
	// Lookup returns the stored value.
	// Returns an error wrapping ErrNotFound if the key is missing.
	Lookup(key string) (any, error)
}

// Store persists variables shared across engines.
// Implementations must be safe for concurrent use.
type Store interface {
	Reader

	// Put stores a value, overwriting any previous value.
	Put(key string, value any) error

	// Delete removes a key. Returns nil if the key doesn't exist.
	Delete(key string) error

	// Keys returns all keys in sorted order.
	Keys() ([]string, error)

	// Close releases any resources.
	Close() error
}

// TypeError reports a stored value that cannot be converted to the
// requested type.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("variable %s: want %s, got %T", e.Key, e.Want, e.Got)
}

// Get returns the value for key converted to T.
//
// Numeric values are converted between integer and float types when the
// conversion is lossless, so values round-tripped through JSON still read
// back as int.
func Get[T any](r Reader, key string) (T, error) {
	var zero T
	if r == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	v, err := r.Lookup(key)
	if err != nil {
		return zero, err
	}
	out, ok := convert[T](v)
	if !ok {
		return zero, &TypeError{Key: key, Want: fmt.Sprintf("%T", zero), Got: v}
	}
	return out, nil
}

// GetOr returns the value for key, or def if it is missing or has the wrong type.
func GetOr[T any](r Reader, key string, def T) T {
	v, err := Get[T](r, key)
	if err != nil {
		return def
	}
	return v
}

// Set stores a typed value.
func Set[T any](s Store, key string, value T) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.Put(key, value)
}

// Snapshot copies every variable in the store into a map.
func Snapshot(s Store) (map[string]any, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := s.Lookup(k)
		if errors.Is(err, ErrNotFound) {
			continue // deleted between Keys and Lookup
		}
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func convert[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	var out any
	switch any(zero).(type) {
	case int:
		n, ok := toInt64(v)
		if !ok {
			return zero, false
		}
		out = int(n)
	case int64:
		n, ok := toInt64(v)
		if !ok {
			return zero, false
		}
		out = n
	case int32:
		n, ok := toInt64(v)
		if !ok || n > math.MaxInt32 || n < math.MinInt32 {
			return zero, false
		}
		out = int32(n)
	case float64:
		f, ok := toFloat64(v)
		if !ok {
			return zero, false
		}
		out = f
	case float32:
		f, ok := toFloat64(v)
		if !ok {
			return zero, false
		}
		out = float32(f)
	default:
		return zero, false
	}
	return out.(T), true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
