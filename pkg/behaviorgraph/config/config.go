package config

import (
	"sort"
	"time"
)

// Config is an immutable bag of node parameters or settings values.
// Accessors return the supplied default when a key is missing or holds a
// value of the wrong type.
type Config struct {
	data map[string]any
}

// New creates a Config from a copy of data. A nil map yields an empty Config.
func New(data map[string]any) Config {
	cp := make(map[string]any, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return Config{data: cp}
}

// With returns a copy of c with key set to value.
func (c Config) With(key string, value any) Config {
	cp := make(map[string]any, len(c.data)+1)
	for k, v := range c.data {
		cp[k] = v
	}
	cp[key] = value
	return Config{data: cp}
}

// Merge returns a copy of c overlaid with other. Keys in other win.
func (c Config) Merge(other Config) Config {
	cp := make(map[string]any, len(c.data)+len(other.data))
	for k, v := range c.data {
		cp[k] = v
	}
	for k, v := range other.data {
		cp[k] = v
	}
	return Config{data: cp}
}

// String returns the string value for key.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key. Floats are accepted only when
// they have no fractional part.
func (c Config) Int(key string, defaultVal int) int {
	switch val := c.data[key].(type) {
	case int:
		return val
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Float returns the float64 value for key.
func (c Config) Float(key string, defaultVal float64) float64 {
	switch val := c.data[key].(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// Duration returns the duration value for key.
//
// Strings are parsed with time.ParseDuration. Bare numbers are seconds,
// which is how authored params such as "delay: 1.5" are written.
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	switch val := c.data[key].(type) {
	case time.Duration:
		return val
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case float32:
		return time.Duration(float64(val) * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	}
	return defaultVal
}

// StringSlice returns the string slice for key. A []any is accepted only
// when every element is a string.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	switch val := c.data[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			out = append(out, s)
		}
		return out
	}
	return defaultVal
}

// Sub returns the nested map at key as a Config, or an empty Config.
func (c Config) Sub(key string) Config {
	switch val := c.data[key].(type) {
	case map[string]any:
		return New(val)
	case Config:
		return val
	}
	return New(nil)
}

// Any returns the raw value for key, or defaultVal if missing.
func (c Config) Any(key string, defaultVal any) any {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	return v
}

// Has returns true if the key exists.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Keys returns all keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (c Config) Len() int { return len(c.data) }

// Raw returns the underlying map. It must not be modified.
func (c Config) Raw() map[string]any {
	if c.data == nil {
		return map[string]any{}
	}
	return c.data
}
