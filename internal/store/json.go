package store

import (
	"encoding/json"
	"fmt"
)

// Getter and Setter are the read and write halves of a key-value store.
type Getter interface {
	Get(key string) (string, bool, error)
}

type Setter interface {
	Set(key, value string) error
}

// CorruptError reports a stored value that could not be used.
type CorruptError struct {
	Key    string
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("stored value %q unusable: %s", e.Key, e.Reason)
}

// LoadJSON decodes the value under key into a T. A missing key yields def
// and no error. A read failure, malformed JSON, a shape mismatch, or a value
// rejected by validate yields def together with the reason.
func LoadJSON[T any](g Getter, key string, def T, validate func(T) error) (T, error) {
	raw, ok, err := g.Get(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, &CorruptError{Key: key, Reason: err.Error()}
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return def, &CorruptError{Key: key, Reason: err.Error()}
		}
	}
	return v, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(s Setter, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(key, string(b))
}
