package output

import (
	"strings"
)

// RedactedValue is the placeholder used for masked secret data.
const RedactedValue = "***REDACTED***"

// DefaultSensitiveKeys returns the key substrings masked by default. Matching
// is case-insensitive.
func DefaultSensitiveKeys() []string {
	return []string{
		// External database connection strings embed credentials
		"datasource",
		"password",
		"token",
		"credentials",
		"privatekey",
		"apikey",
	}
}

// Masker redacts values stored under sensitive keys.
type Masker struct {
	keys []string
}

// NewMasker creates a Masker for the given key substrings. A nil or empty
// list uses DefaultSensitiveKeys.
func NewMasker(keys []string) *Masker {
	if len(keys) == 0 {
		keys = DefaultSensitiveKeys()
	}
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}
	return &Masker{keys: lowered}
}

// IsSensitiveKey reports whether a mapping key holds sensitive data.
func (m *Masker) IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range m.keys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// Mask returns value with every scalar under a sensitive key replaced by
// RedactedValue. When key itself is sensitive, scalar values are redacted
// directly. The input is never modified.
func (m *Masker) Mask(key string, value any) any {
	if m.IsSensitiveKey(key) {
		return redact(value)
	}

	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = m.Mask(k, child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = m.Mask("", child)
		}
		return out
	default:
		return value
	}
}

// redact replaces every scalar in value, keeping the shape of containers so
// callers can still see which fields exist.
func redact(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = redact(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = redact(child)
		}
		return out
	case bool:
		return v
	default:
		return RedactedValue
	}
}
