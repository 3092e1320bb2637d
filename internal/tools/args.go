package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Argument names shared by several tools.
const (
	ArgVersion       = "version"
	ArgFile          = "file"
	ArgContent       = "content"
	ArgQuery         = "query"
	ArgSearch        = "search"
	ArgPath          = "path"
	ArgFormat        = "format"
	ArgSchemaVersion = "schema-version"
	ArgLimit         = "limit"
	ArgMode          = "mode"
	ArgKeysOnly      = "keys-only"
)

// InvalidArgumentError reports a tool argument of the wrong type or shape.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// Args gives typed access to the loosely typed argument map of a tool call.
// Arguments decoded from JSON carry numbers as float64; clients that only
// send strings are accepted too.
type Args map[string]any

// String returns the trimmed string argument name, or "" when it is absent
// or not a string.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return strings.TrimSpace(s)
}

// RawString returns the string argument without trimming. Inline content
// keeps its indentation this way.
func (a Args) RawString(name string) string {
	s, _ := a[name].(string)
	return s
}

// FirstString returns the first non-empty string among names.
func (a Args) FirstString(names ...string) string {
	for _, n := range names {
		if s := a.String(n); s != "" {
			return s
		}
	}
	return ""
}

// Bool returns the boolean argument name, or def when it is absent.
func (a Args) Bool(name string, def bool) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if strings.TrimSpace(b) == "" {
			return def, nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def, &InvalidArgumentError{Name: name, Reason: "expected a boolean"}
		}
		return parsed, nil
	default:
		return def, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected a boolean, got %T", v)}
	}
}

// Int returns the integer argument name, or def when it is absent.
func (a Args) Int(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return def, &InvalidArgumentError{Name: name, Reason: "expected an integer"}
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return def, &InvalidArgumentError{Name: name, Reason: "expected an integer"}
		}
		return int(i), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return def, &InvalidArgumentError{Name: name, Reason: "expected an integer"}
		}
		return i, nil
	default:
		return def, &InvalidArgumentError{Name: name, Reason: fmt.Sprintf("expected an integer, got %T", v)}
	}
}

// Decode converts the arguments into v through JSON, so struct tags decide
// the field names.
func (a Args) Decode(v any) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}
