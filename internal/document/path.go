package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a mapping key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a mapping key segment.
func Key(k string) Segment {
	return Segment{Key: k}
}

// Index returns a sequence index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// Path addresses a node inside a Document.
//
// The textual form joins keys with dots and writes indices in brackets:
// controlPlane.statefulSet.env[0].name. Keys that contain dots or brackets
// are quoted: sync.toHost["custom.resource"].enabled.
type Path []Segment

// Child returns a copy of p extended by seg.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders p in its textual form.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.IsIndex:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteString("]")
		case needsQuoting(seg.Key):
			b.WriteString("[")
			b.WriteString(strconv.Quote(seg.Key))
			b.WriteString("]")
		default:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

func needsQuoting(key string) bool {
	return key == "" || strings.ContainsAny(key, ".[]\" \t")
}

// ParsePath parses the textual path form accepted by String.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}

	var p Path
	i := 0
	expectKey := true
	for i < len(s) {
		switch s[i] {
		case '.':
			if expectKey {
				return nil, fmt.Errorf("invalid path %q: empty key at offset %d", s, i)
			}
			expectKey = true
			i++
		case '[':
			end, seg, err := parseBracket(s, i)
			if err != nil {
				return nil, err
			}
			p = append(p, seg)
			expectKey = false
			i = end
		default:
			if !expectKey {
				return nil, fmt.Errorf("invalid path %q: expected '.' or '[' at offset %d", s, i)
			}
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			p = append(p, Key(s[start:i]))
			expectKey = false
		}
	}
	if expectKey {
		return nil, fmt.Errorf("invalid path %q: trailing '.'", s)
	}
	return p, nil
}

// parseBracket parses a [n] or ["key"] segment starting at s[start] == '['
// and returns the offset just past the closing bracket.
func parseBracket(s string, start int) (int, Segment, error) {
	rest := s[start+1:]
	if strings.HasPrefix(rest, `"`) {
		quoted, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return 0, Segment{}, fmt.Errorf("invalid path %q: unterminated quoted key at offset %d", s, start)
		}
		key, _ := strconv.Unquote(quoted)
		end := start + 1 + len(quoted)
		if end >= len(s) || s[end] != ']' {
			return 0, Segment{}, fmt.Errorf("invalid path %q: missing ']' at offset %d", s, end)
		}
		return end + 1, Key(key), nil
	}

	closing := strings.IndexByte(rest, ']')
	if closing < 0 {
		return 0, Segment{}, fmt.Errorf("invalid path %q: missing ']' at offset %d", s, start)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:closing]))
	if err != nil || n < 0 {
		return 0, Segment{}, fmt.Errorf("invalid path %q: bad index %q", s, rest[:closing])
	}
	return start + 1 + closing + 1, Index(n), nil
}

// MustParsePath is like ParsePath but panics on malformed input. It is
// meant for package-level path constants.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}
