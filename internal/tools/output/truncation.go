package output

import (
	"fmt"
	"unicode/utf8"
)

// TruncateGeneric truncates a slice of items to maxItems.
// Returns the truncated slice and a warning if truncation occurred.
func TruncateGeneric[T any](items []T, maxItems int) ([]T, *TruncationWarning) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	// Cap at absolute maximum
	if maxItems > AbsoluteMaxItems {
		maxItems = AbsoluteMaxItems
	}

	total := len(items)
	if total <= maxItems {
		return items, nil
	}

	return items[:maxItems], &TruncationWarning{
		Shown:   maxItems,
		Total:   total,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d matches. Use a more specific query or a path expression for complete results.", maxItems, total),
	}
}

// EffectiveLimit calculates the effective limit considering request and config limits.
// It applies absolute bounds to prevent unbounded responses.
func EffectiveLimit(requestLimit, configLimit int) int {
	// If no request limit specified, use config limit
	if requestLimit <= 0 {
		if configLimit <= 0 {
			return DefaultMaxItems
		}
		return min(configLimit, AbsoluteMaxItems)
	}

	// Take the minimum of request and config limits
	effective := requestLimit
	if configLimit > 0 && configLimit < effective {
		effective = configLimit
	}

	return min(effective, AbsoluteMaxItems)
}

// TruncateText cuts s to at most maxBytes bytes on a rune boundary.
// Returns the cut text and a warning if truncation occurred.
func TruncateText(s string, maxBytes int) (string, *TruncationWarning) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}
	if maxBytes > AbsoluteMaxResponseBytes {
		maxBytes = AbsoluteMaxResponseBytes
	}
	if len(s) <= maxBytes {
		return s, nil
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], &TruncationWarning{
		Shown:   cut,
		Total:   len(s),
		Message: fmt.Sprintf("Response truncated to %d of %d bytes.", cut, len(s)),
	}
}
