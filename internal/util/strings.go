package util

import "strings"

// NonEmptyOr returns s, or fallback when s is blank.
func NonEmptyOr(s string, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// FirstOr returns the first element of items, or the zero value.
func FirstOr[T any](items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[0], true
}
