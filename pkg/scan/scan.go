// Package scan provides forward search over slices of comparable elements.
// Object header parsing is built on these helpers.
package scan

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every error returned from Find and FindFrom.
var ErrNotFound = errors.New("element not found")

// NotFoundError reports the element a search failed to locate.
type NotFoundError struct {
	Element string
	Start   int
}

func (e *NotFoundError) Error() string {
	if e.Start > 0 {
		return fmt.Sprintf("%s not found after offset %d", e.Element, e.Start)
	}
	return fmt.Sprintf("%s not found", e.Element)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Find returns the index of the first element equal to elem.
func Find[T comparable](s []T, elem T) (int, error) {
	return FindFrom(s, elem, 0)
}

// FindFrom returns the index of the first element equal to elem at or after
// start. The returned index is absolute, not relative to start.
func FindFrom[T comparable](s []T, elem T, start int) (int, error) {
	if i, ok := FindSome(s, elem, start); ok {
		return i, nil
	}
	return -1, &NotFoundError{Element: fmt.Sprintf("%#v", elem), Start: start}
}

// FindSome is FindFrom without an error value: ok is false on a miss.
func FindSome[T comparable](s []T, elem T, start int) (int, bool) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(s); i++ {
		if s[i] == elem {
			return i, true
		}
	}
	return 0, false
}

// FindSigned returns the index of elem at or after start, or -1.
func FindSigned[T comparable](s []T, elem T, start int) int {
	if i, ok := FindSome(s, elem, start); ok {
		return i
	}
	return -1
}

// FindExact returns the index of elem at or after start. The caller must
// already know elem is present; FindExact panics otherwise.
func FindExact[T comparable](s []T, elem T, start int) int {
	i, ok := FindSome(s, elem, start)
	if !ok {
		panic(fmt.Sprintf("scan: FindExact: %#v not present after offset %d", elem, start))
	}
	return i
}

// Replace returns a copy of s with every non-overlapping occurrence of from
// replaced by to. Occurrences are matched on the whole pattern. An empty
// pattern leaves s unchanged.
func Replace(s []byte, from, to string) []byte {
	out := make([]byte, 0, len(s))
	if from == "" {
		return append(out, s...)
	}

	first := from[0]
	start := 0
	for pos := start; ; {
		i, ok := FindSome(s, first, pos)
		if !ok {
			break
		}
		if !hasPrefixAt(s, i, from) {
			pos = i + 1
			continue
		}
		out = append(out, s[start:i]...)
		out = append(out, to...)
		start = i + len(from)
		pos = start
	}
	return append(out, s[start:]...)
}

func hasPrefixAt(s []byte, at int, pattern string) bool {
	if len(s)-at < len(pattern) {
		return false
	}
	return string(s[at:at+len(pattern)]) == pattern
}
