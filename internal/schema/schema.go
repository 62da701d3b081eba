// Package schema checks pricing records before they are written. Violations
// are collected as path/reason issues; Safe logs them and keeps the data,
// Strict turns them into an error.
package schema

import (
	"fmt"
	"log/slog"
	"strings"
)

// Issue is one violated rule.
type Issue struct {
	// Path is the dotted location, e.g. "gpt-4o.input".
	Path   string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Reason)
}

// Result carries validated data with the issues found. A Result with no
// issues is Ok; otherwise it is a warning and Data is still usable.
type Result[T any] struct {
	Data   T
	Issues []Issue
}

// OK reports whether no rule was violated.
func (r Result[T]) OK() bool {
	return len(r.Issues) == 0
}

// Validator lists the issues in a value.
type Validator[T any] func(T) []Issue

// Check runs validate over data.
func Check[T any](data T, validate Validator[T]) Result[T] {
	return Result[T]{Data: data, Issues: validate(data)}
}

// Safe validates data, logs each issue as a warning tagged with provider,
// and returns data unchanged.
func Safe[T any](provider string, data T, validate Validator[T]) T {
	res := Check(data, validate)
	for _, issue := range res.Issues {
		slog.Warn("pricing schema violation",
			"provider", provider,
			"path", issue.Path,
			"reason", issue.Reason,
		)
	}
	return res.Data
}

// Strict validates data and returns a *ValidationError when any rule fails.
func Strict[T any](provider string, data T, validate Validator[T]) (T, error) {
	res := Check(data, validate)
	if !res.OK() {
		return res.Data, &ValidationError{Provider: provider, Issues: res.Issues}
	}
	return res.Data, nil
}

// ValidationError lists every issue found by Strict.
type ValidationError struct {
	Provider string
	Issues   []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: schema validation failed: %s", e.Provider, e.Issues[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: schema validation failed with %d issues:", e.Provider, len(e.Issues))
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}
