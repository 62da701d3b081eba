package markdown

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionNotFound means the expected heading or pricing table is missing.
	ErrSectionNotFound = errors.New("pricing section not found")
	// ErrNoModels means the section was found but no model rows parsed.
	ErrNoModels = errors.New("no models parsed")
)

// MissingSection wraps ErrSectionNotFound with the provider and heading.
func MissingSection(provider, heading string) error {
	return fmt.Errorf("%s: %q: %w", provider, heading, ErrSectionNotFound)
}

// NoModels wraps ErrNoModels with the provider and heading.
func NoModels(provider, heading string) error {
	return fmt.Errorf("%s: %q: %w", provider, heading, ErrNoModels)
}
