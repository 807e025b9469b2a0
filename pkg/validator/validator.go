package validator

import (
	"cmp"
	"fmt"
	"slices"
	"unicode"
)

func All(errors ...error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

func MapDict[T any](items map[string]T, f func(string, T) error, description string) error {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if err := f(key, items[key]); err != nil {
			return fmt.Errorf("%s: %w", description, err)
		}
	}
	return nil
}

func NotEmpty(field, description string) error {
	if field == "" {
		return fmt.Errorf("%s must not be empty", description)
	}
	return nil
}

func MatchesAllowed[T comparable](field T, allowed []T, description string) error {
	if !slices.Contains(allowed, field) {
		return fmt.Errorf("%s must be one of %v, got %v", description, allowed, field)
	}
	return nil
}

func NonNegative[T cmp.Ordered](field T, description string) error {
	var zero T
	if field < zero {
		return fmt.Errorf("%s must not be negative, got %v", description, field)
	}
	return nil
}

func InRange[T cmp.Ordered](field, lo, hi T, description string) error {
	if field < lo || field > hi {
		return fmt.Errorf("%s must be between %v and %v, got %v", description, lo, hi, field)
	}
	return nil
}

// Identifier checks that field can be used as a variable name in an
// expression.
func Identifier(field, description string) error {
	if field == "" {
		return fmt.Errorf("%s must not be empty", description)
	}
	for i, r := range field {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%s %q is not a valid identifier", description, field)
	}
	return nil
}
