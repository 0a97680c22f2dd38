// Package validation collects field-level violations for request payloads.
package validation

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a snake_case violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// Present flags a nil pointer as missing.
func Present[T any](field string, value *T, v Violations) {
	if value == nil {
		v.Add(field, "required")
	}
}

func Positive(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, "must_be_positive")
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v.Add(field, "must_not_be_negative")
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v.Add(field, "out_of_range")
	}
}

// OneOf flags value when it is not one of allowed.
func OneOf[T comparable](field string, value T, allowed []T, v Violations) {
	if !slices.Contains(allowed, value) {
		v.Add(field, "invalid_choice")
	}
}
