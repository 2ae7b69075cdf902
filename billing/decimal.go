/*
decimal.go - Fixed-point serialization between the store and the domain

PURPOSE:
  The store keeps every hour and money value as a fixed-point string
  (decimal.Decimal.String()), never as a float. These helpers are the
  single conversion point in both directions, so rounding behavior and
  null handling stay uniform across the report, validator, and guard
  paths. The string form never crosses the API boundary.

SEE ALSO:
  - store/sqlite: the only caller of the Stored* functions
  - api/dto.go: converts decimals to plain JSON numbers at the boundary
*/
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseStoredDecimal converts a store-level fixed-point string to a
// decimal. An empty string is rejected; columns that allow null use
// ParseStoredDecimalPtr.
func ParseStoredDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed stored decimal %q: %w", s, err)
	}
	return d, nil
}

// ParseStoredDecimalPtr converts a nullable fixed-point column.
// nil in, nil out.
func ParseStoredDecimalPtr(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := ParseStoredDecimal(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatStoredDecimal renders a decimal in the store's fixed-point form.
func FormatStoredDecimal(d decimal.Decimal) string {
	return d.String()
}

// FormatStoredDecimalPtr renders a nullable decimal. nil in, nil out.
func FormatStoredDecimalPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// DecimalPtr is a convenience for building nullable decimals in tests
// and seed data.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
