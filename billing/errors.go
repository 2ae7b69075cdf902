/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Handlers translate these into HTTP status codes without inspecting
  message text.

ERROR CATEGORIES:
  1. Not-found errors    - referenced entity absent (404)
  2. Authorization errors - caller owns a different resource (403)
  3. Validation errors   - malformed or out-of-range input (400)
  4. Business-rule conflicts - mutating finalized billing state (400)

USAGE:
  if billing.IsNotFound(err) { ... 404 ... }
  var verr *billing.ValidationError
  if errors.As(err, &verr) { ... 400 with verr.Message ... }

SEE ALSO:
  - api/handlers.go: status-code mapping
  - discount.go: produces ValidationError
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a caller identity or referenced
	// user does not resolve to a known user.
	ErrUserNotFound = errors.New("user not found")

	// ErrEntryNotFound is returned when a time entry doesn't exist.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrTopicNotFound is returned when a referenced catalog topic doesn't exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrSubtopicNotFound is returned when a referenced subtopic doesn't exist.
	ErrSubtopicNotFound = errors.New("subtopic not found")

	// ErrServiceDescriptionNotFound is returned when a billing document doesn't exist.
	ErrServiceDescriptionNotFound = errors.New("service description not found")

	// ErrBillingTopicNotFound is returned when a service description topic
	// doesn't exist or belongs to a different service description.
	ErrBillingTopicNotFound = errors.New("billing topic not found")

	// ErrNotOwner is returned when a caller mutates an entry they did not author.
	ErrNotOwner = errors.New("entry belongs to a different user")

	// ErrEntryBilled is returned when an entry is referenced by a
	// FINALIZED service description and can no longer be mutated.
	ErrEntryBilled = errors.New("entry is billed under a finalized service description")

	// ErrServiceDescriptionFinalized is returned when a mutation targets
	// a FINALIZED service description.
	ErrServiceDescriptionFinalized = errors.New("service description is finalized")

	// ErrInvalidDateRange is returned when a report range is malformed
	// (unparsable dates, or start after end).
	ErrInvalidDateRange = errors.New("invalid date range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a rejected input field with a single-sentence,
// non-leaking message suitable for the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrTopicNotFound) ||
		errors.Is(err, ErrSubtopicNotFound) ||
		errors.Is(err, ErrServiceDescriptionNotFound) ||
		errors.Is(err, ErrBillingTopicNotFound)
}

// IsForbidden returns true if the error is an ownership/immutability
// violation by an otherwise authenticated caller.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotOwner) || errors.Is(err, ErrEntryBilled)
}

// IsClientError returns true if the error is due to invalid client input
// or a business-rule conflict, as opposed to an internal failure.
func IsClientError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrServiceDescriptionFinalized) ||
		errors.Is(err, ErrInvalidDateRange)
}
