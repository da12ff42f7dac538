/*
errors.go - Centralized error types for the allocation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Expected-empty outcomes (no stock, ban already listed, account not
  found) are sentinels matched with errors.Is - they are informational
  results, not alarms. Infrastructure failures carry the single
  ErrStoreUnavailable kind from the ledger contract.

ERROR CATEGORIES:
  1. Guard outcomes    - busy, cooling down
  2. Allocation outcomes - no stock, not found
  3. Infrastructure    - store unavailable, delivery failed
  4. Input errors      - unknown category, bad action ref, auth codes

USAGE:
  if errors.Is(err, pool.ErrNoStock) {
      // expected: inform the user, nothing to log loudly
  }

SEE ALSO:
  - repository.go, coordinator.go: Produce these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package pool

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStoreUnavailable is returned when the ledger cannot be read or
	// written. Recoverable: callers surface it as a retryable failure.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrNoStock is returned when no row satisfies the selectability
	// invariant. This is a common, expected outcome.
	ErrNoStock = errors.New("no account available")

	// ErrAccountNotFound is returned when an identifier matches no row
	// in any category table.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBusy is returned when the requester already has an allocation
	// request in flight.
	ErrBusy = errors.New("request already in progress")

	// ErrCoolingDown is returned when the requester's cooldown window has
	// not elapsed yet.
	ErrCoolingDown = errors.New("cooling down")

	// ErrDeliveryFailed is returned when the notification sink could not
	// reach the requester. The claimed account stays claimed.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrUnknownCategory is returned for category names outside the enum.
	// Rejected before touching the store.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrBadActionRef is returned for malformed follow-up action tokens.
	ErrBadActionRef = errors.New("malformed action ref")

	// ErrRowOutOfRange is returned by raw row inspection for rows past
	// the end of the table.
	ErrRowOutOfRange = errors.New("row out of range")

	// Auth code outcomes.
	ErrCodeInvalid = errors.New("auth code not valid")
	ErrCodeUsed    = errors.New("auth code already used")
	ErrCodeExpired = errors.New("auth code expired")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CooldownError tells the requester how long to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooling down: wait %.1fs", e.Remaining.Seconds())
}

func (e *CooldownError) Unwrap() error { return ErrCoolingDown }

// NoStockError names the category (and filter, if any) that ran dry.
// For pack allocation it names the first category that failed.
type NoStockError struct {
	Category Category
	Filter   string
}

func (e *NoStockError) Error() string {
	if e.Filter != "" {
		return fmt.Sprintf("no %s account available matching filter %q", e.Category, e.Filter)
	}
	return fmt.Sprintf("no %s account available", e.Category)
}

func (e *NoStockError) Unwrap() error { return ErrNoStock }

// DeliveryError wraps a sink failure with the requester it affected.
type DeliveryError struct {
	User string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.User, e.Err)
}

func (e *DeliveryError) Unwrap() error { return ErrDeliveryFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUserFacing returns true for outcomes shown to the requester as
// informational messages rather than logged as failures.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrNoStock) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrBusy) ||
		errors.Is(err, ErrCoolingDown) ||
		errors.Is(err, ErrCodeInvalid) ||
		errors.Is(err, ErrCodeUsed) ||
		errors.Is(err, ErrCodeExpired)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrDeliveryFailed)
}

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrRowOutOfRange)
}
