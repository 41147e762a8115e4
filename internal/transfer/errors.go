package transfer

import "errors"

var (
	// ErrInvalidAmount occurs when the requested amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAccountNotFound occurs when either party of the transfer does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountNotApproved occurs when the paying account is pending or blocked.
	ErrAccountNotApproved = errors.New("account not approved")

	// ErrRoleNotPermitted occurs when the role matrix forbids the combination
	// of payer role, payee role and transfer kind.
	ErrRoleNotPermitted = errors.New("role combination not permitted")

	// ErrInsufficientFunds occurs when the payer cannot cover amount plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateRequest indicates an idempotent replay. It is returned
	// together with the original record and is not a true failure.
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrConcurrencyConflict is surfaced only after bounded retries, including
	// a serialized attempt under the account-pair lock, keep losing the race.
	ErrConcurrencyConflict = errors.New("concurrent balance conflict")

	// ErrStoreUnavailable wraps transient storage failures. The transfer is
	// fully rolled back before it is returned, so callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
