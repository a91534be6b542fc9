package tag

import (
	"errors"
	"fmt"
)

// Error is the typed failure returned by every mutating operation.
//
// Every failure carries a stable Code so callers can branch without string
// matching, plus a human-readable message and, where known, the tag id.
// Operations evaluate preconditions in a fixed order and return the first
// failure; no operation partially applies its effects.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is a human-readable description.
	Message string

	// TagID identifies the affected tag, when one is known.
	TagID uint64
}

// Code categorizes ledger failures.
type Code string

const (
	// CodeAlreadyExists indicates an id collision in the store.
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// CodeNotPending indicates a transition was attempted on a terminal tag.
	CodeNotPending Code = "NOT_PENDING"

	// CodeTransferFailed indicates the settlement provider rejected the
	// transfer. The tag stays PENDING and fulfill may be retried until expiry.
	CodeTransferFailed Code = "TRANSFER_FAILED"

	// CodeNotFound indicates the tag id was never issued.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthorized indicates the caller may not perform the operation,
	// or the ledger is paused.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeExpired indicates an expiry-boundary violation: fulfilling at or
	// past the expiry height, or expiring before it.
	CodeExpired Code = "EXPIRED"

	// CodeInvalidAmount indicates the amount is below the minimum or the
	// duration is zero.
	CodeInvalidAmount Code = "INVALID_AMOUNT"

	// CodeEmptyMemo indicates a memo was supplied but is empty or over the
	// byte bound.
	CodeEmptyMemo Code = "EMPTY_MEMO"

	// CodeDurationExceeded indicates the duration is over the maximum window.
	CodeDurationExceeded Code = "DURATION_EXCEEDED"

	// CodeInvalidRecipient indicates the recipient identity is empty.
	CodeInvalidRecipient Code = "INVALID_RECIPIENT"

	// CodeSelfPayment indicates creator and recipient are the same identity.
	CodeSelfPayment Code = "SELF_PAYMENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.TagID != 0 {
		return fmt.Sprintf("%s: %s (tag=%d)", e.Code, e.Message, e.TagID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the ledger error code from err.
// Returns the empty code if err is not a ledger Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND ledger error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsNotPending reports whether err is a NOT_PENDING ledger error.
func IsNotPending(err error) bool { return CodeOf(err) == CodeNotPending }

// IsUnauthorized reports whether err is an UNAUTHORIZED ledger error.
func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }

// IsTransferFailed reports whether err is a TRANSFER_FAILED ledger error.
// Transfer failures are the one retryable failure: the tag remains PENDING.
func IsTransferFailed(err error) bool { return CodeOf(err) == CodeTransferFailed }

// IsExpired reports whether err is an EXPIRED ledger error.
func IsExpired(err error) bool { return CodeOf(err) == CodeExpired }

// Errorf constructs a ledger Error with a formatted message.
func Errorf(code Code, tagID uint64, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), TagID: tagID}
}
