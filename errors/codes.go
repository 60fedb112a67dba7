package errors

// ErrorCategory classifies errors by their retry semantics.
type ErrorCategory string

const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates corrupted data or a violated invariant.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Store call timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Store unreachable or closed

	// Permanent errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Row does not exist
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"  // Malformed request field
	ErrCodeInvalidRule   ErrorCode = "INVALID_RULE"   // Recurrence fields do not form a valid rule
	ErrCodeNotDue        ErrorCode = "NOT_DUE"        // Completion recorded for a day the task is not due
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Row already exists
	ErrCodeCanceled      ErrorCode = "CANCELED"       // Caller canceled the request

	// Internal errors
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Unexpected internal error
	ErrCodeCorruption ErrorCode = "CORRUPTION" // Stored row could not be decoded
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeUnavailable:
		return CategoryTransient
	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeInvalidRule, ErrCodeNotDue,
		ErrCodeAlreadyExists, ErrCodeCanceled:
		return CategoryPermanent
	default:
		return CategoryInternal
	}
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:       "operation timed out",
	ErrCodeUnavailable:   "store unavailable",
	ErrCodeNotFound:      "not found",
	ErrCodeInvalidInput:  "invalid input",
	ErrCodeInvalidRule:   "invalid recurrence rule",
	ErrCodeNotDue:        "task is not due on that day",
	ErrCodeAlreadyExists: "already exists",
	ErrCodeCanceled:      "operation canceled",
	ErrCodeInternal:      "internal error",
	ErrCodeCorruption:    "stored data is corrupted",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
