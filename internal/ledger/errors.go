package ledger

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every error returned by this package wraps exactly one.
var (
	// ErrValidation: the request is malformed or breaks a business rule.
	// Caller-fixable; never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound: a referenced group, expense or split does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the caller lacks the required relationship to the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrTransactionAborted: the store failed or the transaction was
	// cancelled. Nothing was persisted; the caller may retry.
	ErrTransactionAborted = errors.New("transaction aborted")
)

// Specific errors, each tagged with its kind.
var (
	ErrMissingField         = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrNegativeSplit        = fmt.Errorf("%w: split amount cannot be negative", ErrValidation)
	ErrDuplicateSplitMember = fmt.Errorf("%w: duplicate split member", ErrValidation)
	ErrSplitMismatch        = fmt.Errorf("%w: splits do not add up to the amount", ErrValidation)
	ErrAmountTooLarge       = fmt.Errorf("%w: amount exceeds the maximum", ErrValidation)
	ErrNotAGroupMember      = fmt.Errorf("%w: user is not a member of the group", ErrValidation)

	ErrCallerNotMember = fmt.Errorf("%w: caller is not a member of the group", ErrForbidden)
	ErrNotPayer        = fmt.Errorf("%w: only the payer can clear a split", ErrForbidden)
	ErrNotPayerOrOwner = fmt.Errorf("%w: only the payer or creator can delete an expense", ErrForbidden)

	ErrGroupNotFound   = fmt.Errorf("%w: group", ErrNotFound)
	ErrExpenseNotFound = fmt.Errorf("%w: expense", ErrNotFound)
	ErrSplitNotFound   = fmt.Errorf("%w: split", ErrNotFound)

	ErrCreateFailed = fmt.Errorf("%w: create failed", ErrTransactionAborted)
)

// Kind classifies an error for callers that map it to a transport status.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindTransactionAborted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindTransactionAborted:
		return "transaction_aborted"
	default:
		return "unknown"
	}
}

// KindOf returns the kind err is tagged with.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrTransactionAborted):
		return KindTransactionAborted
	default:
		return KindUnknown
	}
}

// detail attaches request-specific context to a sentinel.
func detail(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// aborted tags a store failure. The cause is kept in the chain for logging.
func aborted(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransactionAborted, op, cause)
}
