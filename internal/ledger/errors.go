package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInactive           = errors.New("account is inactive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDuplicateReference = errors.New("duplicate reference number")
	ErrDuplicateAccount   = errors.New("duplicate account number")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrRollbackFailed     = errors.New("rollback failed")
)

// ValidationError is a business-rule rejection with a caller-facing reason.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s for transaction %s", e.From, e.To, e.ID)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ManualReviewError means a debit landed, the credit failed and the
// compensating credit failed too. Balances may have drifted.
type ManualReviewError struct {
	RefNo           string
	Account         string
	Amount          decimal.Decimal
	CreditErr       error
	CompensationErr error
}

func (e *ManualReviewError) Error() string {
	return fmt.Sprintf("manual review required: ref %s: compensating credit of %s to %s failed: %v (credit error: %v)",
		e.RefNo, e.Amount.StringFixed(2), e.Account, e.CompensationErr, e.CreditErr)
}

func (e *ManualReviewError) Unwrap() []error { return []error{e.CreditErr, e.CompensationErr} }

// IsBusiness reports whether err is an expected ledger rejection rather than
// an infrastructure failure.
func IsBusiness(err error) bool {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInactive),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidAmount):
		return true
	}
	return false
}
