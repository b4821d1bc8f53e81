package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDebit    Kind = "DEBIT"
	KindCredit   Kind = "CREDIT"
	KindTransfer Kind = "TRANSFER"
	KindReversal Kind = "REVERSAL"
)

type Method string

const (
	MethodNEFT   Method = "NEFT"
	MethodRTGS   Method = "RTGS"
	MethodIMPS   Method = "IMPS"
	MethodOnline Method = "ONLINE"
	MethodSystem Method = "SYSTEM"
)

// ParseTransferMethod accepts only the interbank methods a customer transfer may use.
func ParseTransferMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodNEFT, MethodRTGS, MethodIMPS:
		return Method(s), true
	}
	return "", false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusReversed  Status = "REVERSED"
)

// ProcessedBySystem marks rows written by the engine itself.
const ProcessedBySystem = "SYSTEM"

// allowedTransitions lists the status moves MarkStatus may make. COMPLETED to
// REVERSED is deliberately absent; only the reversal path performs it.
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransition reports whether MarkStatus may move a row from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transaction is one journal row.
type Transaction struct {
	ID             string          `json:"id"`
	RefNo          string          `json:"ref_no"`
	FromAccount    string          `json:"from_account,omitempty"`
	ToAccount      string          `json:"to_account,omitempty"`
	Kind           Kind            `json:"kind"`
	Method         Method          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Status         Status          `json:"status"`
	OccurredAt     time.Time       `json:"occurred_at"`
	ValueDate      time.Time       `json:"value_date"`
	Description    string          `json:"description,omitempty"`
	Remarks        string          `json:"remarks,omitempty"`
	ProcessedBy    string          `json:"processed_by,omitempty"`
}

// EffectOn is the signed amount this row moves on the given account.
func (t *Transaction) EffectOn(number string) decimal.Decimal {
	switch t.Kind {
	case KindDebit:
		if t.FromAccount == number {
			return t.Amount.Neg()
		}
	case KindCredit:
		if t.ToAccount == number {
			return t.Amount
		}
	case KindTransfer, KindReversal:
		effect := decimal.Zero
		if t.FromAccount == number {
			effect = effect.Sub(t.Amount)
		}
		if t.ToAccount == number {
			effect = effect.Add(t.Amount)
		}
		return effect
	}
	return decimal.Zero
}

// Landed reports whether the row's effect is reflected in account balances.
// REVERSED rows still count; their REVERSAL row carries the offset.
func (t *Transaction) Landed() bool {
	return t.Status == StatusCompleted || t.Status == StatusReversed
}

func (t *Transaction) validate() error {
	if t.FromAccount == "" && t.ToAccount == "" {
		return fmt.Errorf("%w: transaction %s has neither from nor to account", ErrInvalidTransaction, t.ID)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction %s amount must be positive", ErrInvalidTransaction, t.ID)
	}
	if t.ID == "" || t.RefNo == "" {
		return fmt.Errorf("%w: id and reference number are required", ErrInvalidTransaction)
	}
	return nil
}

// AggregateMode selects which rows count as outgoing for limit enforcement.
type AggregateMode string

const (
	// AggregateDebitSide counts only rows where the account is the debit side
	// (kind DEBIT or TRANSFER).
	AggregateDebitSide AggregateMode = "debit-side"
	// AggregateParity also counts any row carrying an interbank method, which
	// includes the counterparty CREDIT row of a transfer.
	AggregateParity AggregateMode = "parity"
)

func ParseAggregateMode(s string) (AggregateMode, error) {
	switch AggregateMode(s) {
	case "", AggregateDebitSide:
		return AggregateDebitSide, nil
	case AggregateParity:
		return AggregateParity, nil
	}
	return "", fmt.Errorf("invalid aggregate mode %q", s)
}

// Journal is the append-only transaction log.
type Journal interface {
	// Append writes rows that share one reference number. A reference number
	// used by any earlier Append is rejected with ErrDuplicateReference.
	Append(ctx context.Context, rows ...*Transaction) error
	FindByID(ctx context.Context, id string) (*Transaction, error)
	FindByRef(ctx context.Context, refNo string) ([]*Transaction, error)
	// ByAccount returns rows touching the account, newest first. limit <= 0 means all.
	ByAccount(ctx context.Context, number string, limit int) ([]*Transaction, error)
	// ByDateRange covers [from, to). An empty account matches every row.
	ByDateRange(ctx context.Context, number string, from, to time.Time) ([]*Transaction, error)
	ByStatus(ctx context.Context, status Status) ([]*Transaction, error)
	// ByAmountRange is inclusive on both ends. A zero max is unbounded.
	ByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*Transaction, error)
	SumOutgoing(ctx context.Context, number string, from, to time.Time, mode AggregateMode) (decimal.Decimal, error)
	MarkStatus(ctx context.Context, id string, status Status) error
	// MarkReversed flips every COMPLETED row of the reference group to REVERSED.
	MarkReversed(ctx context.Context, refNo string) error
	Annotate(ctx context.Context, id, remarks string) error
}
