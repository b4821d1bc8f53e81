package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType determines the minimum balance an account must keep.
type AccountType string

const (
	AccountSavings AccountType = "SAVINGS"
	AccountCurrent AccountType = "CURRENT"
)

var (
	savingsMinimum = decimal.NewFromInt(1000)
	currentMinimum = decimal.NewFromInt(5000)
)

// ParseAccountType accepts the upper-case type names only.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountSavings, AccountCurrent:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("invalid account type %q", s)
}

// MinimumBalance is the floor a debit may not cross.
func (t AccountType) MinimumBalance() decimal.Decimal {
	if t == AccountCurrent {
		return currentMinimum
	}
	return savingsMinimum
}

// Account is the balance-carrying record owned by the AccountStore.
type Account struct {
	Number         string          `json:"number"`
	OwnerID        string          `json:"owner_id"`
	Type           AccountType     `json:"type"`
	Balance        decimal.Decimal `json:"balance"`
	Active         bool            `json:"active"`
	OpenedAt       time.Time       `json:"opened_at"`
	LastMutationAt *time.Time      `json:"last_mutation_at,omitempty"`
}

// AvailableToDebit is how much can leave the account without crossing its floor.
func (a *Account) AvailableToDebit() decimal.Decimal {
	avail := a.Balance.Sub(a.Type.MinimumBalance())
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// AccountStore owns balances and account status. It never journals; every
// successful Credit or Debit is paired with a journal append by the caller.
// Credit and Debit return the balance after the mutation.
type AccountStore interface {
	Create(ctx context.Context, acct *Account) error
	Get(ctx context.Context, number string) (*Account, error)
	GetBalance(ctx context.Context, number string) (decimal.Decimal, error)
	Credit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error)
	SetActive(ctx context.Context, number string, active bool) error
	ByOwner(ctx context.Context, ownerID string) ([]*Account, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}

// OwnershipRegistry answers whether a customer owns an account.
type OwnershipRegistry interface {
	BelongsTo(ctx context.Context, number, customerID string) (bool, error)
}
