package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const maxOpenAttempts = 5

type OpenAccountRequest struct {
	OwnerID        string          `json:"owner_id"`
	Type           string          `json:"type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// OpenAccount provisions an account together with its opening-deposit CREDIT
// row. The deposit must cover the type's minimum balance.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (*Account, *Transaction, error) {
	if req.OwnerID == "" {
		return nil, nil, invalid(nil, "owner id is required")
	}
	typ, err := ParseAccountType(req.Type)
	if err != nil {
		return nil, nil, invalid(err, "account type must be SAVINGS or CURRENT")
	}
	if err := checkScale(req.InitialDeposit); err != nil {
		return nil, nil, invalid(err, "initial deposit has more than two decimal places")
	}
	if req.InitialDeposit.LessThan(typ.MinimumBalance()) {
		return nil, nil, invalid(ErrInvalidAmount, "minimum initial deposit for %s is %s", typ, typ.MinimumBalance().StringFixed(2))
	}

	for attempt := 0; attempt < maxOpenAttempts; attempt++ {
		acct, opening, err := s.openAccount(ctx, req.OwnerID, typ, req.InitialDeposit)
		if err == nil {
			s.logger.Info("account_opened", "number", acct.Number, "owner_id", acct.OwnerID, "type", acct.Type,
				"deposit", req.InitialDeposit.StringFixed(2))
			s.publish("account.opened", opening)
			return acct, opening, nil
		}
		if !errors.Is(err, ErrDuplicateAccount) && !errors.Is(err, ErrDuplicateReference) && !IsRetryable(err) {
			return nil, nil, err
		}
		s.logger.Warn("account_open_retry", "attempt", attempt+1, "error", err)
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return nil, nil, fmt.Errorf("failed to allocate an account number after %d attempts", maxOpenAttempts)
}

func (s *Service) openAccount(ctx context.Context, owner string, typ AccountType, deposit decimal.Decimal) (*Account, *Transaction, error) {
	number, err := s.ids.AccountNumber()
	if err != nil {
		return nil, nil, err
	}
	now := s.now().UTC()
	acct := &Account{
		Number:   number,
		OwnerID:  owner,
		Type:     typ,
		Balance:  deposit,
		Active:   true,
		OpenedAt: now,
	}
	opening := &Transaction{
		ID:             s.ids.TransactionID(),
		RefNo:          s.ids.RefNo(),
		ToAccount:      number,
		Kind:           KindCredit,
		Method:         MethodSystem,
		Amount:         deposit,
		OpeningBalance: decimal.Zero,
		ClosingBalance: deposit,
		Status:         StatusCompleted,
		OccurredAt:     now,
		ValueDate:      dateOf(now),
		Description:    "Initial Deposit",
		Remarks:        "Account Opening Deposit",
		ProcessedBy:    ProcessedBySystem,
	}

	err = s.units.Atomically(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, acct); err != nil {
			return err
		}
		return s.journal.Append(ctx, opening)
	})
	if err != nil {
		return nil, nil, err
	}
	return acct, opening, nil
}

// Deposit credits an account and journals a single CREDIT row.
func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal, remarks string) (*Transaction, error) {
	return s.singleSided(ctx, KindCredit, number, amount, remarks)
}

// Withdraw debits an account down to, but not below, its floor.
func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal, remarks string) (*Transaction, error) {
	return s.singleSided(ctx, KindDebit, number, amount, remarks)
}

func (s *Service) singleSided(ctx context.Context, kind Kind, number string, amount decimal.Decimal, remarks string) (*Transaction, error) {
	if err := checkPositive(amount); err != nil {
		return nil, invalid(err, "amount must be positive with at most two decimal places")
	}

	release, err := s.locker.Acquire(ctx, accountLockKey(number))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", number, err)
	}
	defer release()

	now := s.now().UTC()
	row := &Transaction{
		ID:          s.ids.TransactionID(),
		RefNo:       s.ids.RefNo(),
		Kind:        kind,
		Method:      MethodOnline,
		Amount:      amount,
		Status:      StatusCompleted,
		OccurredAt:  now,
		ValueDate:   dateOf(now),
		Remarks:     remarks,
		ProcessedBy: ProcessedBySystem,
	}

	err = s.units.Atomically(ctx, func(ctx context.Context) error {
		var (
			closing decimal.Decimal
			err     error
		)
		if kind == KindCredit {
			row.ToAccount = number
			row.Description = "Deposit"
			closing, err = s.accounts.Credit(ctx, number, amount)
			row.OpeningBalance = closing.Sub(amount)
		} else {
			row.FromAccount = number
			row.Description = "Withdrawal"
			closing, err = s.accounts.Debit(ctx, number, amount)
			row.OpeningBalance = closing.Add(amount)
		}
		if err != nil {
			return err
		}
		row.ClosingBalance = closing
		return s.journal.Append(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account_"+string(kind), "number", number, "amount", amount.StringFixed(2), "transaction_id", row.ID)
	s.publish("transaction.completed", row)
	return row, nil
}

// SetActive toggles whether an account accepts credits and debits.
func (s *Service) SetActive(ctx context.Context, number string, active bool) error {
	release, err := s.locker.Acquire(ctx, accountLockKey(number))
	if err != nil {
		return fmt.Errorf("failed to lock account %s: %w", number, err)
	}
	defer release()

	if err := s.accounts.SetActive(ctx, number, active); err != nil {
		return err
	}
	s.logger.Info("account_status_changed", "number", number, "active", active)
	if s.audit != nil {
		if _, err := s.audit.AppendEvent("account.status", map[string]any{"number": number, "active": active}); err != nil {
			s.logger.Error("audit_append_failed", "number", number, "error", err)
		}
	}
	return nil
}

func (s *Service) Account(ctx context.Context, number string) (*Account, error) {
	return s.accounts.Get(ctx, number)
}

func (s *Service) Balance(ctx context.Context, number string) (decimal.Decimal, error) {
	return s.accounts.GetBalance(ctx, number)
}

func (s *Service) AccountsOf(ctx context.Context, ownerID string) ([]*Account, error) {
	return s.accounts.ByOwner(ctx, ownerID)
}

func (s *Service) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.accounts.TotalBalance(ctx)
}

// AccountBelongsTo answers the registry question for the request layer.
func (s *Service) AccountBelongsTo(ctx context.Context, number, customerID string) (bool, error) {
	if s.registry == nil {
		return false, errors.New("ledger: no ownership registry configured")
	}
	return s.registry.BelongsTo(ctx, number, customerID)
}
