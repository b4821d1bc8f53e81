package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPendingExpiry is how long a PENDING row may wait before the sweep
// fails it.
const DefaultPendingExpiry = 24 * time.Hour

// ReverseTransaction inverts a COMPLETED transaction. Every row of its
// reference group becomes REVERSED and a new REVERSAL row moves the same amount
// back with the accounts swapped.
func (s *Service) ReverseTransaction(ctx context.Context, id, reason string) (*Transaction, error) {
	rev, err := s.reverse(ctx, id, reason)
	s.metrics.Reversal(err == nil)
	if err != nil {
		s.logger.Warn("reversal_rejected", "transaction_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("transaction_reversed", "transaction_id", id, "reversal_id", rev.ID, "amount", rev.Amount.StringFixed(2))
	s.publish("transaction.reversed", rev)
	return rev, nil
}

func (s *Service) reverse(ctx context.Context, id, reason string) (*Transaction, error) {
	orig, err := s.journal.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if orig.Status != StatusCompleted {
		return nil, &TransitionError{ID: id, From: orig.Status, To: StatusReversed}
	}

	release, err := s.locker.Acquire(ctx, accountLockKey(orig.FromAccount), accountLockKey(orig.ToAccount))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for reversal: %w", err)
	}
	defer release()

	var rev *Transaction
	err = s.units.Atomically(ctx, func(ctx context.Context) error {
		cur, err := s.journal.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != StatusCompleted {
			return &TransitionError{ID: id, From: cur.Status, To: StatusReversed}
		}
		if err := s.journal.MarkReversed(ctx, cur.RefNo); err != nil {
			return err
		}

		now := s.now().UTC()
		rev = &Transaction{
			ID:          s.ids.TransactionID(),
			RefNo:       s.ids.RefNo(),
			FromAccount: cur.ToAccount,
			ToAccount:   cur.FromAccount,
			Kind:        KindReversal,
			Method:      cur.Method,
			Amount:      cur.Amount,
			Status:      StatusCompleted,
			OccurredAt:  now,
			ValueDate:   dateOf(now),
			Description: "Reversal of " + cur.RefNo,
			Remarks:     fmt.Sprintf("Reversal of %s - %s", cur.ID, reason),
			ProcessedBy: ProcessedBySystem,
		}

		// The row narrates the account money leaves, or the receiving one
		// when the original had no source.
		if rev.FromAccount != "" {
			closing, err := s.accounts.Debit(ctx, rev.FromAccount, rev.Amount)
			if err != nil {
				return fmt.Errorf("reversal debit of %s: %w", rev.FromAccount, err)
			}
			rev.OpeningBalance, rev.ClosingBalance = closing.Add(rev.Amount), closing
		}
		if rev.ToAccount != "" {
			closing, err := s.accounts.Credit(ctx, rev.ToAccount, rev.Amount)
			if err != nil {
				return fmt.Errorf("reversal credit of %s: %w", rev.ToAccount, err)
			}
			if rev.FromAccount == "" {
				rev.OpeningBalance, rev.ClosingBalance = closing.Sub(rev.Amount), closing
			}
		}
		return s.journal.Append(ctx, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// CancelTransaction cancels a PENDING transaction. Nothing was mutated for it,
// so there is no balance effect.
func (s *Service) CancelTransaction(ctx context.Context, id string) error {
	if err := s.journal.MarkStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}
	s.logger.Info("transaction_cancelled", "transaction_id", id)
	return nil
}

// SubmitPending records a transfer intent as a PENDING TRANSFER row after the
// same checks a transfer runs. Balances are untouched.
func (s *Service) SubmitPending(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	now := s.now().UTC()
	adm, res, err := s.admit(ctx, req, now)
	if res != nil {
		return res, err
	}

	row := &Transaction{
		ID:             s.ids.TransactionID(),
		RefNo:          s.ids.RefNo(),
		FromAccount:    req.From,
		ToAccount:      req.To,
		Kind:           KindTransfer,
		Method:         adm.method,
		Amount:         req.Amount,
		OpeningBalance: adm.src.Balance,
		ClosingBalance: adm.src.Balance,
		Status:         StatusPending,
		OccurredAt:     now,
		ValueDate:      dateOf(now),
		Description:    fmt.Sprintf("%s Transfer to %s", adm.method, req.To),
		Remarks:        req.Remarks,
		ProcessedBy:    ProcessedBySystem,
	}
	if err := s.journal.Append(ctx, row); err != nil {
		return &TransferResult{Code: CodeSystemError, Reason: "journal append failed"}, err
	}
	s.logger.Info("transfer_pending", "transaction_id", row.ID, "ref_no", row.RefNo, "from", req.From, "to", req.To)
	return &TransferResult{Code: CodeSuccess, RefNo: row.RefNo, TransactionIDs: []string{row.ID}, Limits: adm.limits}, nil
}

// ExpirePending fails PENDING rows older than maxAge and returns how many it
// changed. Rows cancelled concurrently are skipped.
func (s *Service) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultPendingExpiry
	}
	pending, err := s.journal.ByStatus(ctx, StatusPending)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-maxAge)
	expired := 0
	for _, t := range pending {
		if !t.OccurredAt.Before(cutoff) {
			continue
		}
		if err := s.journal.MarkStatus(ctx, t.ID, StatusFailed); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.metrics.Expired(expired)
		s.logger.Info("pending_expired", "count", expired, "cutoff", cutoff)
	}
	return expired, nil
}

func (s *Service) Transaction(ctx context.Context, id string) (*Transaction, error) {
	return s.journal.FindByID(ctx, id)
}

func (s *Service) TransactionsByRef(ctx context.Context, refNo string) ([]*Transaction, error) {
	return s.journal.FindByRef(ctx, refNo)
}

func (s *Service) AddRemarks(ctx context.Context, id, remarks string) error {
	return s.journal.Annotate(ctx, id, remarks)
}

// Recent returns the latest rows touching an account.
func (s *Service) Recent(ctx context.Context, number string, limit int) ([]*Transaction, error) {
	if _, err := s.accounts.Get(ctx, number); err != nil {
		return nil, err
	}
	return s.journal.ByAccount(ctx, number, limit)
}

// HighValue lists rows whose amount is at least threshold.
func (s *Service) HighValue(ctx context.Context, threshold decimal.Decimal) ([]*Transaction, error) {
	return s.journal.ByAmountRange(ctx, threshold, decimal.Zero)
}

// Statement lists an account's rows over [from, to) with totals of the
// movements that landed on its balance.
type Statement struct {
	Account      *Account        `json:"account"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Transactions []*Transaction  `json:"transactions"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
}

func (s *Service) Statement(ctx context.Context, number string, from, to time.Time) (*Statement, error) {
	if !to.After(from) {
		return nil, invalid(nil, "statement range end must be after its start")
	}
	acct, err := s.accounts.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	rows, err := s.journal.ByDateRange(ctx, number, from, to)
	if err != nil {
		return nil, err
	}

	st := &Statement{Account: acct, From: from, To: to, Transactions: rows, TotalCredits: decimal.Zero, TotalDebits: decimal.Zero}
	for _, t := range rows {
		if !t.Landed() {
			continue
		}
		if e := t.EffectOn(number); e.IsPositive() {
			st.TotalCredits = st.TotalCredits.Add(e)
		} else {
			st.TotalDebits = st.TotalDebits.Sub(e)
		}
	}
	return st, nil
}

// Limits reports the caps for an account on the given date.
func (s *Service) Limits(ctx context.Context, number string, date time.Time) (*LimitCheck, error) {
	if _, err := s.accounts.Get(ctx, number); err != nil {
		return nil, err
	}
	return s.policy.CheckLimits(ctx, number, decimal.Zero, date)
}
