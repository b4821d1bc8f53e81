package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const accountColumns = `number, owner_id, account_type, balance_minor, active, opened_at, last_mutation_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	var (
		acct         Account
		balanceMinor int64
		lastMutation sql.NullTime
	)
	if err := row.Scan(&acct.Number, &acct.OwnerID, &acct.Type, &balanceMinor, &acct.Active, &acct.OpenedAt, &lastMutation); err != nil {
		return nil, err
	}
	acct.Balance = fromMinor(balanceMinor)
	acct.OpenedAt = acct.OpenedAt.UTC()
	if lastMutation.Valid {
		t := lastMutation.Time.UTC()
		acct.LastMutationAt = &t
	}
	return &acct, nil
}

// Create inserts a new account. A taken number fails with ErrDuplicateAccount.
func (s *SQLStore) Create(ctx context.Context, acct *Account) error {
	if err := checkScale(acct.Balance); err != nil {
		return err
	}
	if acct.OpenedAt.IsZero() {
		acct.OpenedAt = s.now()
	}
	_, err := s.exec(ctx, `
		INSERT INTO accounts (number, owner_id, account_type, balance_minor, active, opened_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		acct.Number, acct.OwnerID, string(acct.Type), toMinor(acct.Balance), acct.Active, acct.OpenedAt.UTC())
	if err != nil {
		if s.isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, acct.Number)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, number string) (*Account, error) {
	acct, err := scanAccount(s.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = ?`, number))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("account %s: %w", number, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", number, err)
	}
	return acct, nil
}

func (s *SQLStore) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	var minor int64
	err := s.queryRow(ctx, `SELECT balance_minor FROM accounts WHERE number = ?`, number).Scan(&minor)
	if err != nil {
		if isNoRows(err) {
			return decimal.Zero, fmt.Errorf("account %s: %w", number, ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("failed to get balance for %s: %w", number, err)
	}
	return fromMinor(minor), nil
}

// Credit adds amount to an active account and returns the new balance.
func (s *SQLStore) Credit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkPositive(amount); err != nil {
		return decimal.Zero, err
	}
	amt := toMinor(amount)
	var minor int64
	err := s.queryRow(ctx, `
		UPDATE accounts SET balance_minor = balance_minor + ?, last_mutation_at = ?
		WHERE number = ? AND active = ? AND balance_minor <= ?
		RETURNING balance_minor`,
		amt, s.now(), number, true, math.MaxInt64-amt).Scan(&minor)
	if err != nil {
		if isNoRows(err) {
			if rerr := s.mutationRejected(ctx, number); rerr != nil {
				return decimal.Zero, rerr
			}
			return decimal.Zero, fmt.Errorf("%w: crediting %s would overflow the balance of %s", ErrInvalidAmount, amount.String(), number)
		}
		return decimal.Zero, fmt.Errorf("failed to credit %s: %w", number, err)
	}
	return fromMinor(minor), nil
}

// Debit subtracts amount in a single conditional statement: the row only
// changes when the account is active and stays at or above its floor.
func (s *SQLStore) Debit(ctx context.Context, number string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkPositive(amount); err != nil {
		return decimal.Zero, err
	}
	acct, err := s.Get(ctx, number)
	if err != nil {
		return decimal.Zero, err
	}

	var minor int64
	amt := toMinor(amount)
	err = s.queryRow(ctx, `
		UPDATE accounts SET balance_minor = balance_minor - ?, last_mutation_at = ?
		WHERE number = ? AND active = ? AND balance_minor - ? >= ?
		RETURNING balance_minor`,
		amt, s.now(), number, true, amt, toMinor(acct.Type.MinimumBalance())).Scan(&minor)
	if err != nil {
		if isNoRows(err) {
			if rerr := s.mutationRejected(ctx, number); rerr != nil {
				return decimal.Zero, rerr
			}
			return decimal.Zero, fmt.Errorf("debit %s of %s: %w", number, amount.StringFixed(2), ErrInsufficientFunds)
		}
		return decimal.Zero, fmt.Errorf("failed to debit %s: %w", number, err)
	}
	return fromMinor(minor), nil
}

// mutationRejected explains why a conditional update matched no row. It
// returns nil when the account exists and is active.
func (s *SQLStore) mutationRejected(ctx context.Context, number string) error {
	acct, err := s.Get(ctx, number)
	if err != nil {
		return err
	}
	if !acct.Active {
		return fmt.Errorf("account %s: %w", number, ErrInactive)
	}
	return nil
}

func (s *SQLStore) SetActive(ctx context.Context, number string, active bool) error {
	res, err := s.exec(ctx, `UPDATE accounts SET active = ? WHERE number = ?`, active, number)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", number, err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", number, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ByOwner(ctx context.Context, ownerID string) ([]*Account, error) {
	rows, err := s.query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY opened_at, number`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

// Numbers lists every account number, active or not.
func (s *SQLStore) Numbers(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, `SELECT number FROM accounts ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account numbers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan account number: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// TotalBalance sums balances across every active account.
func (s *SQLStore) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var minor int64
	err := s.queryRow(ctx, `SELECT CAST(COALESCE(SUM(balance_minor), 0) AS BIGINT) FROM accounts WHERE active = ?`, true).Scan(&minor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return fromMinor(minor), nil
}

// BelongsTo reports false for unknown accounts rather than failing.
func (s *SQLStore) BelongsTo(ctx context.Context, number, customerID string) (bool, error) {
	var owner string
	err := s.queryRow(ctx, `SELECT owner_id FROM accounts WHERE number = ?`, number).Scan(&owner)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up owner of %s: %w", number, err)
	}
	return owner == customerID, nil
}
