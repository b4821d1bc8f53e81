package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, ref_no, from_account, to_account, kind, method, amount_minor, opening_minor,
	closing_minor, status, occurred_at, value_date, description, remarks, processed_by`

func scanTransaction(row interface{ Scan(...any) error }) (*Transaction, error) {
	var (
		t                        Transaction
		from, to                 sql.NullString
		amount, opening, closing int64
	)
	err := row.Scan(&t.ID, &t.RefNo, &from, &to, &t.Kind, &t.Method, &amount, &opening,
		&closing, &t.Status, &t.OccurredAt, &t.ValueDate, &t.Description, &t.Remarks, &t.ProcessedBy)
	if err != nil {
		return nil, err
	}
	t.FromAccount = from.String
	t.ToAccount = to.String
	t.Amount = fromMinor(amount)
	t.OpeningBalance = fromMinor(opening)
	t.ClosingBalance = fromMinor(closing)
	t.OccurredAt = t.OccurredAt.UTC()
	t.ValueDate = t.ValueDate.UTC()
	return &t, nil
}

func (s *SQLStore) listTransactions(ctx context.Context, query string, args ...any) ([]*Transaction, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return out, nil
}

// Append claims the reference number, then inserts every row in the same
// unit of work.
func (s *SQLStore) Append(ctx context.Context, rows ...*Transaction) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: nothing to append", ErrInvalidTransaction)
	}
	refNo := rows[0].RefNo
	for _, t := range rows {
		if err := t.validate(); err != nil {
			return err
		}
		if err := checkScale(t.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
		}
		if t.RefNo != refNo {
			return fmt.Errorf("%w: rows appended together must share a reference number", ErrInvalidTransaction)
		}
	}

	return s.Atomically(ctx, func(ctx context.Context) error {
		now := s.now()
		if _, err := s.exec(ctx, `INSERT INTO transaction_refs (ref_no, created_at) VALUES (?, ?)`, refNo, now); err != nil {
			if s.isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateReference, refNo)
			}
			return fmt.Errorf("failed to reserve reference %s: %w", refNo, err)
		}

		for _, t := range rows {
			if t.OccurredAt.IsZero() {
				t.OccurredAt = now
			}
			if t.ValueDate.IsZero() {
				t.ValueDate = dateOf(t.OccurredAt)
			}
			_, err := s.exec(ctx, `
				INSERT INTO transactions (`+transactionColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.RefNo, nullString(t.FromAccount), nullString(t.ToAccount), string(t.Kind), string(t.Method),
				toMinor(t.Amount), toMinor(t.OpeningBalance), toMinor(t.ClosingBalance), string(t.Status),
				t.OccurredAt.UTC(), t.ValueDate.UTC(), t.Description, t.Remarks, t.ProcessedBy)
			if err != nil {
				if s.isUniqueViolation(err) {
					return fmt.Errorf("%w: transaction id %s already exists", ErrInvalidTransaction, t.ID)
				}
				return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*Transaction, error) {
	t, err := scanTransaction(s.queryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) FindByRef(ctx context.Context, refNo string) ([]*Transaction, error) {
	return s.listTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE ref_no = ? ORDER BY occurred_at, id`, refNo)
}

func (s *SQLStore) ByAccount(ctx context.Context, number string, limit int) ([]*Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE from_account = ? OR to_account = ?
		ORDER BY occurred_at DESC, id DESC`
	args := []any{number, number}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.listTransactions(ctx, q, args...)
}

func (s *SQLStore) ByDateRange(ctx context.Context, number string, from, to time.Time) ([]*Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE occurred_at >= ? AND occurred_at < ?`
	args := []any{from.UTC(), to.UTC()}
	if number != "" {
		q += ` AND (from_account = ? OR to_account = ?)`
		args = append(args, number, number)
	}
	q += ` ORDER BY occurred_at DESC, id DESC`
	return s.listTransactions(ctx, q, args...)
}

func (s *SQLStore) ByStatus(ctx context.Context, status Status) ([]*Transaction, error) {
	return s.listTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE status = ? ORDER BY occurred_at DESC, id DESC`, string(status))
}

func (s *SQLStore) ByAmountRange(ctx context.Context, min, max decimal.Decimal) ([]*Transaction, error) {
	for _, bound := range []decimal.Decimal{min, max} {
		if err := checkScale(bound); err != nil {
			return nil, err
		}
	}
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE amount_minor >= ?`
	args := []any{toMinor(min)}
	if !max.IsZero() {
		q += ` AND amount_minor <= ?`
		args = append(args, toMinor(max))
	}
	q += ` ORDER BY amount_minor DESC, occurred_at DESC`
	return s.listTransactions(ctx, q, args...)
}

// SumOutgoing totals completed outgoing rows for the account over [from, to).
func (s *SQLStore) SumOutgoing(ctx context.Context, number string, from, to time.Time, mode AggregateMode) (decimal.Decimal, error) {
	var b strings.Builder
	b.WriteString(`SELECT CAST(COALESCE(SUM(amount_minor), 0) AS BIGINT) FROM transactions
		WHERE from_account = ? AND status = ? AND occurred_at >= ? AND occurred_at < ?
		AND (kind IN (?, ?)`)
	args := []any{number, string(StatusCompleted), from.UTC(), to.UTC(), string(KindDebit), string(KindTransfer)}
	if mode == AggregateParity {
		b.WriteString(` OR method IN (?, ?, ?)`)
		args = append(args, string(MethodNEFT), string(MethodRTGS), string(MethodIMPS))
	}
	b.WriteString(`)`)

	var minor int64
	if err := s.queryRow(ctx, b.String(), args...).Scan(&minor); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outgoing for %s: %w", number, err)
	}
	return fromMinor(minor), nil
}

// MarkStatus moves a row along the allowed transitions. The update is
// conditional on the status that was read, so a concurrent change fails it.
func (s *SQLStore) MarkStatus(ctx context.Context, id string, status Status) error {
	cur, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(cur.Status, status) {
		return &TransitionError{ID: id, From: cur.Status, To: status}
	}
	res, err := s.exec(ctx, `UPDATE transactions SET status = ? WHERE id = ? AND status = ?`, string(status), id, string(cur.Status))
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	} else if n == 0 {
		return &TransitionError{ID: id, From: cur.Status, To: status}
	}
	return nil
}

func (s *SQLStore) MarkReversed(ctx context.Context, refNo string) error {
	res, err := s.exec(ctx, `UPDATE transactions SET status = ? WHERE ref_no = ? AND status = ?`,
		string(StatusReversed), refNo, string(StatusCompleted))
	if err != nil {
		return fmt.Errorf("failed to reverse %s: %w", refNo, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reverse %s: %w", refNo, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: reference %s has no completed rows", ErrInvalidTransition, refNo)
	}
	return nil
}

func (s *SQLStore) Annotate(ctx context.Context, id, remarks string) error {
	res, err := s.exec(ctx, `UPDATE transactions SET remarks = ? WHERE id = ?`, remarks, id)
	if err != nil {
		return fmt.Errorf("failed to annotate %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to annotate %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}
