package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validator checks the ledger's standing invariants against stored data.
type Validator struct {
	accounts AccountStore
	journal  Journal
	now      func() time.Time
}

func NewValidator(accounts AccountStore, journal Journal) *Validator {
	return &Validator{accounts: accounts, journal: journal, now: time.Now}
}

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	IsValid        bool           `json:"is_valid"`
	ValidationType string         `json:"validation_type"`
	Message        string         `json:"message"`
	AccountID      string         `json:"account_id,omitempty"`
	TransactionID  string         `json:"transaction_id,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Details        map[string]any `json:"details,omitempty"`
}

func (v *Validator) result(kind string, ok bool, msg string) *ValidationResult {
	return &ValidationResult{IsValid: ok, ValidationType: kind, Message: msg, Timestamp: v.now().UTC()}
}

// ValidateBalanceConsistency replays every landed row touching the account
// and compares the sum with the stored balance.
func (v *Validator) ValidateBalanceConsistency(ctx context.Context, number string) *ValidationResult {
	acct, err := v.accounts.Get(ctx, number)
	if err != nil {
		r := v.result("balance_consistency", false, fmt.Sprintf("failed to get account: %v", err))
		r.AccountID = number
		return r
	}
	rows, err := v.journal.ByAccount(ctx, number, 0)
	if err != nil {
		r := v.result("balance_consistency", false, fmt.Sprintf("failed to read journal: %v", err))
		r.AccountID = number
		return r
	}

	expected := decimal.Zero
	counted := 0
	for _, t := range rows {
		if !t.Landed() {
			continue
		}
		expected = expected.Add(t.EffectOn(number))
		counted++
	}

	ok := expected.Equal(acct.Balance)
	msg := fmt.Sprintf("balance %s matches %d journal rows", acct.Balance.StringFixed(2), counted)
	if !ok {
		msg = fmt.Sprintf("balance mismatch: stored %s, journal %s", acct.Balance.StringFixed(2), expected.StringFixed(2))
	}
	r := v.result("balance_consistency", ok, msg)
	r.AccountID = number
	r.Details = map[string]any{
		"stored_balance":  acct.Balance.StringFixed(2),
		"journal_balance": expected.StringFixed(2),
		"difference":      acct.Balance.Sub(expected).StringFixed(2),
		"rows_counted":    counted,
		"rows_considered": len(rows),
	}
	return r
}

// ValidateMinimumBalance checks the account still sits at or above its floor.
func (v *Validator) ValidateMinimumBalance(ctx context.Context, number string) *ValidationResult {
	acct, err := v.accounts.Get(ctx, number)
	if err != nil {
		r := v.result("minimum_balance", false, fmt.Sprintf("failed to get account: %v", err))
		r.AccountID = number
		return r
	}
	floor := acct.Type.MinimumBalance()
	ok := !acct.Balance.LessThan(floor)
	msg := fmt.Sprintf("balance %s is at or above the %s floor of %s", acct.Balance.StringFixed(2), acct.Type, floor.StringFixed(2))
	if !ok {
		msg = fmt.Sprintf("balance %s is below the %s floor of %s", acct.Balance.StringFixed(2), acct.Type, floor.StringFixed(2))
	}
	r := v.result("minimum_balance", ok, msg)
	r.AccountID = number
	return r
}

// ValidateDoubleEntry checks that a transfer's reference group holds exactly
// one DEBIT and one CREDIT row for the same amount and status. Single-sided
// groups such as deposits pass trivially.
func (v *Validator) ValidateDoubleEntry(ctx context.Context, refNo string) *ValidationResult {
	rows, err := v.journal.FindByRef(ctx, refNo)
	if err != nil {
		r := v.result("double_entry", false, fmt.Sprintf("failed to read reference %s: %v", refNo, err))
		r.TransactionID = refNo
		return r
	}
	if len(rows) == 0 {
		r := v.result("double_entry", false, fmt.Sprintf("reference %s has no rows", refNo))
		r.TransactionID = refNo
		return r
	}

	if !isTransferLeg(rows[0]) {
		r := v.result("double_entry", len(rows) == 1, fmt.Sprintf("reference %s is single-sided with %d rows", refNo, len(rows)))
		r.TransactionID = refNo
		return r
	}

	debits, credits := decimal.Zero, decimal.Zero
	var nDebit, nCredit int
	statuses := map[Status]bool{}
	for _, t := range rows {
		statuses[t.Status] = true
		switch t.Kind {
		case KindDebit:
			nDebit++
			debits = debits.Add(t.Amount)
		case KindCredit:
			nCredit++
			credits = credits.Add(t.Amount)
		}
	}

	ok := nDebit == 1 && nCredit == 1 && len(rows) == 2 && debits.Equal(credits) && len(statuses) == 1
	msg := fmt.Sprintf("double-entry satisfied: debits = credits = %s", debits.StringFixed(2))
	if !ok {
		msg = fmt.Sprintf("double-entry violation: %d debit rows (%s), %d credit rows (%s), %d statuses",
			nDebit, debits.StringFixed(2), nCredit, credits.StringFixed(2), len(statuses))
	}
	r := v.result("double_entry", ok, msg)
	r.TransactionID = refNo
	r.Details = map[string]any{
		"total_debits":  debits.StringFixed(2),
		"total_credits": credits.StringFixed(2),
		"rows":          len(rows),
	}
	return r
}

// isTransferLeg reports whether a row is one half of a two-account transfer.
func isTransferLeg(t *Transaction) bool {
	return (t.Kind == KindDebit || t.Kind == KindCredit) && t.FromAccount != "" && t.ToAccount != ""
}

// ComprehensiveValidation performs all validation checks for an account,
// including double entry for every reference group it appears in.
func (v *Validator) ComprehensiveValidation(ctx context.Context, number string) []*ValidationResult {
	results := []*ValidationResult{
		v.ValidateBalanceConsistency(ctx, number),
		v.ValidateMinimumBalance(ctx, number),
	}

	rows, err := v.journal.ByAccount(ctx, number, 0)
	if err != nil {
		r := v.result("comprehensive", false, fmt.Sprintf("failed to read journal: %v", err))
		r.AccountID = number
		return append(results, r)
	}
	seen := make(map[string]bool)
	for _, t := range rows {
		if seen[t.RefNo] {
			continue
		}
		seen[t.RefNo] = true
		results = append(results, v.ValidateDoubleEntry(ctx, t.RefNo))
	}
	return results
}

// Valid reports whether every result passed.
func Valid(results []*ValidationResult) bool {
	for _, r := range results {
		if !r.IsValid {
			return false
		}
	}
	return true
}

// Reconciliation summarises a ValidateLedger run.
type Reconciliation struct {
	Accounts   int                 `json:"accounts"`
	References int                 `json:"references"`
	Failures   []*ValidationResult `json:"failures,omitempty"`
}

// FailuresByType counts failed checks per validation type.
func (r *Reconciliation) FailuresByType() map[string]int {
	out := make(map[string]int)
	for _, f := range r.Failures {
		out[f.ValidationType]++
	}
	return out
}

// ValidateLedger runs the per-account checks for every number and the
// double-entry check once per reference group those accounts touch. It stops
// early only when ctx is done.
func (v *Validator) ValidateLedger(ctx context.Context, numbers []string) (*Reconciliation, error) {
	rec := &Reconciliation{}
	seen := make(map[string]bool)
	keep := func(r *ValidationResult) {
		if !r.IsValid {
			rec.Failures = append(rec.Failures, r)
		}
	}
	for _, n := range numbers {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		rec.Accounts++
		keep(v.ValidateBalanceConsistency(ctx, n))
		keep(v.ValidateMinimumBalance(ctx, n))

		rows, err := v.journal.ByAccount(ctx, n, 0)
		if err != nil {
			r := v.result("comprehensive", false, fmt.Sprintf("failed to read journal: %v", err))
			r.AccountID = n
			keep(r)
			continue
		}
		for _, t := range rows {
			if seen[t.RefNo] {
				continue
			}
			seen[t.RefNo] = true
			rec.References++
			keep(v.ValidateDoubleEntry(ctx, t.RefNo))
		}
	}
	return rec, nil
}
