package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseTransactionRestoresBalances(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(500), Method: "NEFT"})
	require.NoError(t, err)
	require.True(t, res.OK())

	rev, err := h.svc.ReverseTransaction(ctx, res.TransactionIDs[0], "customer dispute")
	require.NoError(t, err)
	assert.Equal(t, KindReversal, rev.Kind)
	assert.Equal(t, b.Number, rev.FromAccount)
	assert.Equal(t, a.Number, rev.ToAccount)
	assert.NotEqual(t, res.RefNo, rev.RefNo)
	assert.Contains(t, rev.Remarks, "customer dispute")
	assertAmount(t, 2_500, rev.OpeningBalance)
	assertAmount(t, 2_000, rev.ClosingBalance)

	assertAmount(t, 10_000, h.balance(t, a.Number))
	assertAmount(t, 2_000, h.balance(t, b.Number))

	group, err := h.svc.TransactionsByRef(ctx, res.RefNo)
	require.NoError(t, err)
	for _, row := range group {
		assert.Equal(t, StatusReversed, row.Status)
	}

	// Any row of the group is now REVERSED, so a second reversal fails.
	_, err = h.svc.ReverseTransaction(ctx, res.TransactionIDs[1], "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, []bool{true, false}, h.metrics.reversals)

	v := NewValidator(h.store, h.store)
	assert.True(t, Valid(v.ComprehensiveValidation(ctx, a.Number)))
	assert.True(t, Valid(v.ComprehensiveValidation(ctx, b.Number)))
}

func TestReverseTransactionRespectsDestinationFloor(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(500), Method: "NEFT"})
	require.NoError(t, err)
	require.True(t, res.OK())
	spent, err := h.svc.Transfer(ctx, TransferRequest{From: b.Number, To: a.Number, Amount: amt(1_400), Method: "IMPS"})
	require.NoError(t, err)
	require.True(t, spent.OK(), spent.Reason)

	_, err = h.svc.ReverseTransaction(ctx, res.TransactionIDs[0], "late dispute")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	row, err := h.svc.Transaction(ctx, res.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, row.Status)
	assertAmount(t, 1_100, h.balance(t, b.Number))
}

func TestReverseDeposit(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountCurrent, 5_000)

	dep, err := h.svc.Deposit(ctx, a.Number, amt(300), "")
	require.NoError(t, err)
	rev, err := h.svc.ReverseTransaction(ctx, dep.ID, "duplicate deposit")
	require.NoError(t, err)
	assert.Equal(t, a.Number, rev.FromAccount)
	assert.Empty(t, rev.ToAccount)
	assertAmount(t, 5_000, h.balance(t, a.Number))

	v := NewValidator(h.store, h.store)
	assert.True(t, Valid(v.ComprehensiveValidation(ctx, a.Number)))
}

func TestPendingLifecycle(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(700), Method: "IMPS"})
	require.NoError(t, err)
	require.True(t, res.OK(), res.Reason)
	require.Len(t, res.TransactionIDs, 1)
	id := res.TransactionIDs[0]

	row, err := h.svc.Transaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, row.Status)
	assert.Equal(t, KindTransfer, row.Kind)
	assertAmount(t, 10_000, h.balance(t, a.Number))

	// Pending rows do not count towards the caps.
	limits, err := h.svc.Limits(ctx, a.Number, h.clock.Now())
	require.NoError(t, err)
	assertAmount(t, 0, limits.DailyUsed)

	_, err = h.svc.ReverseTransaction(ctx, id, "not landed")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, h.svc.CancelTransaction(ctx, id))
	row, err = h.svc.Transaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, row.Status)

	err = h.svc.CancelTransaction(ctx, id)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StatusCancelled, te.From)
	assertAmount(t, 10_000, h.balance(t, a.Number))
}

func TestCancelCompletedTransactionFails(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(100), Method: "NEFT"})
	require.NoError(t, err)
	assert.ErrorIs(t, h.svc.CancelTransaction(ctx, res.TransactionIDs[0]), ErrInvalidTransition)
	assert.ErrorIs(t, h.svc.CancelTransaction(ctx, "TXNMISSING"), ErrNotFound)
}

func TestSubmitPendingRunsTransferChecks(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(9_500), Method: "NEFT"})
	require.NoError(t, err)
	assert.Equal(t, CodeValidationFailed, res.Code)

	res, err = h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(100), Method: "RTGS"})
	require.NoError(t, err)
	assert.Equal(t, CodeInvalidAmountForMethod, res.Code)

	pending, err := h.store.ByStatus(ctx, StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExpirePendingFailsStaleRows(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	old, err := h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(100), Method: "NEFT"})
	require.NoError(t, err)
	h.clock.Advance(20 * time.Hour)
	fresh, err := h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(200), Method: "NEFT"})
	require.NoError(t, err)
	h.clock.Advance(5 * time.Hour)

	n, err := h.svc.ExpirePending(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, h.metrics.expired)

	row, err := h.svc.Transaction(ctx, old.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, row.Status)
	row, err = h.svc.Transaction(ctx, fresh.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusPending, row.Status)

	n, err = h.svc.ExpirePending(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStatementTotals(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 10_000)
	b := h.open(t, AccountSavings, 2_000)

	h.clock.Advance(time.Hour)
	start := h.clock.Now()
	_, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(1_000), Method: "NEFT"})
	require.NoError(t, err)
	_, err = h.svc.Deposit(ctx, a.Number, amt(250), "")
	require.NoError(t, err)
	_, err = h.svc.SubmitPending(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(50), Method: "NEFT"})
	require.NoError(t, err)

	st, err := h.svc.Statement(ctx, a.Number, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	// DEBIT and CREDIT legs, the deposit and the pending row; the opening
	// deposit falls before the window.
	assert.Len(t, st.Transactions, 4)
	assertAmount(t, 250, st.TotalCredits)
	assertAmount(t, 1_000, st.TotalDebits)
	assertAmount(t, 9_250, st.Account.Balance)

	_, err = h.svc.Statement(ctx, a.Number, start, start)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRemarksAndQueries(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 100_000)
	b := h.open(t, AccountSavings, 2_000)

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(30_000), Method: "IMPS"})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.True(t, res.RequiresApproval)

	small, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(500), Method: "IMPS"})
	require.NoError(t, err)
	require.True(t, small.OK())
	assert.False(t, small.RequiresApproval)

	require.NoError(t, h.svc.AddRemarks(ctx, res.TransactionIDs[0], "verified by phone"))
	row, err := h.svc.Transaction(ctx, res.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "verified by phone", row.Remarks)
	assert.ErrorIs(t, h.svc.AddRemarks(ctx, "TXNNOPE", "x"), ErrNotFound)

	high, err := h.svc.HighValue(ctx, ApprovalThreshold)
	require.NoError(t, err)
	// The opening deposit of 100,000 and both legs of the transfer.
	assert.Len(t, high, 3)

	recent, err := h.svc.Recent(ctx, b.Number, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, small.RefNo, recent[0].RefNo)

	_, err = h.svc.Recent(ctx, "123499999999", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
