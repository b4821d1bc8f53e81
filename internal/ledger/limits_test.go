package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spanCall struct {
	from, to time.Time
}

// fixedOutgoing answers SumOutgoing with a constant and records the spans asked for.
type fixedOutgoing struct {
	sum   decimal.Decimal
	calls []spanCall
}

func (f *fixedOutgoing) SumOutgoing(_ context.Context, _ string, from, to time.Time, _ AggregateMode) (decimal.Decimal, error) {
	f.calls = append(f.calls, spanCall{from, to})
	return f.sum, nil
}

func TestIsAmountValidForMethod(t *testing.T) {
	p := NewLimitPolicy(&fixedOutgoing{}, nil, "")
	cases := []struct {
		method Method
		amount string
		want   bool
	}{
		{MethodNEFT, "1", true},
		{MethodNEFT, "0.99", false},
		{MethodNEFT, "1000000", true},
		{MethodNEFT, "1000000.01", false},
		{MethodRTGS, "199999.99", false},
		{MethodRTGS, "200000", true},
		{MethodRTGS, "10000000", true},
		{MethodRTGS, "10000000.01", false},
		{MethodIMPS, "500000", true},
		{MethodIMPS, "500000.01", false},
		{MethodOnline, "100", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.IsAmountValidForMethod(decimal.RequireFromString(tc.amount), tc.method), "%s %s", tc.method, tc.amount)
	}

	limit, ok := p.TransferLimit(MethodIMPS)
	require.True(t, ok)
	assertAmount(t, 500_000, limit)
	_, ok = p.TransferLimit(MethodSystem)
	assert.False(t, ok)
}

func TestRequiresApproval(t *testing.T) {
	p := NewLimitPolicy(&fixedOutgoing{}, nil, "")
	assert.False(t, p.RequiresApproval(amt(25_000)))
	assert.True(t, p.RequiresApproval(decimal.RequireFromString("25000.01")))
}

func TestCheckLimitsBoundaries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	agg := &fixedOutgoing{sum: amt(60_000)}
	p := NewLimitPolicy(agg, time.UTC, AggregateDebitSide)

	check, err := p.CheckLimits(ctx, "A", amt(40_000), now)
	require.NoError(t, err)
	assert.True(t, check.Allowed, "S + a equal to the cap is allowed")

	check, err = p.CheckLimits(ctx, "A", decimal.RequireFromString("40000.01"), now)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, "daily", check.Exceeded)
	assertAmount(t, 40_000, check.DailyRemaining)

	over := &fixedOutgoing{sum: amt(150_000)}
	check, err = NewLimitPolicy(over, time.UTC, "").CheckLimits(ctx, "A", amt(1), now)
	require.NoError(t, err)
	assertAmount(t, 0, check.DailyRemaining)
}

func TestCheckLimitsUsesHalfOpenSpansInPolicyZone(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("IST", 5*3600+1800)
	agg := &fixedOutgoing{}
	p := NewLimitPolicy(agg, loc, AggregateDebitSide)

	// 20:00 UTC on the 31st is already the 1st in IST.
	at := time.Date(2024, time.January, 31, 20, 0, 0, 0, time.UTC)
	_, err := p.CheckLimits(ctx, "A", amt(1), at)
	require.NoError(t, err)
	require.Len(t, agg.calls, 2)

	day := agg.calls[0]
	assert.True(t, day.from.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, 24*time.Hour, day.to.Sub(day.from))

	month := agg.calls[1]
	assert.True(t, month.from.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)))
	assert.True(t, month.to.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)))
}

func TestDailyCapAgainstJournal(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 500_000)
	b := h.open(t, AccountSavings, 2_000)

	h.seedOutgoing(t, a.Number, 60_000, h.clock.Now().Add(-time.Hour))
	// Yesterday's outgoing does not count towards today's cap.
	h.seedOutgoing(t, a.Number, 90_000, h.clock.Now().Add(-24*time.Hour))

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(40_000), Method: "IMPS"})
	require.NoError(t, err)
	require.Equal(t, CodeSuccess, res.Code, res.Reason)
	assertAmount(t, 0, res.Limits.DailyRemaining)

	res, err = h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(1), Method: "IMPS"})
	require.NoError(t, err)
	assert.Equal(t, CodeDailyLimitExceeded, res.Code)
	assert.Contains(t, res.Reason, "daily")
	require.NotNil(t, res.Limits)
	assertAmount(t, 100_000, res.Limits.DailyUsed)

	// The next day the cap is available again.
	h.clock.Advance(24 * time.Hour)
	res, err = h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(1), Method: "IMPS"})
	require.NoError(t, err)
	assert.Equal(t, CodeSuccess, res.Code, res.Reason)
}

func TestMonthlyCapAgainstJournal(t *testing.T) {
	h := newHarness(t, AggregateDebitSide)
	ctx := context.Background()
	a := h.open(t, AccountSavings, 1_000_000)
	b := h.open(t, AccountSavings, 2_000)

	for day := 1; day <= 4; day++ {
		h.seedOutgoing(t, a.Number, 100_000, time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC))
	}
	h.seedOutgoing(t, a.Number, 80_000, time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC))
	// February rows fall outside the month.
	h.seedOutgoing(t, a.Number, 100_000, time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC))

	res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(20_000), Method: "NEFT"})
	require.NoError(t, err)
	require.Equal(t, CodeSuccess, res.Code, res.Reason)

	res, err = h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(1), Method: "NEFT"})
	require.NoError(t, err)
	assert.Equal(t, CodeDailyLimitExceeded, res.Code)
	assert.Contains(t, res.Reason, "monthly")
	assert.Equal(t, "monthly", res.Limits.Exceeded)

	remaining, err := h.svc.Policy().MonthlyCapRemaining(ctx, a.Number, time.March, 2024)
	require.NoError(t, err)
	assertAmount(t, 0, remaining)
	remaining, err = h.svc.Policy().MonthlyCapRemaining(ctx, a.Number, time.February, 2024)
	require.NoError(t, err)
	assertAmount(t, 400_000, remaining)
}

func TestAggregateModes(t *testing.T) {
	for _, tc := range []struct {
		mode AggregateMode
		used int64
	}{
		{AggregateDebitSide, 500},
		// Parity also counts the CREDIT leg, which carries the same source account and method.
		{AggregateParity, 1_000},
	} {
		t.Run(string(tc.mode), func(t *testing.T) {
			h := newHarness(t, tc.mode)
			ctx := context.Background()
			a := h.open(t, AccountSavings, 10_000)
			b := h.open(t, AccountSavings, 2_000)

			res, err := h.svc.Transfer(ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(500), Method: "NEFT"})
			require.NoError(t, err)
			require.True(t, res.OK())

			remaining, err := h.svc.Policy().DailyCapRemaining(ctx, a.Number, h.clock.Now())
			require.NoError(t, err)
			assertAmount(t, 100_000-tc.used, remaining)

			// Deposits into b are never outgoing for b.
			remaining, err = h.svc.Policy().DailyCapRemaining(ctx, b.Number, h.clock.Now())
			require.NoError(t, err)
			assertAmount(t, 100_000, remaining)
		})
	}
}

func TestParseAggregateMode(t *testing.T) {
	m, err := ParseAggregateMode("")
	require.NoError(t, err)
	assert.Equal(t, AggregateDebitSide, m)

	m, err = ParseAggregateMode("parity")
	require.NoError(t, err)
	assert.Equal(t, AggregateParity, m)

	_, err = ParseAggregateMode("both")
	assert.Error(t, err)
}
