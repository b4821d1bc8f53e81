package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	DailyCap          = decimal.NewFromInt(100_000)
	MonthlyCap        = decimal.NewFromInt(500_000)
	ApprovalThreshold = decimal.NewFromInt(25_000)
)

type methodBounds struct {
	min, max decimal.Decimal
}

var transferBounds = map[Method]methodBounds{
	MethodNEFT: {decimal.NewFromInt(1), decimal.NewFromInt(1_000_000)},
	MethodRTGS: {decimal.NewFromInt(200_000), decimal.NewFromInt(10_000_000)},
	MethodIMPS: {decimal.NewFromInt(1), decimal.NewFromInt(500_000)},
}

// OutgoingAggregator is the slice of the journal the policy reads.
type OutgoingAggregator interface {
	SumOutgoing(ctx context.Context, number string, from, to time.Time, mode AggregateMode) (decimal.Decimal, error)
}

// LimitPolicy evaluates method bounds and per-period caps. It never mutates.
type LimitPolicy struct {
	journal  OutgoingAggregator
	location *time.Location
	mode     AggregateMode
}

func NewLimitPolicy(journal OutgoingAggregator, location *time.Location, mode AggregateMode) *LimitPolicy {
	if location == nil {
		location = time.UTC
	}
	if mode == "" {
		mode = AggregateDebitSide
	}
	return &LimitPolicy{journal: journal, location: location, mode: mode}
}

// Location is the time zone calendar days and months are counted in.
func (p *LimitPolicy) Location() *time.Location { return p.location }

// IsAmountValidForMethod checks the inclusive bounds of an interbank method.
// Unknown methods are never valid.
func (p *LimitPolicy) IsAmountValidForMethod(amount decimal.Decimal, method Method) bool {
	b, ok := transferBounds[method]
	if !ok {
		return false
	}
	return amount.GreaterThanOrEqual(b.min) && amount.LessThanOrEqual(b.max)
}

// TransferLimit is the largest single transfer a method allows.
func (p *LimitPolicy) TransferLimit(method Method) (decimal.Decimal, bool) {
	b, ok := transferBounds[method]
	return b.max, ok
}

// RequiresApproval flags amounts above the manual approval threshold.
func (p *LimitPolicy) RequiresApproval(amount decimal.Decimal) bool {
	return amount.GreaterThan(ApprovalThreshold)
}

func (p *LimitPolicy) daySpan(date time.Time) (time.Time, time.Time) {
	d := date.In(p.location)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, p.location)
	return start, start.AddDate(0, 0, 1)
}

func (p *LimitPolicy) monthSpan(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, p.location)
	return start, start.AddDate(0, 1, 0)
}

func (p *LimitPolicy) usedDaily(ctx context.Context, number string, date time.Time) (decimal.Decimal, error) {
	from, to := p.daySpan(date)
	used, err := p.journal.SumOutgoing(ctx, number, from, to, p.mode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum daily outgoing for %s: %w", number, err)
	}
	return used, nil
}

func (p *LimitPolicy) usedMonthly(ctx context.Context, number string, month time.Month, year int) (decimal.Decimal, error) {
	from, to := p.monthSpan(month, year)
	used, err := p.journal.SumOutgoing(ctx, number, from, to, p.mode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum monthly outgoing for %s: %w", number, err)
	}
	return used, nil
}

// DailyCapRemaining is the daily cap minus today's outgoing total. It can go
// negative when the parity aggregate double counts.
func (p *LimitPolicy) DailyCapRemaining(ctx context.Context, number string, date time.Time) (decimal.Decimal, error) {
	used, err := p.usedDaily(ctx, number, date)
	if err != nil {
		return decimal.Zero, err
	}
	return DailyCap.Sub(used), nil
}

func (p *LimitPolicy) MonthlyCapRemaining(ctx context.Context, number string, month time.Month, year int) (decimal.Decimal, error) {
	used, err := p.usedMonthly(ctx, number, month, year)
	if err != nil {
		return decimal.Zero, err
	}
	return MonthlyCap.Sub(used), nil
}

// LimitCheck is the outcome of CheckLimits. Remaining values are clamped at zero.
type LimitCheck struct {
	Allowed          bool            `json:"allowed"`
	Exceeded         string          `json:"exceeded,omitempty"`
	DailyUsed        decimal.Decimal `json:"daily_used"`
	DailyRemaining   decimal.Decimal `json:"daily_remaining"`
	MonthlyUsed      decimal.Decimal `json:"monthly_used"`
	MonthlyRemaining decimal.Decimal `json:"monthly_remaining"`
}

// CheckLimits adds amount to the pre-transaction totals and compares the sum
// with each cap.
func (p *LimitPolicy) CheckLimits(ctx context.Context, number string, amount decimal.Decimal, date time.Time) (*LimitCheck, error) {
	daily, err := p.usedDaily(ctx, number, date)
	if err != nil {
		return nil, err
	}
	d := date.In(p.location)
	monthly, err := p.usedMonthly(ctx, number, d.Month(), d.Year())
	if err != nil {
		return nil, err
	}

	check := &LimitCheck{
		Allowed:          true,
		DailyUsed:        daily,
		DailyRemaining:   clampZero(DailyCap.Sub(daily)),
		MonthlyUsed:      monthly,
		MonthlyRemaining: clampZero(MonthlyCap.Sub(monthly)),
	}
	switch {
	case daily.Add(amount).GreaterThan(DailyCap):
		check.Allowed = false
		check.Exceeded = "daily"
	case monthly.Add(amount).GreaterThan(MonthlyCap):
		check.Allowed = false
		check.Exceeded = "monthly"
	}
	return check, nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
