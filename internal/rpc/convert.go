package rpc

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	ledgerv1 "github.com/example/retail-ledger/api/gen/ledger/v1"
	"github.com/example/retail-ledger/internal/ledger"
)

// Balance is the decoded form of a GetBalance response.
type Balance struct {
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Active    bool            `json:"active"`
}

func amountString(d decimal.Decimal) string { return d.StringFixed(2) }

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a decimal", field, s)
	}
	return d, nil
}

func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func transferRequestToProto(req ledger.TransferRequest) *ledgerv1.TransferRequest {
	return &ledgerv1.TransferRequest{
		From:       req.From,
		To:         req.To,
		Amount:     req.Amount.String(),
		Method:     req.Method,
		Remarks:    req.Remarks,
		CustomerId: req.CustomerID,
	}
}

func transferRequestFromProto(in *ledgerv1.TransferRequest) (ledger.TransferRequest, error) {
	amount, err := ledger.ParseAmount(in.GetAmount())
	if err != nil {
		return ledger.TransferRequest{}, err
	}
	return ledger.TransferRequest{
		From:       in.GetFrom(),
		To:         in.GetTo(),
		Amount:     amount,
		Method:     in.GetMethod(),
		Remarks:    in.GetRemarks(),
		CustomerID: in.GetCustomerId(),
	}, nil
}

func transferResultToProto(res *ledger.TransferResult) *ledgerv1.TransferResponse {
	out := &ledgerv1.TransferResponse{
		Code:             string(res.Code),
		Reason:           res.Reason,
		RefNo:            res.RefNo,
		TransactionIds:   res.TransactionIDs,
		ManualReview:     res.ManualReview,
		RequiresApproval: res.RequiresApproval,
	}
	if res.FromBalance != nil {
		out.FromBalance = amountString(*res.FromBalance)
	}
	if l := res.Limits; l != nil {
		out.Limits = &ledgerv1.LimitCheck{
			Allowed:          l.Allowed,
			Exceeded:         l.Exceeded,
			DailyUsed:        amountString(l.DailyUsed),
			DailyRemaining:   amountString(l.DailyRemaining),
			MonthlyUsed:      amountString(l.MonthlyUsed),
			MonthlyRemaining: amountString(l.MonthlyRemaining),
		}
	}
	return out
}

func transferResultFromProto(in *ledgerv1.TransferResponse) (*ledger.TransferResult, error) {
	res := &ledger.TransferResult{
		Code:             ledger.Code(in.GetCode()),
		Reason:           in.GetReason(),
		RefNo:            in.GetRefNo(),
		TransactionIDs:   in.GetTransactionIds(),
		ManualReview:     in.GetManualReview(),
		RequiresApproval: in.GetRequiresApproval(),
	}
	if in.GetFromBalance() != "" {
		b, err := parseDecimal("from_balance", in.GetFromBalance())
		if err != nil {
			return nil, err
		}
		res.FromBalance = &b
	}
	if l := in.GetLimits(); l != nil {
		check := &ledger.LimitCheck{Allowed: l.GetAllowed(), Exceeded: l.GetExceeded()}
		for _, f := range []struct {
			name string
			raw  string
			dst  *decimal.Decimal
		}{
			{"daily_used", l.GetDailyUsed(), &check.DailyUsed},
			{"daily_remaining", l.GetDailyRemaining(), &check.DailyRemaining},
			{"monthly_used", l.GetMonthlyUsed(), &check.MonthlyUsed},
			{"monthly_remaining", l.GetMonthlyRemaining(), &check.MonthlyRemaining},
		} {
			d, err := parseDecimal(f.name, f.raw)
			if err != nil {
				return nil, err
			}
			*f.dst = d
		}
		res.Limits = check
	}
	return res, nil
}

func transactionToProto(t *ledger.Transaction) *ledgerv1.Transaction {
	return &ledgerv1.Transaction{
		Id:             t.ID,
		RefNo:          t.RefNo,
		FromAccount:    t.FromAccount,
		ToAccount:      t.ToAccount,
		Kind:           string(t.Kind),
		Method:         string(t.Method),
		Amount:         amountString(t.Amount),
		OpeningBalance: amountString(t.OpeningBalance),
		ClosingBalance: amountString(t.ClosingBalance),
		Status:         string(t.Status),
		OccurredAt:     formatTime(t.OccurredAt),
		ValueDate:      formatTime(t.ValueDate),
		Description:    t.Description,
		Remarks:        t.Remarks,
		ProcessedBy:    t.ProcessedBy,
	}
}

func transactionFromProto(in *ledgerv1.Transaction) (*ledger.Transaction, error) {
	if in == nil {
		return nil, errors.New("response carries no transaction")
	}
	t := &ledger.Transaction{
		ID:          in.GetId(),
		RefNo:       in.GetRefNo(),
		FromAccount: in.GetFromAccount(),
		ToAccount:   in.GetToAccount(),
		Kind:        ledger.Kind(in.GetKind()),
		Method:      ledger.Method(in.GetMethod()),
		Status:      ledger.Status(in.GetStatus()),
		Description: in.GetDescription(),
		Remarks:     in.GetRemarks(),
		ProcessedBy: in.GetProcessedBy(),
	}
	var err error
	if t.Amount, err = parseDecimal("amount", in.GetAmount()); err != nil {
		return nil, err
	}
	if t.OpeningBalance, err = parseDecimal("opening_balance", in.GetOpeningBalance()); err != nil {
		return nil, err
	}
	if t.ClosingBalance, err = parseDecimal("closing_balance", in.GetClosingBalance()); err != nil {
		return nil, err
	}
	if t.OccurredAt, err = parseTime("occurred_at", in.GetOccurredAt()); err != nil {
		return nil, err
	}
	if t.ValueDate, err = parseTime("value_date", in.GetValueDate()); err != nil {
		return nil, err
	}
	return t, nil
}

func balanceFromProto(in *ledgerv1.GetBalanceResponse) (*Balance, error) {
	b := &Balance{Number: in.GetNumber(), Active: in.GetActive()}
	var err error
	if b.Balance, err = parseDecimal("balance", in.GetBalance()); err != nil {
		return nil, err
	}
	if b.Available, err = parseDecimal("available", in.GetAvailable()); err != nil {
		return nil, err
	}
	return b, nil
}
