package ledger

import "github.com/shopspring/decimal"

// Code is the closed set of outcomes a transfer request can have.
type Code string

const (
	CodeSuccess                Code = "SUCCESS"
	CodeValidationFailed       Code = "VALIDATION_FAILED"
	CodeInvalidAmountForMethod Code = "INVALID_AMOUNT_FOR_METHOD"
	CodeDailyLimitExceeded     Code = "DAILY_LIMIT_EXCEEDED"
	CodeTransferFailed         Code = "TRANSFER_FAILED"
	CodeInvalidTransferMethod  Code = "INVALID_TRANSFER_METHOD"
	CodeSystemError            Code = "SYSTEM_ERROR"
)

// TransferResult explains the outcome of a transfer request. Rejections carry
// the figures behind them (balance or remaining caps) where they apply.
// RequiresApproval flags a completed transfer above ApprovalThreshold for
// back-office review.
type TransferResult struct {
	Code             Code             `json:"code"`
	Reason           string           `json:"reason,omitempty"`
	RefNo            string           `json:"ref_no,omitempty"`
	TransactionIDs   []string         `json:"transaction_ids,omitempty"`
	FromBalance      *decimal.Decimal `json:"from_balance,omitempty"`
	Limits           *LimitCheck      `json:"limits,omitempty"`
	ManualReview     bool             `json:"manual_review,omitempty"`
	RequiresApproval bool             `json:"requires_approval,omitempty"`
}

func (r *TransferResult) OK() bool { return r.Code == CodeSuccess }

func rejected(code Code, reason string) *TransferResult {
	return &TransferResult{Code: code, Reason: reason}
}
