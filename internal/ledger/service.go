package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/retail-ledger/internal/lock"
	"github.com/example/retail-ledger/pkg/audit"
)

// Locker grants exclusive access to a set of keys until release is called.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// IDSource issues identifiers for accounts and journal rows.
type IDSource interface {
	AccountNumber() (string, error)
	TransactionID() string
	RefNo() string
}

// AuditSink receives a copy of every completed transaction.
type AuditSink interface {
	AppendEvent(event string, v any) (*audit.LogEntry, error)
}

// Recorder collects operational metrics.
type Recorder interface {
	ObserveTransfer(method, code string, d time.Duration)
	Compensation(ok bool)
	ManualReview()
	Reversal(ok bool)
	Expired(n int)
}

// Dependencies wires a Service. Accounts, Journal, Units, Policy and IDs are
// required; the rest default to in-process or no-op implementations.
type Dependencies struct {
	Accounts AccountStore
	Journal  Journal
	Units    UnitOfWork
	Registry OwnershipRegistry
	Policy   *LimitPolicy
	IDs      IDSource
	Locker   Locker
	Audit    AuditSink
	Metrics  Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service is the transfer orchestrator and the entry point for every ledger
// mutation.
type Service struct {
	accounts AccountStore
	journal  Journal
	units    UnitOfWork
	registry OwnershipRegistry
	policy   *LimitPolicy
	ids      IDSource
	locker   Locker
	audit    AuditSink
	metrics  Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Accounts == nil:
		return nil, errors.New("ledger: account store is required")
	case deps.Journal == nil:
		return nil, errors.New("ledger: journal is required")
	case deps.Units == nil:
		return nil, errors.New("ledger: unit of work is required")
	case deps.Policy == nil:
		return nil, errors.New("ledger: limit policy is required")
	case deps.IDs == nil:
		return nil, errors.New("ledger: id source is required")
	}

	s := &Service{
		accounts: deps.Accounts,
		journal:  deps.Journal,
		units:    deps.Units,
		registry: deps.Registry,
		policy:   deps.Policy,
		ids:      deps.IDs,
		locker:   deps.Locker,
		audit:    deps.Audit,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if s.locker == nil {
		s.locker = lock.NewKeyed()
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// NewSQLService wires a Service around a single SQL store.
func NewSQLService(store *SQLStore, policy *LimitPolicy, ids IDSource, deps Dependencies) (*Service, error) {
	deps.Accounts = store
	deps.Journal = store
	deps.Units = store
	deps.Registry = store
	deps.Policy = policy
	deps.IDs = ids
	return NewService(deps)
}

func (s *Service) Policy() *LimitPolicy { return s.policy }

func accountLockKey(number string) string { return "account:" + number }

// TransferRequest carries primitive values from the request layer.
// CustomerID, when set, must own the source account.
type TransferRequest struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Remarks    string          `json:"remarks,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
}

// Validate checks both accounts and the amount against the source's floor.
// Business rejections are *ValidationError; anything else is a store failure.
func (s *Service) Validate(ctx context.Context, from, to string, amount decimal.Decimal) (*Account, *Account, error) {
	switch {
	case from == "" || to == "":
		return nil, nil, invalid(nil, "source and destination accounts are required")
	case from == to:
		return nil, nil, invalid(nil, "cannot transfer to the same account")
	case amount.LessThan(minimumUnit):
		return nil, nil, invalid(ErrInvalidAmount, "amount must be at least %s", minimumUnit.StringFixed(2))
	}
	if err := checkScale(amount); err != nil {
		return nil, nil, invalid(err, "amount %s has more than two decimal places", amount.String())
	}

	src, err := s.lookup(ctx, from, "source")
	if err != nil {
		return nil, nil, err
	}
	dst, err := s.lookup(ctx, to, "destination")
	if err != nil {
		return nil, nil, err
	}

	if src.Balance.Sub(amount).LessThan(src.Type.MinimumBalance()) {
		return nil, nil, invalid(ErrInsufficientFunds, "insufficient balance in %s: available %s above minimum balance %s",
			from, src.AvailableToDebit().StringFixed(2), src.Type.MinimumBalance().StringFixed(2))
	}
	return src, dst, nil
}

func (s *Service) lookup(ctx context.Context, number, role string) (*Account, error) {
	acct, err := s.accounts.Get(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid(err, "%s account %s not found", role, number)
		}
		return nil, err
	}
	if !acct.Active {
		return nil, invalid(ErrInactive, "%s account %s is inactive", role, number)
	}
	return acct, nil
}

type admission struct {
	method Method
	src    *Account
	dst    *Account
	limits *LimitCheck
}

// admit runs every pre-mutation check in order: method, method bounds,
// account validation, ownership, then caps. Bounds come first so an
// out-of-range amount is rejected regardless of the balance.
func (s *Service) admit(ctx context.Context, req TransferRequest, at time.Time) (*admission, *TransferResult, error) {
	method, ok := ParseTransferMethod(req.Method)
	if !ok {
		return nil, rejected(CodeInvalidTransferMethod, fmt.Sprintf("unsupported transfer method %q", req.Method)), nil
	}
	if !s.policy.IsAmountValidForMethod(req.Amount, method) {
		b := transferBounds[method]
		return nil, rejected(CodeInvalidAmountForMethod, fmt.Sprintf("%s transfers must be between %s and %s",
			method, b.min.StringFixed(2), b.max.StringFixed(2))), nil
	}

	src, dst, err := s.Validate(ctx, req.From, req.To, req.Amount)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			res := rejected(CodeValidationFailed, ve.Reason)
			if src, gerr := s.accounts.Get(ctx, req.From); gerr == nil && errors.Is(err, ErrInsufficientFunds) {
				res.FromBalance = &src.Balance
			}
			return nil, res, nil
		}
		return nil, &TransferResult{Code: CodeSystemError, Reason: "account lookup failed"}, err
	}

	if req.CustomerID != "" && s.registry != nil {
		owns, err := s.registry.BelongsTo(ctx, req.From, req.CustomerID)
		if err != nil {
			return nil, &TransferResult{Code: CodeSystemError, Reason: "ownership lookup failed"}, err
		}
		if !owns {
			return nil, rejected(CodeValidationFailed, fmt.Sprintf("account %s does not belong to customer %s", req.From, req.CustomerID)), nil
		}
	}

	check, err := s.policy.CheckLimits(ctx, req.From, req.Amount, at)
	if err != nil {
		return nil, &TransferResult{Code: CodeSystemError, Reason: "limit evaluation failed"}, err
	}
	if !check.Allowed {
		remaining := check.DailyRemaining
		if check.Exceeded == "monthly" {
			remaining = check.MonthlyRemaining
		}
		res := rejected(CodeDailyLimitExceeded, fmt.Sprintf("%s limit exceeded, current cap remaining %s", check.Exceeded, remaining.StringFixed(2)))
		res.Limits = check
		return nil, res, nil
	}
	return &admission{method: method, src: src, dst: dst, limits: check}, nil, nil
}

type leg string

const (
	legDebit   leg = "debit"
	legCredit  leg = "credit"
	legJournal leg = "journal"
)

// legError records which step of a transfer failed inside the unit of work.
type legError struct {
	leg          leg
	err          error
	compensation error
}

func (e *legError) Error() string { return fmt.Sprintf("%s failed: %v", e.leg, e.err) }

func (e *legError) Unwrap() error { return e.err }

// Transfer moves amount from one account to another. Business rejections are
// reported through the result code with a nil error. SYSTEM_ERROR and manual
// review outcomes also return the underlying error.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	began := time.Now()
	res, err := s.transfer(ctx, req)
	s.metrics.ObserveTransfer(req.Method, string(res.Code), time.Since(began))

	attrs := []any{"ref_no", res.RefNo, "from", req.From, "to", req.To, "amount", req.Amount.StringFixed(2),
		"method", req.Method, "code", res.Code}
	switch {
	case res.ManualReview:
		// logged by escalate
	case err != nil:
		s.logger.Error("transfer_failed", append(attrs, "error", err)...)
	case res.OK():
		s.logger.Info("transfer_completed", attrs...)
	default:
		s.logger.Info("transfer_rejected", append(attrs, "reason", res.Reason)...)
	}
	return res, err
}

func (s *Service) transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	release, err := s.locker.Acquire(ctx, accountLockKey(req.From), accountLockKey(req.To))
	if err != nil {
		return &TransferResult{Code: CodeSystemError, Reason: "could not lock accounts"}, err
	}
	defer release()

	now := s.now().UTC()
	adm, res, err := s.admit(ctx, req, now)
	if res != nil {
		return res, err
	}

	refNo := s.ids.RefNo()
	var rows []*Transaction
	var fromClosing decimal.Decimal

	err = s.units.Atomically(ctx, func(ctx context.Context) error {
		closing, err := s.accounts.Debit(ctx, req.From, req.Amount)
		if err != nil {
			return &legError{leg: legDebit, err: err}
		}
		fromClosing = closing

		toClosing, err := s.accounts.Credit(ctx, req.To, req.Amount)
		if err != nil {
			le := &legError{leg: legCredit, err: err}
			if IsBusiness(err) {
				le.compensation = s.compensate(ctx, refNo, req.From, req.Amount, err)
			}
			return le
		}

		valueDate := dateOf(now)
		debit := &Transaction{
			ID:             s.ids.TransactionID(),
			RefNo:          refNo,
			FromAccount:    req.From,
			ToAccount:      req.To,
			Kind:           KindDebit,
			Method:         adm.method,
			Amount:         req.Amount,
			OpeningBalance: adm.src.Balance,
			ClosingBalance: closing,
			Status:         StatusCompleted,
			OccurredAt:     now,
			ValueDate:      valueDate,
			Description:    fmt.Sprintf("%s Transfer to %s", adm.method, req.To),
			Remarks:        req.Remarks,
			ProcessedBy:    ProcessedBySystem,
		}
		credit := &Transaction{
			ID:             s.ids.TransactionID(),
			RefNo:          refNo,
			FromAccount:    req.From,
			ToAccount:      req.To,
			Kind:           KindCredit,
			Method:         adm.method,
			Amount:         req.Amount,
			OpeningBalance: adm.dst.Balance,
			ClosingBalance: toClosing,
			Status:         StatusCompleted,
			OccurredAt:     now,
			ValueDate:      valueDate,
			Description:    fmt.Sprintf("%s Transfer from %s", adm.method, req.From),
			Remarks:        req.Remarks,
			ProcessedBy:    ProcessedBySystem,
		}
		if err := s.journal.Append(ctx, debit, credit); err != nil {
			return &legError{leg: legJournal, err: err}
		}
		rows = []*Transaction{debit, credit}
		return nil
	})
	if err != nil {
		return s.transferFailure(refNo, req, err)
	}

	s.publish("transaction.completed", rows...)

	limits := *adm.limits
	limits.DailyUsed = limits.DailyUsed.Add(req.Amount)
	limits.MonthlyUsed = limits.MonthlyUsed.Add(req.Amount)
	limits.DailyRemaining = clampZero(DailyCap.Sub(limits.DailyUsed))
	limits.MonthlyRemaining = clampZero(MonthlyCap.Sub(limits.MonthlyUsed))

	return &TransferResult{
		Code:             CodeSuccess,
		RefNo:            refNo,
		TransactionIDs:   []string{rows[0].ID, rows[1].ID},
		FromBalance:      &fromClosing,
		Limits:           &limits,
		RequiresApproval: s.policy.RequiresApproval(req.Amount),
	}, nil
}

func (s *Service) transferFailure(refNo string, req TransferRequest, err error) (*TransferResult, error) {
	var le *legError
	if !errors.As(err, &le) {
		return &TransferResult{Code: CodeSystemError, RefNo: refNo, Reason: "ledger unavailable"}, err
	}

	switch le.leg {
	case legDebit:
		if IsBusiness(le.err) {
			return &TransferResult{Code: CodeTransferFailed, RefNo: refNo, Reason: "debit rejected: " + le.err.Error()}, nil
		}
	case legCredit:
		if le.compensation != nil && s.rolledBack(err) {
			// The debit never committed, so the failed compensation left nothing behind.
			s.logger.Warn("transfer_rolled_back", "ref_no", refNo, "account", req.From,
				"credit_error", le.err, "compensation_error", le.compensation)
			return &TransferResult{Code: CodeTransferFailed, RefNo: refNo, Reason: "credit rejected, transfer rolled back: " + le.err.Error()}, nil
		}
		if le.compensation != nil {
			mre := &ManualReviewError{RefNo: refNo, Account: req.From, Amount: req.Amount, CreditErr: le.err, CompensationErr: le.compensation}
			s.escalate(mre)
			return &TransferResult{Code: CodeTransferFailed, RefNo: refNo, Reason: mre.Error(), ManualReview: true}, mre
		}
		if IsBusiness(le.err) {
			return &TransferResult{Code: CodeTransferFailed, RefNo: refNo, Reason: "credit rejected, debit compensated: " + le.err.Error()}, nil
		}
	}
	return &TransferResult{Code: CodeSystemError, RefNo: refNo, Reason: string(le.leg) + " step failed"}, err
}

// rolledBack reports whether a failed unit discarded its writes.
func (s *Service) rolledBack(err error) bool {
	t, ok := s.units.(Transactional)
	return ok && t.RollsBack() && !errors.Is(err, ErrRollbackFailed)
}

// compensate undoes a landed debit with its own credit. It runs as a separate
// logged operation and its failure is returned rather than absorbed.
func (s *Service) compensate(ctx context.Context, refNo, account string, amount decimal.Decimal, cause error) error {
	s.logger.Warn("transfer_compensating", "ref_no", refNo, "account", account, "amount", amount.StringFixed(2), "cause", cause)
	if _, err := s.accounts.Credit(ctx, account, amount); err != nil {
		s.metrics.Compensation(false)
		return err
	}
	s.metrics.Compensation(true)
	s.logger.Info("transfer_compensated", "ref_no", refNo, "account", account, "amount", amount.StringFixed(2))
	return nil
}

// escalate makes a failed compensation visible in every channel operators watch.
func (s *Service) escalate(mre *ManualReviewError) {
	s.metrics.ManualReview()
	s.logger.Error("manual_review_required",
		"ref_no", mre.RefNo,
		"account", mre.Account,
		"amount", mre.Amount.StringFixed(2),
		"credit_error", mre.CreditErr,
		"compensation_error", mre.CompensationErr,
	)
	if s.audit != nil {
		if _, err := s.audit.AppendEvent("transfer.manual_review", map[string]string{
			"ref_no":             mre.RefNo,
			"account":            mre.Account,
			"amount":             mre.Amount.StringFixed(2),
			"credit_error":       fmt.Sprint(mre.CreditErr),
			"compensation_error": fmt.Sprint(mre.CompensationErr),
		}); err != nil {
			s.logger.Error("audit_append_failed", "error", err)
		}
	}
}

func (s *Service) publish(event string, rows ...*Transaction) {
	if s.audit == nil {
		return
	}
	for _, t := range rows {
		if _, err := s.audit.AppendEvent(event, t); err != nil {
			s.logger.Error("audit_append_failed", "transaction_id", t.ID, "error", err)
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransfer(string, string, time.Duration) {}
func (nopRecorder) Compensation(bool)                            {}
func (nopRecorder) ManualReview()                                {}
func (nopRecorder) Reversal(bool)                                {}
func (nopRecorder) Expired(int)                                  {}
