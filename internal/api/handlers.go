package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/internal/security"
)

// CustomerIDHeader carries the authenticated customer. When present, transfers
// and account reads are checked against account ownership.
const CustomerIDHeader = "X-Customer-ID"

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
	dateLayout         = "2006-01-02"
)

type handlers struct {
	ledger Ledger
	logger *slog.Logger
}

type openAccountRequest struct {
	OwnerID        string          `json:"owner_id"`
	Type           string          `json:"type"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

type openAccountResponse struct {
	CorrelationID string              `json:"correlation_id"`
	Account       *ledger.Account     `json:"account"`
	Opening       *ledger.Transaction `json:"opening_transaction"`
}

type accountResponse struct {
	CorrelationID string          `json:"correlation_id"`
	Account       *ledger.Account `json:"account"`
}

type movementRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks"`
}

type transactionResponse struct {
	CorrelationID string              `json:"correlation_id"`
	Transaction   *ledger.Transaction `json:"transaction"`
}

type transactionsResponse struct {
	CorrelationID string                `json:"correlation_id"`
	Transactions  []*ledger.Transaction `json:"transactions"`
}

type statementResponse struct {
	CorrelationID string `json:"correlation_id"`
	*ledger.Statement
}

type limitsResponse struct {
	CorrelationID  string                     `json:"correlation_id"`
	Date           string                     `json:"date"`
	Limits         *ledger.LimitCheck         `json:"limits"`
	TransferLimits map[string]decimal.Decimal `json:"transfer_limits"`
}

type highValueResponse struct {
	CorrelationID string                `json:"correlation_id"`
	Threshold     decimal.Decimal       `json:"threshold"`
	Transactions  []*ledger.Transaction `json:"transactions"`
}

var interbankMethods = []ledger.Method{ledger.MethodNEFT, ledger.MethodRTGS, ledger.MethodIMPS}

type transferRequest struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Remarks string          `json:"remarks"`
}

type transferResponse struct {
	CorrelationID string `json:"correlation_id"`
	*ledger.TransferResult
}

func (h *handlers) openAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acct, opening, err := h.ledger.OpenAccount(r.Context(), ledger.OpenAccountRequest{
		OwnerID:        req.OwnerID,
		Type:           req.Type,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, openAccountResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Account:       acct,
		Opening:       opening,
	})
}

// ownerOnly rejects account reads by a customer who does not own the account.
// Requests without CustomerIDHeader pass through.
func (h *handlers) ownerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer := r.Header.Get(CustomerIDHeader)
		if customer == "" {
			next.ServeHTTP(w, r)
			return
		}
		owns, err := h.ledger.AccountBelongsTo(r.Context(), chi.URLParam(r, "number"), customer)
		if err != nil {
			h.writeLedgerError(w, r, err)
			return
		}
		if !owns {
			security.WriteJSONError(w, r, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handlers) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.ledger.Account(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, accountResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Account:       acct,
	})
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	number := chi.URLParam(r, "number")
	if err := h.ledger.SetActive(r.Context(), number, req.Active); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	h.getAccount(w, r)
}

func (h *handlers) deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledger.Deposit)
}

func (h *handlers) withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledger.Withdraw)
}

func (h *handlers) movement(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, number string, amount decimal.Decimal, remarks string) (*ledger.Transaction, error)) {
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := apply(r.Context(), chi.URLParam(r, "number"), req.Amount, req.Remarks)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, transactionResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Transaction:   t,
	})
}

func (h *handlers) statement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.ledger.Policy().Location()
	from, err := parseInstant(q.Get("from"), loc)
	if err != nil {
		security.WriteJSONErrorReason(w, r, http.StatusBadRequest, "invalid_request", "from: "+err.Error())
		return
	}
	to, err := parseInstant(q.Get("to"), loc)
	if err != nil {
		security.WriteJSONErrorReason(w, r, http.StatusBadRequest, "invalid_request", "to: "+err.Error())
		return
	}
	// A bare end date covers that whole day.
	if len(q.Get("to")) == len(dateLayout) {
		to = to.AddDate(0, 0, 1)
	}

	st, err := h.ledger.Statement(r.Context(), chi.URLParam(r, "number"), from, to)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, statementResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Statement:     st,
	})
}

func (h *handlers) recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxRecentLimit {
			security.WriteJSONErrorReason(w, r, http.StatusBadRequest, "invalid_request", "limit must be between 1 and "+strconv.Itoa(maxRecentLimit))
			return
		}
		limit = n
	}
	rows, err := h.ledger.Recent(r.Context(), chi.URLParam(r, "number"), limit)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*ledger.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, transactionsResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Transactions:  rows,
	})
}

func (h *handlers) limits(w http.ResponseWriter, r *http.Request) {
	policy := h.ledger.Policy()
	date := time.Now().In(policy.Location())
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, policy.Location())
		if err != nil {
			security.WriteJSONErrorReason(w, r, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	check, err := h.ledger.Limits(r.Context(), chi.URLParam(r, "number"), date)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, limitsResponse{
		CorrelationID:  security.CorrelationIDFromContext(r.Context()),
		Date:           date.Format(dateLayout),
		Limits:         check,
		TransferLimits: transferLimits(policy),
	})
}

func transferLimits(policy *ledger.LimitPolicy) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(interbankMethods))
	for _, m := range interbankMethods {
		if limit, ok := policy.TransferLimit(m); ok {
			out[string(m)] = limit
		}
	}
	return out
}

func (h *handlers) transfer(w http.ResponseWriter, r *http.Request) {
	h.submitTransfer(w, r, h.ledger.Transfer)
}

func (h *handlers) submitPending(w http.ResponseWriter, r *http.Request) {
	h.submitTransfer(w, r, h.ledger.SubmitPending)
}

func (h *handlers) submitTransfer(w http.ResponseWriter, r *http.Request,
	submit func(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := submit(r.Context(), ledger.TransferRequest{
		From:       req.From,
		To:         req.To,
		Amount:     req.Amount,
		Method:     req.Method,
		Remarks:    req.Remarks,
		CustomerID: r.Header.Get(CustomerIDHeader),
	})
	if err != nil {
		h.logger.Error("transfer_error", "cid", security.CorrelationIDFromContext(r.Context()), "code", res.Code, "error", err)
	}
	writeJSON(w, r, statusForCode(res), transferResponse{
		CorrelationID:  security.CorrelationIDFromContext(r.Context()),
		TransferResult: res,
	})
}

// statusForCode maps a transfer outcome to its HTTP status.
func statusForCode(res *ledger.TransferResult) int {
	switch res.Code {
	case ledger.CodeSuccess:
		return http.StatusCreated
	case ledger.CodeValidationFailed, ledger.CodeInvalidAmountForMethod,
		ledger.CodeInvalidTransferMethod, ledger.CodeDailyLimitExceeded:
		return http.StatusUnprocessableEntity
	case ledger.CodeTransferFailed:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *handlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.ledger.Transaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transactionResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Transaction:   t,
	})
}

func (h *handlers) reverse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	rev, err := h.ledger.ReverseTransaction(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, transactionResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Transaction:   rev,
	})
}

// highValue lists journal rows at or above min, defaulting to the approval
// threshold.
func (h *handlers) highValue(w http.ResponseWriter, r *http.Request) {
	threshold := ledger.ApprovalThreshold
	if v := r.URL.Query().Get("min"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			security.WriteJSONErrorReason(w, r, http.StatusBadRequest, "invalid_request", "min must be a positive amount")
			return
		}
		threshold = d
	}
	rows, err := h.ledger.HighValue(r.Context(), threshold)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*ledger.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, highValueResponse{
		CorrelationID: security.CorrelationIDFromContext(r.Context()),
		Threshold:     threshold,
		Transactions:  rows,
	})
}

func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.CancelTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	h.getTransaction(w, r)
}

func (h *handlers) remarks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Remarks string `json:"remarks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ledger.AddRemarks(r.Context(), chi.URLParam(r, "id"), req.Remarks); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	h.getTransaction(w, r)
}

// writeLedgerError maps ledger errors onto HTTP. Anything unrecognised is an
// infrastructure failure and is logged.
func (h *handlers) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		security.WriteJSONErrorReason(w, r, http.StatusUnprocessableEntity, "validation_failed", ve.Reason)
	case errors.Is(err, ledger.ErrNotFound):
		security.WriteJSONErrorReason(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		security.WriteJSONErrorReason(w, r, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, ledger.ErrInactive):
		security.WriteJSONErrorReason(w, r, http.StatusUnprocessableEntity, "account_inactive", err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount):
		security.WriteJSONErrorReason(w, r, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition):
		security.WriteJSONErrorReason(w, r, http.StatusConflict, "invalid_transition", err.Error())
	default:
		h.logger.Error("ledger_request_failed",
			"cid", security.CorrelationIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		security.WriteJSONError(w, r, http.StatusServiceUnavailable, "ledger_unavailable")
	}
}

// parseInstant accepts RFC 3339 timestamps or bare dates, read as midnight in loc.
func parseInstant(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, errors.New("must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}
