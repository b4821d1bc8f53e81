package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/internal/security"
	"github.com/example/retail-ledger/pkg/audit"
)

type Auditor interface {
	AppendEvent(event string, v any) (*audit.LogEntry, error)
}

// Ledger is the part of the ledger service the HTTP gateway drives.
type Ledger interface {
	OpenAccount(ctx context.Context, req ledger.OpenAccountRequest) (*ledger.Account, *ledger.Transaction, error)
	Account(ctx context.Context, number string) (*ledger.Account, error)
	SetActive(ctx context.Context, number string, active bool) error
	Deposit(ctx context.Context, number string, amount decimal.Decimal, remarks string) (*ledger.Transaction, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal, remarks string) (*ledger.Transaction, error)
	Statement(ctx context.Context, number string, from, to time.Time) (*ledger.Statement, error)
	Recent(ctx context.Context, number string, limit int) ([]*ledger.Transaction, error)
	Limits(ctx context.Context, number string, date time.Time) (*ledger.LimitCheck, error)
	AccountBelongsTo(ctx context.Context, number, customerID string) (bool, error)
	Policy() *ledger.LimitPolicy

	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
	SubmitPending(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)

	Transaction(ctx context.Context, id string) (*ledger.Transaction, error)
	ReverseTransaction(ctx context.Context, id, reason string) (*ledger.Transaction, error)
	CancelTransaction(ctx context.Context, id string) error
	AddRemarks(ctx context.Context, id, remarks string) error
	HighValue(ctx context.Context, threshold decimal.Decimal) ([]*ledger.Transaction, error)
}

type Dependencies struct {
	Logger *slog.Logger
	Ledger Ledger

	Auditor     Auditor
	RateLimiter *security.RedisTokenBucket
	// AdminAllowlist restricts account status changes, reversals and reports.
	AdminAllowlist []netip.Prefix
	MaxBodyBytes   int64
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

var (
	openAccountV = security.MustJSONSchemaValidator("open_account", openAccountSchema)
	movementV    = security.MustJSONSchemaValidator("movement", movementSchema)
	transferV    = security.MustJSONSchemaValidator("transfer", transferSchema)
	statusV      = security.MustJSONSchemaValidator("account_status", accountStatusSchema)
	reverseV     = security.MustJSONSchemaValidator("reverse", reverseSchema)
	remarksV     = security.MustJSONSchemaValidator("remarks", remarksSchema)
)

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handlers{ledger: deps.Ledger, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	if deps.RateLimiter != nil {
		r.Use(security.RateLimitMiddleware(deps.RateLimiter, security.KeyByIP))
	}
	if deps.Auditor != nil {
		r.Use(AuditMiddleware(deps.Auditor))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(r.Context()); err != nil {
				deps.Logger.Warn("health_check_failed", "error", err)
				security.WriteJSONError(w, r, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	admin := security.IPAllowlist(deps.AdminAllowlist)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.With(openAccountV.Middleware).Post("/", h.openAccount)
			r.Route("/{number}", func(r chi.Router) {
				r.With(h.ownerOnly).Get("/", h.getAccount)
				r.With(admin, statusV.Middleware).Put("/status", h.setStatus)
				r.With(movementV.Middleware).Post("/deposits", h.deposit)
				r.With(movementV.Middleware).Post("/withdrawals", h.withdraw)
				r.With(h.ownerOnly).Get("/statement", h.statement)
				r.With(h.ownerOnly).Get("/transactions", h.recent)
				r.With(h.ownerOnly).Get("/limits", h.limits)
			})
		})

		r.Route("/transfers", func(r chi.Router) {
			r.With(transferV.Middleware).Post("/", h.transfer)
			r.With(transferV.Middleware).Post("/pending", h.submitPending)
		})

		r.Route("/transactions/{id}", func(r chi.Router) {
			r.Get("/", h.getTransaction)
			r.With(admin, reverseV.Middleware).Post("/reverse", h.reverse)
			r.Post("/cancel", h.cancel)
			r.With(remarksV.Middleware).Put("/remarks", h.remarks)
		})

		r.With(admin).Get("/reports/high-value", h.highValue)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}
