package rpc

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	ledgerv1 "github.com/example/retail-ledger/api/gen/ledger/v1"
	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/internal/security"
	"github.com/example/retail-ledger/pkg/audit"
)

const (
	correlationIDKey = "x-correlation-id"
	customerIDKey    = "x-customer-id"
	maxMessageBytes  = 1 << 20
)

// Ledger is the part of the ledger service exposed over gRPC.
type Ledger interface {
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
	ReverseTransaction(ctx context.Context, id, reason string) (*ledger.Transaction, error)
	CancelTransaction(ctx context.Context, id string) error
	Account(ctx context.Context, number string) (*ledger.Account, error)
	Transaction(ctx context.Context, id string) (*ledger.Transaction, error)
}

type Auditor interface {
	AppendEvent(event string, v any) (*audit.LogEntry, error)
}

type Options struct {
	Logger  *slog.Logger
	Auditor Auditor
	// TLS enables transport security. Nil serves plaintext.
	TLS *tls.Config
	// Reflection registers the server reflection service for grpcurl and friends.
	Reflection bool
}

// NewServer builds a grpc.Server with the ledger service registered.
func NewServer(l Ledger, opts Options) *grpc.Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryInterceptor(opts.Logger, opts.Auditor)),
		grpc.MaxRecvMsgSize(maxMessageBytes),
		grpc.MaxSendMsgSize(maxMessageBytes),
	}
	if opts.TLS != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(opts.TLS)))
	}
	s := grpc.NewServer(serverOpts...)
	ledgerv1.RegisterLedgerServer(s, &Server{ledger: l, logger: opts.Logger})
	if opts.Reflection {
		reflection.Register(s)
	}
	return s
}

// Server adapts a Ledger to the generated ledgerv1.LedgerServer.
type Server struct {
	ledgerv1.UnimplementedLedgerServer
	ledger Ledger
	logger *slog.Logger
}

// Transfer runs a transfer. The x-customer-id metadata set by the gateway
// takes precedence over the customer_id field.
func (s *Server) Transfer(ctx context.Context, in *ledgerv1.TransferRequest) (*ledgerv1.TransferResponse, error) {
	req, err := transferRequestFromProto(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if cid := firstMetadata(ctx, customerIDKey); cid != "" {
		req.CustomerID = cid
	}
	res, err := s.ledger.Transfer(ctx, req)
	switch {
	case err == nil:
		return transferResultToProto(res), nil
	case res != nil && res.ManualReview:
		// The result code already tells the caller the transfer failed.
		return transferResultToProto(res), nil
	default:
		s.logger.Error("grpc_transfer_failed", "cid", security.CorrelationIDFromContext(ctx), "error", err)
		return nil, status.Error(codes.Unavailable, "ledger unavailable")
	}
}

func (s *Server) ReverseTransaction(ctx context.Context, in *ledgerv1.ReverseTransactionRequest) (*ledgerv1.TransactionResponse, error) {
	if in.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if in.GetReason() == "" {
		return nil, status.Error(codes.InvalidArgument, "reason is required")
	}
	t, err := s.ledger.ReverseTransaction(ctx, in.GetId(), in.GetReason())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ledgerv1.TransactionResponse{Transaction: transactionToProto(t)}, nil
}

func (s *Server) CancelTransaction(ctx context.Context, in *ledgerv1.CancelTransactionRequest) (*ledgerv1.TransactionResponse, error) {
	if in.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.ledger.CancelTransaction(ctx, in.GetId()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return s.GetTransaction(ctx, &ledgerv1.GetTransactionRequest{Id: in.GetId()})
}

func (s *Server) GetBalance(ctx context.Context, in *ledgerv1.GetBalanceRequest) (*ledgerv1.GetBalanceResponse, error) {
	if in.GetNumber() == "" {
		return nil, status.Error(codes.InvalidArgument, "number is required")
	}
	acct, err := s.ledger.Account(ctx, in.GetNumber())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ledgerv1.GetBalanceResponse{
		Number:    acct.Number,
		Balance:   amountString(acct.Balance),
		Available: amountString(acct.AvailableToDebit()),
		Active:    acct.Active,
	}, nil
}

func (s *Server) GetTransaction(ctx context.Context, in *ledgerv1.GetTransactionRequest) (*ledgerv1.TransactionResponse, error) {
	if in.GetId() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	t, err := s.ledger.Transaction(ctx, in.GetId())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ledgerv1.TransactionResponse{Transaction: transactionToProto(t)}, nil
}

// toStatus maps ledger errors onto gRPC codes. Unrecognised errors are logged
// and hidden behind Unavailable.
func (s *Server) toStatus(ctx context.Context, err error) error {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Reason)
	case errors.Is(err, ledger.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInactive),
		errors.Is(err, ledger.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	s.logger.Error("grpc_ledger_error", "cid", security.CorrelationIDFromContext(ctx), "error", err)
	return status.Error(codes.Unavailable, "ledger unavailable")
}

var mutating = map[string]bool{
	ledgerv1.Ledger_Transfer_FullMethodName:           true,
	ledgerv1.Ledger_ReverseTransaction_FullMethodName: true,
	ledgerv1.Ledger_CancelTransaction_FullMethodName:  true,
}

type rpcRecord struct {
	CorrelationID string `json:"correlation_id"`
	Method        string `json:"method"`
	Code          string `json:"code"`
	DurationMS    int64  `json:"duration_ms"`
}

// UnaryInterceptor propagates correlation ids, logs every call and audits the
// mutating ones.
func UnaryInterceptor(logger *slog.Logger, auditor Auditor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		cid := security.NormalizeCorrelationID(firstMetadata(ctx, correlationIDKey))
		ctx = security.WithCorrelationID(ctx, cid)
		_ = grpc.SetHeader(ctx, metadata.Pairs(correlationIDKey, cid))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		elapsed := time.Since(start)

		level := slog.LevelInfo
		switch code {
		case codes.Internal, codes.Unavailable, codes.Unknown, codes.DataLoss:
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc_request",
			"cid", cid,
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", elapsed.Milliseconds(),
		)

		if auditor != nil && mutating[info.FullMethod] {
			rec := rpcRecord{CorrelationID: cid, Method: info.FullMethod, Code: code.String(), DurationMS: elapsed.Milliseconds()}
			if _, aerr := auditor.AppendEvent("grpc.request", rec); aerr != nil {
				logger.Error("audit_append_failed", "cid", cid, "error", aerr)
			}
		}
		return resp, err
	}
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
