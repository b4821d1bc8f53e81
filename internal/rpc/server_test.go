package rpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	ledgerv1 "github.com/example/retail-ledger/api/gen/ledger/v1"
	"github.com/example/retail-ledger/internal/ids"
	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/pkg/audit"
)

type auditSpy struct {
	mu     sync.Mutex
	events []string
}

func (a *auditSpy) AppendEvent(event string, _ any) (*audit.LogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return &audit.LogEntry{Event: event}, nil
}

func (a *auditSpy) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

type fixture struct {
	svc    *ledger.Service
	client *Client
	pb     ledgerv1.LedgerClient
	audit  *auditSpy
	srv    *grpc.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := ledger.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	alloc, err := ids.New(5)
	require.NoError(t, err)
	svc, err := ledger.NewSQLService(store, ledger.NewLimitPolicy(store, time.UTC, ledger.AggregateDebitSide), alloc, ledger.Dependencies{})
	require.NoError(t, err)

	spy := &auditSpy{}
	srv := NewServer(svc, Options{Auditor: spy, Reflection: true})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(ctx, "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{svc: svc, client: NewClient(conn), pb: ledgerv1.NewLedgerClient(conn), audit: spy, srv: srv}
}

func (f *fixture) open(t *testing.T, deposit int64) *ledger.Account {
	t.Helper()
	acct, _, err := f.svc.OpenAccount(context.Background(), ledger.OpenAccountRequest{
		OwnerID: "CUST-1", Type: "SAVINGS", InitialDeposit: decimal.NewFromInt(deposit),
	})
	require.NoError(t, err)
	return acct
}

func TestTransferOverGRPC(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.open(t, 10_000)
	b := f.open(t, 2_000)

	var header metadata.MD
	ctx = metadata.AppendToOutgoingContext(ctx, correlationIDKey, "trace-42")
	res, err := f.client.Transfer(ctx, ledger.TransferRequest{
		From: a.Number, To: b.Number, Amount: decimal.NewFromInt(500), Method: "NEFT",
	}, grpc.Header(&header))
	require.NoError(t, err)
	require.Equal(t, ledger.CodeSuccess, res.Code, res.Reason)
	require.Len(t, res.TransactionIDs, 2)
	assert.Equal(t, []string{"trace-42"}, header.Get(correlationIDKey))

	bal, err := f.client.Balance(ctx, b.Number)
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(decimal.NewFromInt(2_500)), bal.Balance.String())
	assert.True(t, bal.Available.Equal(decimal.NewFromInt(1_500)))

	row, err := f.client.Transaction(ctx, res.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, ledger.KindDebit, row.Kind)
	assert.Equal(t, res.RefNo, row.RefNo)

	// Business rejections travel in the result, not as an RPC error.
	res, err = f.client.Transfer(ctx, ledger.TransferRequest{
		From: a.Number, To: b.Number, Amount: decimal.NewFromInt(9_000), Method: "NEFT",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.CodeValidationFailed, res.Code)

	// The gateway's customer metadata wins over the body field.
	other := metadata.AppendToOutgoingContext(context.Background(), customerIDKey, "CUST-2")
	res, err = f.client.Transfer(other, ledger.TransferRequest{
		From: a.Number, To: b.Number, Amount: decimal.NewFromInt(10), Method: "NEFT", CustomerID: "CUST-1",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.CodeValidationFailed, res.Code)
	assert.Contains(t, res.Reason, "CUST-2")

	assert.Equal(t, 3, f.audit.count(), "only mutating calls are audited")
}

func TestReverseAndCancelOverGRPC(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.open(t, 10_000)
	b := f.open(t, 2_000)

	res, err := f.client.Transfer(ctx, ledger.TransferRequest{
		From: a.Number, To: b.Number, Amount: decimal.NewFromInt(700), Method: "IMPS",
	})
	require.NoError(t, err)
	require.True(t, res.OK())

	rev, err := f.client.ReverseTransaction(ctx, res.TransactionIDs[0], "duplicate payment")
	require.NoError(t, err)
	assert.Equal(t, ledger.KindReversal, rev.Kind)

	bal, err := f.client.Balance(ctx, a.Number)
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(decimal.NewFromInt(10_000)))

	_, err = f.client.ReverseTransaction(ctx, res.TransactionIDs[0], "again")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = f.client.CancelTransaction(ctx, res.TransactionIDs[1])
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	pending, err := f.svc.SubmitPending(ctx, ledger.TransferRequest{
		From: a.Number, To: b.Number, Amount: decimal.NewFromInt(50), Method: "NEFT",
	})
	require.NoError(t, err)
	require.True(t, pending.OK(), pending.Reason)

	cancelled, err := f.client.CancelTransaction(ctx, pending.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCancelled, cancelled.Status)
}

func TestErrorCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Balance(ctx, "123400000000")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.client.Balance(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.ReverseTransaction(ctx, "TXN1", "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.Transaction(ctx, "TXNMISSING")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGeneratedClientSpeaksProtobuf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.open(t, 10_000)
	b := f.open(t, 2_000)

	res, err := f.pb.Transfer(ctx, &ledgerv1.TransferRequest{
		From: a.Number, To: b.Number, Amount: "1250.50", Method: "IMPS",
	})
	require.NoError(t, err)
	require.Equal(t, string(ledger.CodeSuccess), res.GetCode(), res.GetReason())
	assert.Equal(t, "8749.50", res.GetFromBalance())
	assert.Equal(t, "1250.50", res.GetLimits().GetDailyUsed())

	txn, err := f.pb.GetTransaction(ctx, &ledgerv1.GetTransactionRequest{Id: res.GetTransactionIds()[1]})
	require.NoError(t, err)
	assert.Equal(t, "CREDIT", txn.GetTransaction().GetKind())
	assert.Equal(t, "1250.50", txn.GetTransaction().GetAmount())
	_, err = time.Parse(time.RFC3339Nano, txn.GetTransaction().GetOccurredAt())
	assert.NoError(t, err)

	_, err = f.pb.Transfer(ctx, &ledgerv1.TransferRequest{From: a.Number, To: b.Number, Amount: "lots", Method: "IMPS"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServiceIsDiscoverable(t *testing.T) {
	f := newFixture(t)

	desc, err := protoregistry.GlobalFiles.FindDescriptorByName("ledger.v1.Ledger")
	require.NoError(t, err)
	svc, ok := desc.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	assert.Equal(t, 5, svc.Methods().Len())
	assert.Equal(t, protoreflect.FullName("ledger.v1.TransferResponse"), svc.Methods().ByName("Transfer").Output().FullName())

	info := f.srv.GetServiceInfo()
	assert.Contains(t, info, "ledger.v1.Ledger")
	assert.Contains(t, info, "grpc.reflection.v1alpha.ServerReflection")
}
