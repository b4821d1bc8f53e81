package rpc

import (
	"context"
	"crypto/tls"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	ledgerv1 "github.com/example/retail-ledger/api/gen/ledger/v1"
	"github.com/example/retail-ledger/internal/ledger"
)

// Client calls the ledger service and decodes responses into ledger types.
type Client struct {
	pb ledgerv1.LedgerClient
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{pb: ledgerv1.NewLedgerClient(cc)}
}

// Dial connects to addr, over TLS when tlsCfg is set.
func Dial(ctx context.Context, addr string, tlsCfg *tls.Config) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if tlsCfg != nil {
		creds = credentials.NewTLS(tlsCfg)
	}
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(creds))
}

func (c *Client) Transfer(ctx context.Context, req ledger.TransferRequest, opts ...grpc.CallOption) (*ledger.TransferResult, error) {
	out, err := c.pb.Transfer(ctx, transferRequestToProto(req), opts...)
	if err != nil {
		return nil, err
	}
	return transferResultFromProto(out)
}

func (c *Client) ReverseTransaction(ctx context.Context, id, reason string, opts ...grpc.CallOption) (*ledger.Transaction, error) {
	out, err := c.pb.ReverseTransaction(ctx, &ledgerv1.ReverseTransactionRequest{Id: id, Reason: reason}, opts...)
	if err != nil {
		return nil, err
	}
	return transactionFromProto(out.GetTransaction())
}

func (c *Client) CancelTransaction(ctx context.Context, id string, opts ...grpc.CallOption) (*ledger.Transaction, error) {
	out, err := c.pb.CancelTransaction(ctx, &ledgerv1.CancelTransactionRequest{Id: id}, opts...)
	if err != nil {
		return nil, err
	}
	return transactionFromProto(out.GetTransaction())
}

func (c *Client) Balance(ctx context.Context, number string, opts ...grpc.CallOption) (*Balance, error) {
	out, err := c.pb.GetBalance(ctx, &ledgerv1.GetBalanceRequest{Number: number}, opts...)
	if err != nil {
		return nil, err
	}
	return balanceFromProto(out)
}

func (c *Client) Transaction(ctx context.Context, id string, opts ...grpc.CallOption) (*ledger.Transaction, error) {
	out, err := c.pb.GetTransaction(ctx, &ledgerv1.GetTransactionRequest{Id: id}, opts...)
	if err != nil {
		return nil, err
	}
	return transactionFromProto(out.GetTransaction())
}
