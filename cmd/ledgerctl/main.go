// Command ledgerctl talks to the ledger gRPC service.
//
//	ledgerctl [-addr host:port] balance NUMBER
//	ledgerctl transfer FROM TO AMOUNT METHOD [REMARKS]
//	ledgerctl txn ID
//	ledgerctl reverse ID REASON
//	ledgerctl cancel ID
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/retail-ledger/internal/ledger"
	"github.com/example/retail-ledger/internal/rpc"
	"github.com/example/retail-ledger/internal/security"
)

var errUsage = errors.New("usage: ledgerctl [-addr host:port] balance|transfer|txn|reverse|cancel ...")

func main() {
	addr := flag.String("addr", envOr("GRPC_ADDR", "localhost:50051"), "ledger gRPC address")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	if err := run(*addr, *timeout, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(addr string, timeout time.Duration, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	var tlsCfg *tls.Config
	if ca := os.Getenv("TLS_CA_FILE"); ca != "" {
		var err error
		tlsCfg, err = security.LoadClientTLSConfig(security.TLSConfig{
			CertFile: os.Getenv("TLS_CLIENT_CERT_FILE"),
			KeyFile:  os.Getenv("TLS_CLIENT_KEY_FILE"),
			CAFile:   ca,
		})
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := rpc.Dial(ctx, addr, tlsCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()
	client := rpc.NewClient(conn)

	var out any
	switch cmd, rest := args[0], args[1:]; cmd {
	case "balance":
		if len(rest) != 1 {
			return errUsage
		}
		out, err = client.Balance(ctx, rest[0])
	case "transfer":
		if len(rest) < 4 {
			return errUsage
		}
		amount, perr := decimal.NewFromString(rest[2])
		if perr != nil {
			return fmt.Errorf("invalid amount %q: %w", rest[2], perr)
		}
		req := ledger.TransferRequest{From: rest[0], To: rest[1], Amount: amount, Method: rest[3]}
		if len(rest) > 4 {
			req.Remarks = rest[4]
		}
		out, err = client.Transfer(ctx, req)
	case "txn":
		if len(rest) != 1 {
			return errUsage
		}
		out, err = client.Transaction(ctx, rest[0])
	case "reverse":
		if len(rest) != 2 {
			return errUsage
		}
		out, err = client.ReverseTransaction(ctx, rest[0], rest[1])
	case "cancel":
		if len(rest) != 1 {
			return errUsage
		}
		out, err = client.CancelTransaction(ctx, rest[0])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
