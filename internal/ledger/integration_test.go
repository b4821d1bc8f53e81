package ledger

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/example/retail-ledger/internal/ids"
)

// PostgresSuite runs against LEDGER_TEST_DATABASE_URL, which must point at a
// disposable database. Every test starts from empty tables.
type PostgresSuite struct {
	suite.Suite
	ctx   context.Context
	pool  *pgxpool.Pool
	store *SQLStore
	svc   *Service
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("LEDGER_TEST_DATABASE_URL") == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	store, pool, err := OpenPostgres(s.ctx, os.Getenv("LEDGER_TEST_DATABASE_URL"))
	s.Require().NoError(err)
	s.store, s.pool = store, pool
	s.Require().NoError(store.Migrate(s.ctx))

	alloc, err := ids.New(7)
	s.Require().NoError(err)
	s.svc, err = NewSQLService(store, NewLimitPolicy(store, time.UTC, AggregateDebitSide), alloc, Dependencies{})
	s.Require().NoError(err)
}

func (s *PostgresSuite) TearDownSuite() {
	_ = s.store.Close()
	s.pool.Close()
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.store.DB().ExecContext(s.ctx, `TRUNCATE transactions, transaction_refs, accounts`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) open(deposit int64) *Account {
	acct, _, err := s.svc.OpenAccount(s.ctx, OpenAccountRequest{OwnerID: "PG", Type: "SAVINGS", InitialDeposit: amt(deposit)})
	s.Require().NoError(err)
	return acct
}

func (s *PostgresSuite) TestTransferRoundTrip() {
	a := s.open(10_000)
	b := s.open(2_000)

	res, err := s.svc.Transfer(s.ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(500), Method: "NEFT"})
	s.Require().NoError(err)
	s.Require().Equal(CodeSuccess, res.Code, res.Reason)

	res, err = s.svc.Transfer(s.ctx, TransferRequest{From: a.Number, To: b.Number, Amount: amt(9_200), Method: "NEFT"})
	s.Require().NoError(err)
	s.Equal(CodeValidationFailed, res.Code)

	rows, err := s.store.ByAccount(s.ctx, a.Number, 0)
	s.Require().NoError(err)
	s.Len(rows, 3)

	rev, err := s.svc.ReverseTransaction(s.ctx, rows[0].ID, "integration")
	s.Require().NoError(err)
	s.Equal(KindReversal, rev.Kind)

	v := NewValidator(s.store, s.store)
	s.True(Valid(v.ComprehensiveValidation(s.ctx, a.Number)))
	s.True(Valid(v.ComprehensiveValidation(s.ctx, b.Number)))
}

func (s *PostgresSuite) TestConcurrentTransfersConserveMoney() {
	a := s.open(20_000)
	b := s.open(20_000)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a.Number, b.Number
			if i%2 == 1 {
				from, to = to, from
			}
			res, err := s.svc.Transfer(s.ctx, TransferRequest{From: from, To: to, Amount: amt(250), Method: "IMPS"})
			s.NoError(err)
			s.True(res.OK(), res.Reason)
		}(i)
	}
	wg.Wait()

	total, err := s.svc.TotalBalance(s.ctx)
	s.Require().NoError(err)
	assertAmount(s.T(), 40_000, total)
}

func (s *PostgresSuite) TestDuplicateReference() {
	row := &Transaction{ID: "TXNPG1", RefNo: "REFPG1", ToAccount: "123400000001", Kind: KindCredit, Method: MethodOnline, Amount: amt(5), Status: StatusCompleted}
	s.Require().NoError(s.store.Append(s.ctx, row))
	dup := *row
	dup.ID = "TXNPG2"
	s.ErrorIs(s.store.Append(s.ctx, &dup), ErrDuplicateReference)
}
