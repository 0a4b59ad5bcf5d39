package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

func TestRecordSale_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))

	const workers = 25
	var (
		wg           sync.WaitGroup
		ok, rejected atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(order int64) {
			defer wg.Done()
			_, err := f.recorder.RecordSale(context.Background(), ledger.SaleInput{
				ProductID: productBulk, Quantity: dec("10"), OrderID: order, InvoiceDate: day(1), UserID: testUserID,
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(workers-10), rejected.Load())
	row := f.row(t, productBulk, day(1))
	requireDec(t, "0", row.ClosingStock)
	requireDec(t, "100", row.ReservedOut)
}

func TestSequence_NumerosUnicosPorDia(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(order int64) {
			defer wg.Done()
			_, err := f.recorder.RecordSale(context.Background(), ledger.SaleInput{
				ProductID: productBulk, Quantity: dec("1"), OrderID: order, InvoiceDate: day(1), UserID: testUserID,
			})
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()
	f.produce(t, productBulk, "1", day(2))

	txs, err := f.queries.ListTransactions(context.Background(), repository.TransactionFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, txs, 12)

	seen := make(map[string]bool)
	for _, tx := range txs {
		assert.False(t, seen[tx.TransactionNumber], "duplicado %s", tx.TransactionNumber)
		seen[tx.TransactionNumber] = true
	}
	assert.True(t, seen["TRX-20261001-0011"])
	assert.True(t, seen["TRX-20261002-0001"], "el consecutivo reinicia por día")
}

// conflictRunner simula colisiones de numeración en los primeros intentos.
type conflictRunner struct {
	inner     ledger.TxRunner
	conflicts int
	calls     int
	err       error
}

func (r *conflictRunner) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	r.calls++
	if r.calls <= r.conflicts {
		return r.err
	}
	return r.inner.Run(ctx, fn)
}

func TestRetry_ConflictoSeReintenta(t *testing.T) {
	f := newFixture(t)
	runner := &conflictRunner{inner: f.store, conflicts: 2, err: domain.ErrConflict}
	recorder := ledger.NewTransactionRecorder(runner, f.store, zerolog.Nop()).
		WithRetryPolicy(ledger.RetryPolicy{MaxAttempts: 3})

	res, err := recorder.RecordProduction(context.Background(), ledger.ProductionInput{
		ProductID: productBulk, Quantity: dec("5"), BusinessDate: day(1), UserID: testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, "TRX-20261001-0001", res.Transaction.TransactionNumber)
}

func TestRetry_AgotaIntentosYDevuelveConflicto(t *testing.T) {
	f := newFixture(t)
	runner := &conflictRunner{inner: f.store, conflicts: 5, err: domain.ErrConflict}
	recorder := ledger.NewTransactionRecorder(runner, f.store, zerolog.Nop()).
		WithRetryPolicy(ledger.RetryPolicy{MaxAttempts: 3})

	_, err := recorder.RecordProduction(context.Background(), ledger.ProductionInput{
		ProductID: productBulk, Quantity: dec("5"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, runner.calls)
}

func TestRetry_OtrosErroresNoSeReintentan(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("conexión perdida")
	runner := &conflictRunner{inner: f.store, conflicts: 1, err: boom}
	recorder := ledger.NewTransactionRecorder(runner, f.store, zerolog.Nop()).
		WithRetryPolicy(ledger.RetryPolicy{MaxAttempts: 3})

	_, err := recorder.RecordProduction(context.Background(), ledger.ProductionInput{
		ProductID: productBulk, Quantity: dec("5"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, runner.calls)
}
