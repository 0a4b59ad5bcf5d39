package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/jhoicas/ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testUser int64 = 7

func day(n int) time.Time {
	return time.Date(2026, time.October, n, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestPool levanta PostgreSQL en un contenedor, aplica migraciones y devuelve el pool.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker: se omite con -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	version, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, StatementTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, code string) int64 {
	t.Helper()
	p := &entity.Product{Code: code, Name: "Producto " + code, Category: "bulk", IsActive: true}
	require.NoError(t, postgres.NewProductRepository(pool).Upsert(context.Background(), p))
	return p.ID
}

func newRecorder(pool *pgxpool.Pool) *ledger.TransactionRecorder {
	return ledger.NewTransactionRecorder(postgres.NewTxRunner(pool), postgres.NewProductRepository(pool), zerolog.Nop())
}

func getRow(t *testing.T, pool *pgxpool.Pool, productID int64, date time.Time) *entity.LedgerRow {
	t.Helper()
	row, err := postgres.NewLedgerRepository(pool).Get(context.Background(), productID, date)
	require.NoError(t, err)
	require.NotNil(t, row)
	return row
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests contra PostgreSQL real
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_ProduccionVentaYRetroactivo(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	rec := newRecorder(pool)
	productID := seedProduct(t, pool, "QSO-001")

	res, err := rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: productID, Quantity: dec("100"), BatchNumber: "L-01", BusinessDate: day(1), UserID: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "TRX-20261001-0001", res.Transaction.TransactionNumber)
	assert.True(t, dec("100").Equal(res.Transaction.BalanceAfter))

	_, err = rec.RecordSale(ctx, ledger.SaleInput{
		ProductID: productID, Quantity: dec("30"), OrderID: 501, InvoiceDate: day(2), UserID: testUser,
	})
	require.NoError(t, err)

	row2 := getRow(t, pool, productID, day(2))
	assert.True(t, dec("100").Equal(row2.OpeningStock), "el día 2 se siembra con el cierre del día 1")
	assert.True(t, dec("70").Equal(row2.ClosingStock), "closing_stock generado por la base")

	// Producción retroactiva en el día 1: el día 2 debe desplazarse.
	_, err = rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: productID, Quantity: dec("10"), BusinessDate: day(1), UserID: testUser,
	})
	require.NoError(t, err)
	row2 = getRow(t, pool, productID, day(2))
	assert.True(t, dec("110").Equal(row2.OpeningStock))
	assert.True(t, dec("80").Equal(row2.ClosingStock))

	net, err := postgres.NewTransactionRepository(pool).NetSaleQuantity(ctx, 501, productID, day(2))
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(net))
}

func TestPostgres_VentaInsuficienteNoEscribe(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	rec := newRecorder(pool)
	productID := seedProduct(t, pool, "QSO-002")

	_, err := rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: productID, Quantity: dec("5"), BusinessDate: day(3), UserID: testUser,
	})
	require.NoError(t, err)

	_, err = rec.RecordSale(ctx, ledger.SaleInput{
		ProductID: productID, Quantity: dec("6"), OrderID: 9, InvoiceDate: day(3), UserID: testUser,
	})
	require.Error(t, err)

	row := getRow(t, pool, productID, day(3))
	assert.True(t, row.ReservedOut.IsZero())
	list, err := postgres.NewTransactionRepository(pool).List(ctx, repository.TransactionFilter{ProductID: &productID, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, list, 1, "solo la producción queda registrada")
}

func TestPostgres_VentasConcurrentesConsecutivosUnicos(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	rec := newRecorder(pool)
	productID := seedProduct(t, pool, "QSO-003")

	_, err := rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: productID, Quantity: dec("50"), BusinessDate: day(5), UserID: testUser,
	})
	require.NoError(t, err)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(order int64) {
			defer wg.Done()
			res, err := rec.RecordSale(ctx, ledger.SaleInput{
				ProductID: productID, Quantity: dec("5"), OrderID: order, InvoiceDate: day(5), UserID: testUser,
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[res.Transaction.TransactionNumber] = true
			mu.Unlock()
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Len(t, numbers, workers, "cada venta recibe un número distinto")
	row := getRow(t, pool, productID, day(5))
	assert.True(t, dec("50").Equal(row.ReservedOut))
	assert.True(t, row.ClosingStock.IsZero())
}

func TestPostgres_TransaccionesSoloInsercion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	rec := newRecorder(pool)
	productID := seedProduct(t, pool, "QSO-004")

	res, err := rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: productID, Quantity: dec("1"), BusinessDate: day(6), UserID: testUser,
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE ledger_transactions SET quantity = 2 WHERE id = $1`, res.Transaction.ID)
	assert.Error(t, err, "el trigger debe rechazar UPDATE")
	_, err = pool.Exec(ctx, `DELETE FROM ledger_transactions WHERE id = $1`, res.Transaction.ID)
	assert.Error(t, err, "el trigger debe rechazar DELETE")
}

func TestPostgres_ReempaqueYMuestra(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	rec := newRecorder(pool)
	bulk := seedProduct(t, pool, "GRA-001")
	retail := seedProduct(t, pool, "DET-001")

	_, err := rec.RecordProduction(ctx, ledger.ProductionInput{
		ProductID: bulk, Quantity: dec("40"), BusinessDate: day(7), UserID: testUser,
	})
	require.NoError(t, err)

	res, err := rec.RecordRepacking(ctx, ledger.RepackingInput{
		SourceProductID: bulk, SourceQuantity: dec("10"),
		TargetProductID: retail, TargetQuantity: dec("38"),
		BusinessDate: day(7), UserID: testUser,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Repacking)
	assert.Equal(t, "RPK-20261007-0001", res.Repacking.RepackingNumber)

	stored, err := postgres.NewRepackingRepository(pool).GetByID(ctx, res.Repacking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RepackOutTransactionID)
	require.NotNil(t, stored.RepackInTransactionID)

	sample, err := rec.RecordSampleOut(ctx, ledger.SampleOutInput{
		ProductID: retail, Quantity: dec("2"), Recipient: "Tienda Centro", BusinessDate: day(7), UserID: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "SMP-20261007-0001", sample.Sample.SampleNumber)

	assert.True(t, dec("30").Equal(getRow(t, pool, bulk, day(7)).ClosingStock))
	assert.True(t, dec("36").Equal(getRow(t, pool, retail, day(7)).ClosingStock))
}
