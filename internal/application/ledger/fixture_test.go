package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUserID     int64 = 7
	productBulk    int64 = 1 // granel
	productRetail  int64 = 2 // detal
	productPacking int64 = 3 // material de empaque
	productOff     int64 = 9 // inactivo
)

var day1 = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day1.AddDate(0, 0, n-1) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store    *memory.Store
	recorder *ledger.TransactionRecorder
	queries  *ledger.LedgerQueries
	checker  *ledger.AvailabilityChecker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(entity.Product{ID: productBulk, Code: "AR-25KG", Name: "Arroz 25 kg", Category: "granel", IsActive: true})
	store.PutProduct(entity.Product{ID: productRetail, Code: "AR-1KG", Name: "Arroz 1 kg", Category: "detal", IsActive: true})
	store.PutProduct(entity.Product{ID: productPacking, Code: "BOL-1KG", Name: "Bolsa 1 kg", Category: "material", IsActive: true})
	store.PutProduct(entity.Product{ID: productOff, Code: "OLD", Name: "Descontinuado", IsActive: false})

	recorder := ledger.NewTransactionRecorder(store, store, zerolog.Nop()).
		WithRetryPolicy(ledger.RetryPolicy{MaxAttempts: 3})
	return &fixture{
		store:    store,
		recorder: recorder,
		queries:  ledger.NewLedgerQueries(store),
		checker:  ledger.NewAvailabilityChecker(store),
	}
}

func (f *fixture) produce(t *testing.T, productID int64, qty string, date time.Time) *ledger.Result {
	t.Helper()
	res, err := f.recorder.RecordProduction(context.Background(), ledger.ProductionInput{
		ProductID: productID, Quantity: dec(qty), BatchNumber: "L-001", BusinessDate: date, UserID: testUserID,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) sell(t *testing.T, productID int64, qty string, orderID int64, date time.Time) *ledger.Result {
	t.Helper()
	res, err := f.recorder.RecordSale(context.Background(), ledger.SaleInput{
		ProductID: productID, Quantity: dec(qty), OrderID: orderID, InvoiceDate: date, UserID: testUserID,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) row(t *testing.T, productID int64, date time.Time) *entity.LedgerRow {
	t.Helper()
	row, err := f.queries.GetRow(context.Background(), productID, date)
	require.NoError(t, err)
	return row
}

// requireDec compara decimales por valor (1 == 1.000).
func requireDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got, msgAndArgs)
}
