package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fórmula y arrastre de saldos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordProduction_CierreCumpleFormula(t *testing.T) {
	f := newFixture(t)
	res := f.produce(t, productBulk, "100", day(1))

	row := res.Row
	requireDec(t, "0", row.OpeningStock)
	requireDec(t, "100", row.GoodsIn)
	requireDec(t, "100", row.ClosingStock)
	assert.True(t, row.ComputeClosing().Equal(row.ClosingStock))

	tx := res.Transaction
	require.NotNil(t, tx)
	assert.Equal(t, entity.TransactionTypeProductionIn, tx.TransactionType)
	assert.Equal(t, "TRX-20261001-0001", tx.TransactionNumber)
	assert.Equal(t, "L-001", tx.ProductionBatchNumber)
	requireDec(t, "100", tx.Quantity)
	requireDec(t, "100", tx.BalanceAfter)
	assert.Equal(t, entity.TransactionStatusCompleted, tx.Status)
}

func TestGetOrCreate_SiembraDesdeCierreAnterior(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))
	f.sell(t, productBulk, "30", 500, day(1))

	// Día 4 sin filas intermedias: opening = cierre del día 1.
	res := f.sell(t, productBulk, "20", 501, day(4))
	requireDec(t, "70", res.Row.OpeningStock)
	requireDec(t, "50", res.Row.ClosingStock)

	_, err := f.queries.GetRow(context.Background(), productBulk, day(2))
	assert.ErrorIs(t, err, domain.ErrNotFound, "los huecos no se rellenan")
}

func TestGetOrCreate_SinHistoriaIniciaEnCero(t *testing.T) {
	f := newFixture(t)
	_, err := f.recorder.RecordSale(context.Background(), ledger.SaleInput{
		ProductID: productRetail, Quantity: dec("1"), OrderID: 1, InvoiceDate: day(1), UserID: testUserID,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	requireDec(t, "0", insufficient.Available)
	requireDec(t, "1", insufficient.Shortage)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propagación retroactiva
// ──────────────────────────────────────────────────────────────────────────────

func TestBackdate_PropagaATodasLasFilasPosteriores(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))
	f.sell(t, productBulk, "10", 1, day(2))
	f.sell(t, productBulk, "10", 2, day(4))

	// Producción tardía registrada en el día 1.
	f.produce(t, productBulk, "25", day(1))

	d1, d2, d4 := f.row(t, productBulk, day(1)), f.row(t, productBulk, day(2)), f.row(t, productBulk, day(4))
	requireDec(t, "125", d1.ClosingStock)
	requireDec(t, "125", d2.OpeningStock)
	requireDec(t, "115", d2.ClosingStock)
	requireDec(t, "115", d4.OpeningStock, "la fila del día 4 encadena con la del día 2")
	requireDec(t, "105", d4.ClosingStock)

	_, err := f.queries.GetRow(context.Background(), productBulk, day(3))
	assert.ErrorIs(t, err, domain.ErrNotFound, "no se fabrican filas en el hueco")
}

func TestBackdate_ConsistenciaDeArrastre(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "50", day(1))
	f.sell(t, productBulk, "5", 1, day(2))
	f.sell(t, productBulk, "5", 2, day(3))
	f.sell(t, productBulk, "8", 3, day(1))

	// Movimientos sobre acumuladores encadenan cierre(D) con apertura(D+1).
	rows, err := f.queries.ListRowsByProduct(context.Background(), productBulk, day(1), day(3))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		requireDec(t, rows[i-1].ClosingStock.String(), rows[i].OpeningStock, "día %d", i+1)
	}
	requireDec(t, "42", rows[0].ClosingStock)
	requireDec(t, "37", rows[1].ClosingStock)
	requireDec(t, "32", rows[2].ClosingStock)

	// El ajuste mueve la apertura del propio día: desde ahí el arrastre queda desplazado en delta.
	_, err = f.recorder.AdjustStock(context.Background(), ledger.AdjustmentInput{
		ProductID: productBulk, BusinessDate: day(2), Delta: dec("-2"), Reason: "rotura", UserID: testUserID,
	})
	require.NoError(t, err)

	rows, err = f.queries.ListRowsByProduct(context.Background(), productBulk, day(1), day(3))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	d1, d2, d3 := rows[0], rows[1], rows[2]
	requireDec(t, "42", d1.ClosingStock, "el día anterior no cambia")
	requireDec(t, d1.ClosingStock.Add(dec("-2")).String(), d2.OpeningStock, "apertura = cierre anterior + delta")
	requireDec(t, "35", d2.ClosingStock)
	requireDec(t, d2.ClosingStock.String(), d3.OpeningStock, "después del día ajustado se encadena")
	requireDec(t, "30", d3.ClosingStock)
	requireDec(t, "5", d2.ReservedOut, "los acumuladores no cambian")
	requireDec(t, "5", d3.ReservedOut)
	requireDec(t, "0", d2.GoodsIn)
	requireDec(t, "0", d3.GoodsIn)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas y reversos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_InsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "30", day(1))

	_, err := f.recorder.RecordSale(context.Background(), ledger.SaleInput{
		ProductID: productBulk, Quantity: dec("50"), OrderID: 10, InvoiceDate: day(1), UserID: testUserID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	requireDec(t, "50", insufficient.Requested)
	requireDec(t, "30", insufficient.Available)
	requireDec(t, "20", insufficient.Shortage)

	row := f.row(t, productBulk, day(1))
	requireDec(t, "0", row.ReservedOut)
	txs, err := f.queries.ListTransactions(context.Background(), repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1, "solo la producción")
}

func TestSaleThenReversal(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))
	sale := f.sell(t, productBulk, "30", 42, day(1))
	requireDec(t, "70", sale.Row.ClosingStock)
	requireDec(t, "-30", sale.Transaction.Quantity)

	rev, err := f.recorder.ReverseSale(context.Background(), ledger.ReverseSaleInput{
		OrderID: 42, ProductID: productBulk, Quantity: dec("10"), InvoiceDate: day(1), Reason: "devolución parcial", UserID: testUserID,
	})
	require.NoError(t, err)
	requireDec(t, "20", rev.Row.ReservedOut)
	requireDec(t, "80", rev.Row.ClosingStock)
	assert.Equal(t, entity.TransactionTypeSale, rev.Transaction.TransactionType)
	assert.Equal(t, entity.TransactionStatusCancelled, rev.Transaction.Status)
	requireDec(t, "10", rev.Transaction.Quantity)
	requireDec(t, "80", rev.Transaction.BalanceAfter)

	original, err := f.queries.GetTransaction(context.Background(), sale.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, original.Status, "la venta original no cambia")

	// Solo quedan 20 sin reversar en el pedido.
	_, err = f.recorder.ReverseSale(context.Background(), ledger.ReverseSaleInput{
		OrderID: 42, ProductID: productBulk, Quantity: dec("25"), InvoiceDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestReverseSale_PedidoAjenoRechazado(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "100", day(1))
	f.sell(t, productBulk, "30", 42, day(1))

	_, err := f.recorder.ReverseSale(context.Background(), ledger.ReverseSaleInput{
		OrderID: 43, ProductID: productBulk, Quantity: dec("5"), InvoiceDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestRecord_ProductoInexistenteOInactivo(t *testing.T) {
	f := newFixture(t)
	for _, id := range []int64{404, productOff} {
		_, err := f.recorder.RecordProduction(context.Background(), ledger.ProductionInput{
			ProductID: id, Quantity: dec("1"), BusinessDate: day(1), UserID: testUserID,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound, "producto %d", id)
	}
}

func TestRecord_CantidadNoPositivaRechazada(t *testing.T) {
	f := newFixture(t)
	_, err := f.recorder.RecordProduction(context.Background(), ledger.ProductionInput{
		ProductID: productBulk, Quantity: dec("0"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = f.recorder.RecordPurchase(context.Background(), ledger.PurchaseInput{
		ProductID: productBulk, Quantity: dec("-3"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras, material y merma
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordPurchaseYMaterial(t *testing.T) {
	f := newFixture(t)
	buy, err := f.recorder.RecordPurchase(context.Background(), ledger.PurchaseInput{
		ProductID: productPacking, Quantity: dec("500"), Reference: "OC-77", BusinessDate: day(1), UserID: testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypePurchase, buy.Transaction.TransactionType)
	assert.Equal(t, "OC-77", buy.Transaction.Reason)

	use, err := f.recorder.RecordMaterialConsumption(context.Background(), ledger.MaterialConsumptionInput{
		MaterialProductID: productPacking, Quantity: dec("120"), BatchNumber: "L-9", BusinessDate: day(1), UserID: testUserID,
	})
	require.NoError(t, err)
	requireDec(t, "120", use.Row.ProductionMaterialOut)
	requireDec(t, "380", use.Row.ClosingStock)
	assert.Equal(t, entity.TransactionTypeMaterialOut, use.Transaction.TransactionType)
	requireDec(t, "-120", use.Transaction.Quantity)

	_, err = f.recorder.RecordMaterialConsumption(context.Background(), ledger.MaterialConsumptionInput{
		MaterialProductID: productPacking, Quantity: dec("381"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecordWaste_MueveOpeningYPropaga(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "40", day(1))
	f.sell(t, productBulk, "5", 1, day(2))

	res, err := f.recorder.RecordWaste(context.Background(), ledger.WasteInput{
		ProductID: productBulk, Quantity: dec("4"), Reason: "vencido", BusinessDate: day(1), UserID: testUserID,
	})
	require.NoError(t, err)
	requireDec(t, "-4", res.Row.OpeningStock)
	requireDec(t, "36", res.Row.ClosingStock)
	assert.Equal(t, entity.TransactionTypeWaste, res.Transaction.TransactionType)

	d2 := f.row(t, productBulk, day(2))
	requireDec(t, "36", d2.OpeningStock)
	requireDec(t, "31", d2.ClosingStock)

	_, err = f.recorder.RecordWaste(context.Background(), ledger.WasteInput{
		ProductID: productBulk, Quantity: dec("37"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "10", day(1))

	res, err := f.recorder.AdjustStock(context.Background(), ledger.AdjustmentInput{
		ProductID: productBulk, BusinessDate: day(1), Delta: dec("-5"), Reason: "conteo", UserID: testUserID,
	})
	require.NoError(t, err)
	requireDec(t, "-5", res.Row.OpeningStock, "el opening puede quedar negativo")
	requireDec(t, "5", res.Row.ClosingStock)
	assert.Equal(t, entity.TransactionTypeAdjustment, res.Transaction.TransactionType)
	requireDec(t, "-5", res.Transaction.Quantity)

	_, err = f.recorder.AdjustStock(context.Background(), ledger.AdjustmentInput{
		ProductID: productBulk, BusinessDate: day(1), Delta: dec("-6"), Reason: "conteo", UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.recorder.AdjustStock(context.Background(), ledger.AdjustmentInput{
		ProductID: productBulk, BusinessDate: day(1), Delta: dec("0"), Reason: "nada", UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = f.recorder.AdjustStock(context.Background(), ledger.AdjustmentInput{
		ProductID: productBulk, BusinessDate: day(1), Delta: dec("3"), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "motivo requerido")
}

func TestSetThresholds(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "20", day(1))
	min, max := dec("10"), dec("100")

	res, err := f.recorder.SetThresholds(context.Background(), ledger.ThresholdInput{
		ProductID: productBulk, BusinessDate: day(1), Minimum: &min, Maximum: &max, UserID: testUserID,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Row.MinimumStock)
	requireDec(t, "10", *res.Row.MinimumStock)
	assert.Equal(t, entity.StockStatusAvailable, res.Row.Status())
	assert.Nil(t, res.Transaction, "los umbrales no generan transacción")

	// La fila nueva hereda los umbrales.
	sale := f.sell(t, productBulk, "12", 1, day(2))
	require.NotNil(t, sale.Row.MinimumStock)
	assert.Equal(t, entity.StockStatusLowStock, sale.Row.Status())

	_, err = f.recorder.SetThresholds(context.Background(), ledger.ThresholdInput{
		ProductID: productBulk, BusinessDate: day(1), Minimum: &max, Maximum: &min, UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
