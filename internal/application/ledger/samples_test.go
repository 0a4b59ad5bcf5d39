package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

func (f *fixture) sampleOut(t *testing.T, qty string) *ledger.Result {
	t.Helper()
	res, err := f.recorder.RecordSampleOut(context.Background(), ledger.SampleOutInput{
		ProductID: productRetail, Quantity: dec(qty), Recipient: "Tienda La 14", Purpose: "degustación",
		BusinessDate: day(1), UserID: testUserID,
	})
	require.NoError(t, err)
	return res
}

func TestRecordSampleOut(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productRetail, "20", day(1))

	res := f.sampleOut(t, "5")
	requireDec(t, "5", res.Row.SampleOut)
	requireDec(t, "15", res.Row.ClosingStock)

	s := res.Sample
	require.NotNil(t, s)
	assert.Equal(t, "SMP-20261001-0001", s.SampleNumber)
	assert.Equal(t, entity.SampleStatusDistributed, s.Status)
	require.NotNil(t, s.SampleOutTransactionID)
	assert.Equal(t, res.Transaction.ID, *s.SampleOutTransactionID)
	assert.Equal(t, entity.TransactionTypeSampleOut, res.Transaction.TransactionType)
	requireDec(t, "-5", res.Transaction.Quantity)
	require.NotNil(t, res.Transaction.SampleTrackingID)
	assert.Equal(t, s.ID, *res.Transaction.SampleTrackingID)

	_, err := f.recorder.RecordSampleOut(context.Background(), ledger.SampleOutInput{
		ProductID: productRetail, Quantity: dec("1"), BusinessDate: day(1), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "destinatario requerido")
}

func TestRecordSampleReturn_EntraEnLaFechaDeDevolucion(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productRetail, "20", day(1))
	out := f.sampleOut(t, "5")

	res, err := f.recorder.RecordSampleReturn(context.Background(), ledger.SampleReturnInput{
		SampleID: out.Sample.ID, ReturnedQuantity: dec("3"), Outcome: entity.SampleOutcomeReturned,
		ReturnDate: day(3), UserID: testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SampleStatusReturned, res.Sample.Status)
	requireDec(t, "3", res.Sample.ReturnedQuantity)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, entity.TransactionTypeSampleReturn, res.Transaction.TransactionType)
	requireDec(t, "3", res.Transaction.Quantity)

	requireDec(t, "15", res.Row.OpeningStock)
	requireDec(t, "3", res.Row.GoodsIn)
	requireDec(t, "18", res.Row.ClosingStock)
	requireDec(t, "20", f.row(t, productRetail, day(1)).GoodsIn, "el día de entrega no cambia")

	_, err = f.recorder.RecordSampleReturn(context.Background(), ledger.SampleReturnInput{
		SampleID: out.Sample.ID, ReturnedQuantity: dec("1"), Outcome: entity.SampleOutcomeReturned,
		ReturnDate: day(3), UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "ya devuelta")
}

func TestRecordSampleReturn_ConsumidaCierraSinMovimiento(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productRetail, "20", day(1))
	out := f.sampleOut(t, "5")

	res, err := f.recorder.RecordSampleReturn(context.Background(), ledger.SampleReturnInput{
		SampleID: out.Sample.ID, ReturnedQuantity: dec("0"), Outcome: entity.SampleOutcomeConsumed,
		ReturnDate: day(2), UserID: testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SampleStatusClosed, res.Sample.Status)
	assert.Nil(t, res.Transaction)

	_, err = f.queries.GetRow(context.Background(), productRetail, day(2))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSampleReturn_Rechazos(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productRetail, "20", day(2))
	out, err := f.recorder.RecordSampleOut(context.Background(), ledger.SampleOutInput{
		ProductID: productRetail, Quantity: dec("5"), Recipient: "Cliente", BusinessDate: day(2), UserID: testUserID,
	})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   ledger.SampleReturnInput
		want error
	}{
		{"más de lo entregado", ledger.SampleReturnInput{SampleID: out.Sample.ID, ReturnedQuantity: dec("6"), Outcome: entity.SampleOutcomeReturned, ReturnDate: day(3)}, domain.ErrInvalidOperation},
		{"antes de la entrega", ledger.SampleReturnInput{SampleID: out.Sample.ID, ReturnedQuantity: dec("1"), Outcome: entity.SampleOutcomeReturned, ReturnDate: day(1)}, domain.ErrInvalidOperation},
		{"resultado desconocido", ledger.SampleReturnInput{SampleID: out.Sample.ID, ReturnedQuantity: dec("1"), Outcome: "olvidada", ReturnDate: day(3)}, domain.ErrInvalidOperation},
		{"muestra inexistente", ledger.SampleReturnInput{SampleID: 999, ReturnedQuantity: dec("1"), Outcome: entity.SampleOutcomeReturned, ReturnDate: day(3)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.UserID = testUserID
			_, err := f.recorder.RecordSampleReturn(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConvertSampleToSale(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productRetail, "20", day(1))
	out := f.sampleOut(t, "2")

	res, err := f.recorder.ConvertSampleToSale(context.Background(), ledger.ConvertSampleInput{
		SampleID: out.Sample.ID, OrderID: 88, UserID: testUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SampleStatusConverted, res.Sample.Status)
	require.NotNil(t, res.Sample.ConvertedOrderID)
	assert.Equal(t, int64(88), *res.Sample.ConvertedOrderID)
	requireDec(t, "18", f.row(t, productRetail, day(1)).ClosingStock, "no hay movimiento de stock")

	_, err = f.recorder.ConvertSampleToSale(context.Background(), ledger.ConvertSampleInput{
		SampleID: out.Sample.ID, OrderID: 89, UserID: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
