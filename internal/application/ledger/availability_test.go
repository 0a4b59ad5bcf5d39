package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
)

func TestAvailability_PedidoAFuturoSoloAdvierte(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "30", day(1))

	// Hoy es el día 1; el pedido es para el día 5 y no hay fila: se proyecta el cierre del día 1.
	report, err := f.checker.Check(context.Background(), day(5), day(1), []ledger.AvailabilityItem{
		{ProductID: productBulk, Quantity: dec("50")},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.ValidationFutureDate, report.ValidationType)
	require.Len(t, report.Items, 1)
	it := report.Items[0]
	assert.Equal(t, inventory.AvailabilityInsufficient, it.Status)
	requireDec(t, "30", it.Available)
	requireDec(t, "20", it.Shortage)
	assert.False(t, report.ShouldBlock)

	_, err = f.queries.GetRow(context.Background(), productBulk, day(5))
	assert.ErrorIs(t, err, domain.ErrNotFound, "la verificación no crea filas")
}

func TestAvailability_MismoDiaBloquea(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "30", day(1))

	report, err := f.checker.Check(context.Background(), day(1), day(1), []ledger.AvailabilityItem{
		{ProductID: productBulk, Quantity: dec("20")},
		{ProductID: productRetail, Quantity: dec("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.ValidationSameDay, report.ValidationType)
	assert.Equal(t, inventory.AvailabilitySufficient, report.Items[0].Status)
	assert.Equal(t, inventory.AvailabilityOutOfStock, report.Items[1].Status)
	assert.True(t, report.ShouldBlock)
}

func TestAvailability_LineasRepetidasSeSuman(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "30", day(1))
	min := dec("5")
	_, err := f.recorder.SetThresholds(context.Background(), ledger.ThresholdInput{
		ProductID: productBulk, BusinessDate: day(1), Minimum: &min, UserID: testUserID,
	})
	require.NoError(t, err)

	report, err := f.checker.Check(context.Background(), day(1), day(1), []ledger.AvailabilityItem{
		{ProductID: productBulk, Quantity: dec("15")},
		{ProductID: productBulk, Quantity: dec("10")},
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	requireDec(t, "25", report.Items[0].Requested)
	assert.Equal(t, inventory.AvailabilityLowStock, report.Items[0].Status)
	assert.False(t, report.ShouldBlock)
}

func TestAvailability_FechaPasadaEsInformativa(t *testing.T) {
	f := newFixture(t)
	report, err := f.checker.Check(context.Background(), day(1), day(3), []ledger.AvailabilityItem{
		{ProductID: productBulk, Quantity: dec("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, inventory.ValidationPastDate, report.ValidationType)
	assert.Equal(t, inventory.AvailabilityOutOfStock, report.Items[0].Status)
	assert.False(t, report.ShouldBlock)

	_, err = f.checker.Check(context.Background(), day(1), day(1), []ledger.AvailabilityItem{
		{ProductID: productBulk, Quantity: dec("0")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
