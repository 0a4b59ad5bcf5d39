package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ledger-api/internal/domain/inventory"
)

func TestValidationTypeFor(t *testing.T) {
	today := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, inventory.ValidationSameDay, inventory.ValidationTypeFor(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), today),
		"la hora no cambia el día calendario")
	assert.Equal(t, inventory.ValidationFutureDate, inventory.ValidationTypeFor(today.AddDate(0, 0, 1), today))
	assert.Equal(t, inventory.ValidationPastDate, inventory.ValidationTypeFor(today.AddDate(0, 0, -1), today))
}

func TestClassifyAvailability(t *testing.T) {
	min := d("10")
	cases := []struct {
		name      string
		projected string
		requested string
		minimum   *decimal.Decimal
		want      string
	}{
		{"sin stock", "0", "1", nil, inventory.AvailabilityOutOfStock},
		{"cierre negativo", "-3", "1", nil, inventory.AvailabilityOutOfStock},
		{"insuficiente", "30", "50", nil, inventory.AvailabilityInsufficient},
		{"exacto sin mínimo", "50", "50", nil, inventory.AvailabilitySufficient},
		{"deja bajo el mínimo", "50", "45", &min, inventory.AvailabilityLowStock},
		{"deja justo el mínimo", "50", "40", &min, inventory.AvailabilityLowStock},
		{"holgado", "50", "10", &min, inventory.AvailabilitySufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.ClassifyAvailability(d(tc.projected), d(tc.requested), tc.minimum)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShouldBlock_SoloMismoDia(t *testing.T) {
	short := []string{inventory.AvailabilitySufficient, inventory.AvailabilityInsufficient}
	empty := []string{inventory.AvailabilityOutOfStock}
	ok := []string{inventory.AvailabilitySufficient, inventory.AvailabilityLowStock}

	assert.True(t, inventory.ShouldBlock(inventory.ValidationSameDay, short))
	assert.True(t, inventory.ShouldBlock(inventory.ValidationSameDay, empty))
	assert.False(t, inventory.ShouldBlock(inventory.ValidationSameDay, ok))
	assert.False(t, inventory.ShouldBlock(inventory.ValidationFutureDate, short), "a futuro solo advierte")
	assert.False(t, inventory.ShouldBlock(inventory.ValidationPastDate, empty), "el pasado es informativo")
}
