package inventory

import (
	"time"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tipos de validación según la fecha objetivo respecto a "hoy".
const (
	ValidationSameDay    = "SAME_DAY"
	ValidationFutureDate = "FUTURE_DATE"
	ValidationPastDate   = "PAST_DATE"
)

// Clasificación de disponibilidad por ítem.
const (
	AvailabilitySufficient   = "SUFFICIENT"
	AvailabilityLowStock     = "LOW_STOCK"
	AvailabilityInsufficient = "INSUFFICIENT"
	AvailabilityOutOfStock   = "OUT_OF_STOCK"
)

// ValidationTypeFor compara fechas calendario (ignora la hora).
func ValidationTypeFor(date, today time.Time) string {
	d, t := entity.BusinessDate(date), entity.BusinessDate(today)
	switch {
	case d.Equal(t):
		return ValidationSameDay
	case d.After(t):
		return ValidationFutureDate
	default:
		return ValidationPastDate
	}
}

// ClassifyAvailability clasifica una cantidad solicitada contra el cierre proyectado.
// LOW_STOCK: alcanza, pero lo que queda cae al mínimo o por debajo.
func ClassifyAvailability(projected, requested decimal.Decimal, minimum *decimal.Decimal) string {
	if projected.LessThanOrEqual(decimal.Zero) {
		return AvailabilityOutOfStock
	}
	if projected.LessThan(requested) {
		return AvailabilityInsufficient
	}
	if minimum != nil && projected.Sub(requested).LessThanOrEqual(*minimum) {
		return AvailabilityLowStock
	}
	return AvailabilitySufficient
}

// ShouldBlock solo bloquea el mismo día: a futuro aún puede producirse, el pasado es histórico.
func ShouldBlock(validationType string, statuses []string) bool {
	if validationType != ValidationSameDay {
		return false
	}
	for _, s := range statuses {
		if s == AvailabilityInsufficient || s == AvailabilityOutOfStock {
			return true
		}
	}
	return false
}
