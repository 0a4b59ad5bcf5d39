package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Errores de dominio del libro diario de inventario.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidOperation  = errors.New("operación inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnauthorized      = errors.New("no autorizado")
)

// InsufficientStockError detalla el faltante de una operación rechazada.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID    int64
	BusinessDate time.Time
	Requested    decimal.Decimal
	Available    decimal.Decimal
	Shortage     decimal.Decimal
}

// NewInsufficientStockError calcula el faltante (requested - available, nunca negativo).
func NewInsufficientStockError(productID int64, date time.Time, requested, available decimal.Decimal) *InsufficientStockError {
	shortage := requested.Sub(available)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	return &InsufficientStockError{
		ProductID:    productID,
		BusinessDate: date,
		Requested:    requested,
		Available:    available,
		Shortage:     shortage,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: producto %d fecha %s solicitado %s disponible %s faltante %s",
		ErrInsufficientStock.Error(), e.ProductID, e.BusinessDate.Format("2006-01-02"),
		e.Requested.String(), e.Available.String(), e.Shortage.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Invalid envuelve ErrInvalidOperation con un detalle legible.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}
