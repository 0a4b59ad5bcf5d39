package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una muestra.
const (
	SampleStatusDistributed = "distributed"
	SampleStatusReturned    = "returned"
	SampleStatusClosed      = "closed"
	SampleStatusConverted   = "converted" // convertida en venta
)

// Resultados posibles al cerrar una muestra.
const (
	SampleOutcomeReturned = "returned" // vuelve al stock
	SampleOutcomeConsumed = "consumed" // consumida por el destinatario
	SampleOutcomeLost     = "lost"
)

// SampleTracking registra una entrega de muestras.
type SampleTracking struct {
	ID                        int64
	SampleNumber              string
	BusinessDate              time.Time
	ProductID                 int64
	Quantity                  decimal.Decimal
	Recipient                 string
	Purpose                   string
	Status                    string
	ReturnedQuantity          decimal.Decimal
	ReturnedAt                *time.Time
	SampleOutTransactionID    *int64
	SampleReturnTransactionID *int64
	ConvertedOrderID          *int64
	CreatedBy                 int64
	UpdatedBy                 int64
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
