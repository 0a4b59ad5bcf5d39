package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro diario.
const (
	TransactionTypeProductionIn = "production-in"
	TransactionTypeSale         = "sale"
	TransactionTypeRepackOut    = "repack-out"
	TransactionTypeRepackIn     = "repack-in"
	TransactionTypeSampleOut    = "sample-out"
	TransactionTypeSampleReturn = "sample-return"
	TransactionTypeWaste        = "waste"
	TransactionTypeAdjustment   = "adjustment"
	TransactionTypePurchase     = "purchase"
	TransactionTypeMaterialOut  = "material-out" // consumo de material en producción
)

// Estados de transacción.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

// Prefijos de numeración por (prefijo, día).
const (
	PrefixTransaction = "TRX"
	PrefixRepacking   = "RPK"
	PrefixSample      = "SMP"
)

// ValidTransactionType indica si t es un tipo conocido.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeProductionIn, TransactionTypeSale, TransactionTypeRepackOut,
		TransactionTypeRepackIn, TransactionTypeSampleOut, TransactionTypeSampleReturn,
		TransactionTypeWaste, TransactionTypeAdjustment, TransactionTypePurchase,
		TransactionTypeMaterialOut:
		return true
	}
	return false
}

// Transaction es el registro inmutable de un movimiento.
// Quantity es con signo: positivo entra al stock, negativo sale.
// BalanceAfter es el cierre de la fila inmediatamente después del evento.
type Transaction struct {
	ID                    int64
	TransactionNumber     string
	TransactionType       string
	BusinessDate          time.Time
	ProductID             int64
	Quantity              decimal.Decimal
	BalanceAfter          decimal.Decimal
	OrderID               *int64
	RepackingID           *int64
	SampleTrackingID      *int64
	ProductionBatchNumber string
	Status                string
	Reason                string
	CreatedBy             int64
	CreatedAt             time.Time
}
