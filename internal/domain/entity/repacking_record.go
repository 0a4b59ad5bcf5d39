package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepackingRecord empareja origen y destino de una conversión (granel -> detal, etc.).
type RepackingRecord struct {
	ID                     int64
	RepackingNumber        string
	BusinessDate           time.Time
	SourceProductID        int64
	SourceQuantity         decimal.Decimal
	TargetProductID        int64
	TargetQuantity         decimal.Decimal
	ConversionRatio        decimal.Decimal
	ExpectedTargetQuantity decimal.Decimal
	LossQuantity           decimal.Decimal
	LossPercentage         decimal.Decimal
	RepackOutTransactionID *int64
	RepackInTransactionID  *int64
	Notes                  string
	CreatedBy              int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
