package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
)

// AvailabilityItem línea solicitada de un pedido.
type AvailabilityItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// ItemAvailability resultado por producto.
type ItemAvailability struct {
	ProductID int64
	Requested decimal.Decimal
	Available decimal.Decimal
	Shortage  decimal.Decimal
	Minimum   *decimal.Decimal
	Status    string
}

// AvailabilityReport resultado de la verificación de un pedido para una fecha.
type AvailabilityReport struct {
	BusinessDate   time.Time
	ValidationType string
	Items          []ItemAvailability
	ShouldBlock    bool
}

// AvailabilityChecker verifica si un pedido puede despacharse en una fecha. Solo lectura.
type AvailabilityChecker struct {
	txRunner TxRunner
}

// NewAvailabilityChecker construye el verificador.
func NewAvailabilityChecker(txRunner TxRunner) *AvailabilityChecker {
	return &AvailabilityChecker{txRunner: txRunner}
}

// Check clasifica cada producto contra el cierre proyectado de date. today lo decide el llamador
// (zona horaria del negocio). Líneas repetidas del mismo producto se suman.
func (c *AvailabilityChecker) Check(ctx context.Context, date, today time.Time, items []AvailabilityItem) (*AvailabilityReport, error) {
	if date.IsZero() || today.IsZero() {
		return nil, domain.Invalid("fecha de entrega y fecha actual requeridas")
	}
	date = entity.BusinessDate(date)

	order := make([]int64, 0, len(items))
	requested := make(map[int64]decimal.Decimal, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, domain.Invalid("producto requerido")
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.Invalid("cantidad del producto %d debe ser mayor que cero", it.ProductID)
		}
		if _, ok := requested[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		requested[it.ProductID] = requested[it.ProductID].Add(it.Quantity)
	}

	report := &AvailabilityReport{
		BusinessDate:   date,
		ValidationType: inventory.ValidationTypeFor(date, today),
		Items:          make([]ItemAvailability, 0, len(order)),
	}
	err := c.txRunner.Run(ctx, func(repos TxRepos) error {
		for _, productID := range order {
			row, err := repos.Ledger.Get(ctx, productID, date)
			if err != nil {
				return err
			}
			if row == nil {
				if row, err = repos.Ledger.GetLatestBefore(ctx, productID, date); err != nil {
					return err
				}
			}
			available := decimal.Zero
			var minimum *decimal.Decimal
			if row != nil {
				available = row.ClosingStock
				minimum = row.MinimumStock
			}
			req := requested[productID]
			shortage := req.Sub(available)
			if shortage.IsNegative() {
				shortage = decimal.Zero
			}
			report.Items = append(report.Items, ItemAvailability{
				ProductID: productID,
				Requested: req,
				Available: available,
				Shortage:  shortage,
				Minimum:   minimum,
				Status:    inventory.ClassifyAvailability(available, req, minimum),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	statuses := make([]string, len(report.Items))
	for i, it := range report.Items {
		statuses[i] = it.Status
	}
	report.ShouldBlock = inventory.ShouldBlock(report.ValidationType, statuses)
	return report, nil
}
