package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// ProductionInput entrada de producción terminada.
type ProductionInput struct {
	ProductID    int64
	Quantity     decimal.Decimal
	BatchNumber  string
	BusinessDate time.Time
	UserID       int64
}

// RecordProduction suma la producción a goods_in.
func (r *TransactionRecorder) RecordProduction(ctx context.Context, in ProductionInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "record production", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnGoodsIn,
			delta:    in.Quantity,
			txType:   entity.TransactionTypeProductionIn,
			quantity: in.Quantity,
			batch:    strings.TrimSpace(in.BatchNumber),
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}

// PurchaseInput entrada de mercancía comprada.
type PurchaseInput struct {
	ProductID    int64
	Quantity     decimal.Decimal
	Reference    string
	BusinessDate time.Time
	UserID       int64
}

// RecordPurchase suma la compra a goods_in. Reference (orden de compra, remisión) queda en reason.
func (r *TransactionRecorder) RecordPurchase(ctx context.Context, in PurchaseInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "record purchase", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnGoodsIn,
			delta:    in.Quantity,
			txType:   entity.TransactionTypePurchase,
			quantity: in.Quantity,
			reason:   strings.TrimSpace(in.Reference),
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}

// MaterialConsumptionInput consumo de un material en un lote de producción.
type MaterialConsumptionInput struct {
	MaterialProductID int64
	Quantity          decimal.Decimal
	BatchNumber       string
	BusinessDate      time.Time
	UserID            int64
}

// RecordMaterialConsumption descuenta el material usado en producción (production_material_out).
func (r *TransactionRecorder) RecordMaterialConsumption(ctx context.Context, in MaterialConsumptionInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.MaterialProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "record material consumption", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.MaterialProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		if err := requireAvailable(row, in.Quantity); err != nil {
			return nil, err
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnProductionMaterialOut,
			delta:    in.Quantity,
			txType:   entity.TransactionTypeMaterialOut,
			quantity: in.Quantity.Neg(),
			batch:    strings.TrimSpace(in.BatchNumber),
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}
