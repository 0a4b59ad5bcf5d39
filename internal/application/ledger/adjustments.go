package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// AdjustmentInput corrección manual del saldo de un día. Delta con signo.
type AdjustmentInput struct {
	ProductID    int64
	BusinessDate time.Time
	Delta        decimal.Decimal
	Reason       string
	UserID       int64
}

// AdjustStock mueve opening_stock de la fila y propaga el delta a todas las fechas posteriores.
// El opening puede quedar negativo; el cierre no.
func (r *TransactionRecorder) AdjustStock(ctx context.Context, in AdjustmentInput) (*Result, error) {
	if in.Delta.IsZero() {
		return nil, domain.Invalid("el ajuste no puede ser cero")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("motivo requerido")
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "adjust stock", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		return r.adjust(ctx, repos, row, in.Delta, reason, in.UserID)
	})
}

func (r *TransactionRecorder) adjust(ctx context.Context, repos TxRepos, row *entity.LedgerRow, delta decimal.Decimal, reason string, userID int64) (*Result, error) {
	if delta.IsNegative() {
		if err := requireAvailable(row, delta.Neg()); err != nil {
			return nil, err
		}
	}
	row, tx, err := r.post(ctx, repos, row, posting{
		delta:    delta,
		txType:   entity.TransactionTypeAdjustment,
		quantity: delta,
		reason:   reason,
	}, userID)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	res.add(row, tx)
	return res, nil
}

// WasteInput producto dañado o vencido que sale del inventario.
type WasteInput struct {
	ProductID    int64
	Quantity     decimal.Decimal
	Reason       string
	BusinessDate time.Time
	UserID       int64
}

// RecordWaste descuenta la merma del opening de la fila (mismo camino que un ajuste negativo).
func (r *TransactionRecorder) RecordWaste(ctx context.Context, in WasteInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "record waste", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		if err := requireAvailable(row, in.Quantity); err != nil {
			return nil, err
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			delta:    in.Quantity.Neg(),
			txType:   entity.TransactionTypeWaste,
			quantity: in.Quantity.Neg(),
			reason:   strings.TrimSpace(in.Reason),
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}

// ReconcileInput conteo físico de un producto en una fecha.
type ReconcileInput struct {
	ProductID    int64
	BusinessDate time.Time
	Counted      decimal.Decimal
	Reason       string
	UserID       int64
}

// ReconcileStock ajusta el cierre del día al conteo físico. Lee el cierre y ajusta en la misma
// unidad de trabajo; si ya coincide no registra transacción (Result.Transaction nil).
func (r *TransactionRecorder) ReconcileStock(ctx context.Context, in ReconcileInput) (*Result, error) {
	if in.Counted.IsNegative() {
		return nil, domain.Invalid("el conteo no puede ser negativo")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "conteo físico"
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "reconcile stock", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		delta := in.Counted.Sub(row.ClosingStock)
		if delta.IsZero() {
			res := &Result{}
			res.add(row, nil)
			return res, nil
		}
		return r.adjust(ctx, repos, row, delta, reason, in.UserID)
	})
}

// ThresholdInput umbrales de stock de una fila. nil borra el umbral.
type ThresholdInput struct {
	ProductID    int64
	BusinessDate time.Time
	Minimum      *decimal.Decimal
	Maximum      *decimal.Decimal
	UserID       int64
}

// SetThresholds fija mínimo y máximo de la fila (la crea si no existe). Las filas que se
// creen después los heredan.
func (r *TransactionRecorder) SetThresholds(ctx context.Context, in ThresholdInput) (*Result, error) {
	if in.Minimum != nil && in.Minimum.IsNegative() {
		return nil, domain.Invalid("mínimo no puede ser negativo")
	}
	if in.Maximum != nil && in.Maximum.IsNegative() {
		return nil, domain.Invalid("máximo no puede ser negativo")
	}
	if in.Minimum != nil && in.Maximum != nil && in.Minimum.GreaterThan(*in.Maximum) {
		return nil, domain.Invalid("mínimo %s mayor que máximo %s", in.Minimum, in.Maximum)
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "set thresholds", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		row, err = repos.Ledger.UpdateThresholds(ctx, row.ID, in.Minimum, in.Maximum, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, nil)
		return res, nil
	})
}
