package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
)

// RepackingInput conversión de un producto origen en un producto destino (granel -> detal, etc.).
// StandardRatio opcional: relación conocida origen/destino; sin ella se deriva de las cantidades.
type RepackingInput struct {
	SourceProductID int64
	SourceQuantity  decimal.Decimal
	TargetProductID int64
	TargetQuantity  decimal.Decimal
	StandardRatio   *decimal.Decimal
	BusinessDate    time.Time
	Notes           string
	UserID          int64
}

// RecordRepacking descuenta el origen (repack_out) y suma el destino (goods_in) en la misma unidad
// de trabajo, dejando el registro RPK con la merma calculada y sus dos transacciones.
func (r *TransactionRecorder) RecordRepacking(ctx context.Context, in RepackingInput) (*Result, error) {
	if in.SourceProductID == in.TargetProductID {
		return nil, domain.Invalid("origen y destino deben ser productos distintos")
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	var (
		calc inventory.RepackingCalculation
		err  error
	)
	if in.StandardRatio != nil {
		calc, err = inventory.CalculateRepackingWithRatio(in.SourceQuantity, in.TargetQuantity, *in.StandardRatio)
	} else {
		calc, err = inventory.CalculateRepacking(in.SourceQuantity, in.TargetQuantity)
	}
	if err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.SourceProductID); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.TargetProductID); err != nil {
		return nil, err
	}

	return r.run(ctx, "record repacking", func(repos TxRepos) (*Result, error) {
		// Orden de bloqueo ascendente por producto.
		rows := make(map[int64]*entity.LedgerRow, 2)
		ids := []int64{in.SourceProductID, in.TargetProductID}
		if ids[0] > ids[1] {
			ids[0], ids[1] = ids[1], ids[0]
		}
		for _, id := range ids {
			row, err := r.store.GetOrCreate(ctx, repos.Ledger, id, in.BusinessDate, in.UserID)
			if err != nil {
				return nil, err
			}
			rows[id] = row
		}
		src, tgt := rows[in.SourceProductID], rows[in.TargetProductID]
		if err := requireAvailable(src, in.SourceQuantity); err != nil {
			return nil, err
		}

		number, err := r.seq.Next(ctx, repos.Sequences, entity.PrefixRepacking, src.BusinessDate)
		if err != nil {
			return nil, err
		}
		rec := &entity.RepackingRecord{
			RepackingNumber:        number,
			BusinessDate:           src.BusinessDate,
			SourceProductID:        in.SourceProductID,
			SourceQuantity:         in.SourceQuantity,
			TargetProductID:        in.TargetProductID,
			TargetQuantity:         in.TargetQuantity,
			ConversionRatio:        calc.ConversionRatio,
			ExpectedTargetQuantity: calc.ExpectedTargetQuantity,
			LossQuantity:           calc.LossQuantity,
			LossPercentage:         calc.LossPercentage,
			Notes:                  strings.TrimSpace(in.Notes),
			CreatedBy:              in.UserID,
		}
		if err := repos.Repackings.Create(ctx, rec); err != nil {
			return nil, err
		}
		repackingID := rec.ID

		src, outTx, err := r.post(ctx, repos, src, posting{
			column:      entity.ColumnRepackOut,
			delta:       in.SourceQuantity,
			txType:      entity.TransactionTypeRepackOut,
			quantity:    in.SourceQuantity.Neg(),
			repackingID: &repackingID,
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		tgt, inTx, err := r.post(ctx, repos, tgt, posting{
			column:      entity.ColumnGoodsIn,
			delta:       in.TargetQuantity,
			txType:      entity.TransactionTypeRepackIn,
			quantity:    in.TargetQuantity,
			repackingID: &repackingID,
		}, in.UserID)
		if err != nil {
			return nil, err
		}

		if err := repos.Repackings.LinkTransactions(ctx, rec.ID, outTx.ID, inTx.ID); err != nil {
			return nil, err
		}
		rec.RepackOutTransactionID = &outTx.ID
		rec.RepackInTransactionID = &inTx.ID

		res := &Result{Repacking: rec}
		res.add(src, outTx)
		res.add(tgt, inTx)
		return res, nil
	})
}
