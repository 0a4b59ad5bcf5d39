package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// SampleOutInput entrega de muestras a un destinatario.
type SampleOutInput struct {
	ProductID    int64
	Quantity     decimal.Decimal
	Recipient    string
	Purpose      string
	BusinessDate time.Time
	UserID       int64
}

// RecordSampleOut descuenta la muestra (sample_out) y abre su seguimiento SMP en estado distributed.
func (r *TransactionRecorder) RecordSampleOut(ctx context.Context, in SampleOutInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(in.Recipient)
	if recipient == "" {
		return nil, domain.Invalid("destinatario requerido")
	}
	if err := requireDate(in.BusinessDate, "fecha de negocio"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return r.run(ctx, "record sample out", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.BusinessDate, in.UserID)
		if err != nil {
			return nil, err
		}
		if err := requireAvailable(row, in.Quantity); err != nil {
			return nil, err
		}

		number, err := r.seq.Next(ctx, repos.Sequences, entity.PrefixSample, row.BusinessDate)
		if err != nil {
			return nil, err
		}
		sample := &entity.SampleTracking{
			SampleNumber:     number,
			BusinessDate:     row.BusinessDate,
			ProductID:        in.ProductID,
			Quantity:         in.Quantity,
			Recipient:        recipient,
			Purpose:          strings.TrimSpace(in.Purpose),
			Status:           entity.SampleStatusDistributed,
			ReturnedQuantity: decimal.Zero,
			CreatedBy:        in.UserID,
			UpdatedBy:        in.UserID,
		}
		if err := repos.Samples.Create(ctx, sample); err != nil {
			return nil, err
		}
		sampleID := sample.ID

		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnSampleOut,
			delta:    in.Quantity,
			txType:   entity.TransactionTypeSampleOut,
			quantity: in.Quantity.Neg(),
			reason:   recipient,
			sampleID: &sampleID,
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		sample.SampleOutTransactionID = &tx.ID
		if err := repos.Samples.Update(ctx, sample); err != nil {
			return nil, err
		}

		res := &Result{Sample: sample}
		res.add(row, tx)
		return res, nil
	})
}

// SampleReturnInput cierre de una muestra. Solo Outcome "returned" con cantidad > 0 vuelve al stock.
type SampleReturnInput struct {
	SampleID         int64
	ReturnedQuantity decimal.Decimal
	Outcome          string
	ReturnDate       time.Time
	UserID           int64
}

// RecordSampleReturn cierra la muestra. Lo devuelto entra a goods_in de la fecha de devolución,
// no de la fecha de entrega.
func (r *TransactionRecorder) RecordSampleReturn(ctx context.Context, in SampleReturnInput) (*Result, error) {
	if in.SampleID <= 0 {
		return nil, domain.Invalid("muestra requerida")
	}
	if in.ReturnedQuantity.IsNegative() {
		return nil, domain.Invalid("cantidad devuelta no puede ser negativa")
	}
	switch in.Outcome {
	case entity.SampleOutcomeReturned, entity.SampleOutcomeConsumed, entity.SampleOutcomeLost:
	default:
		return nil, domain.Invalid("resultado %q inválido", in.Outcome)
	}
	if err := requireDate(in.ReturnDate, "fecha de devolución"); err != nil {
		return nil, err
	}
	returnDate := entity.BusinessDate(in.ReturnDate)

	return r.run(ctx, "record sample return", func(repos TxRepos) (*Result, error) {
		sample, err := repos.Samples.GetByIDForUpdate(ctx, in.SampleID)
		if err != nil {
			return nil, err
		}
		if sample == nil {
			return nil, domain.ErrNotFound
		}
		if sample.Status != entity.SampleStatusDistributed {
			return nil, domain.Invalid("la muestra %s ya está %s", sample.SampleNumber, sample.Status)
		}
		if in.ReturnedQuantity.GreaterThan(sample.Quantity) {
			return nil, domain.Invalid("devuelto %s mayor que lo entregado %s", in.ReturnedQuantity, sample.Quantity)
		}
		if returnDate.Before(sample.BusinessDate) {
			return nil, domain.Invalid("la devolución no puede ser anterior a la entrega")
		}

		res := &Result{Sample: sample}
		sample.ReturnedAt = &returnDate
		sample.UpdatedBy = in.UserID
		if in.Outcome == entity.SampleOutcomeReturned && in.ReturnedQuantity.IsPositive() {
			row, err := r.store.GetOrCreate(ctx, repos.Ledger, sample.ProductID, returnDate, in.UserID)
			if err != nil {
				return nil, err
			}
			sampleID := sample.ID
			row, tx, err := r.post(ctx, repos, row, posting{
				column:   entity.ColumnGoodsIn,
				delta:    in.ReturnedQuantity,
				txType:   entity.TransactionTypeSampleReturn,
				quantity: in.ReturnedQuantity,
				reason:   sample.SampleNumber,
				sampleID: &sampleID,
			}, in.UserID)
			if err != nil {
				return nil, err
			}
			sample.Status = entity.SampleStatusReturned
			sample.ReturnedQuantity = in.ReturnedQuantity
			sample.SampleReturnTransactionID = &tx.ID
			res.add(row, tx)
		} else {
			sample.Status = entity.SampleStatusClosed
			sample.ReturnedQuantity = decimal.Zero
		}
		if err := repos.Samples.Update(ctx, sample); err != nil {
			return nil, err
		}
		return res, nil
	})
}

// ConvertSampleInput convierte una muestra entregada en venta del pedido indicado.
type ConvertSampleInput struct {
	SampleID int64
	OrderID  int64
	UserID   int64
}

// ConvertSampleToSale marca la muestra como convertida. No mueve stock: ya salió por sample_out.
func (r *TransactionRecorder) ConvertSampleToSale(ctx context.Context, in ConvertSampleInput) (*Result, error) {
	if in.SampleID <= 0 {
		return nil, domain.Invalid("muestra requerida")
	}
	if in.OrderID <= 0 {
		return nil, domain.Invalid("pedido requerido")
	}
	orderID := in.OrderID
	return r.run(ctx, "convert sample to sale", func(repos TxRepos) (*Result, error) {
		sample, err := repos.Samples.GetByIDForUpdate(ctx, in.SampleID)
		if err != nil {
			return nil, err
		}
		if sample == nil {
			return nil, domain.ErrNotFound
		}
		if sample.Status != entity.SampleStatusDistributed {
			return nil, domain.Invalid("la muestra %s ya está %s", sample.SampleNumber, sample.Status)
		}
		sample.Status = entity.SampleStatusConverted
		sample.ConvertedOrderID = &orderID
		sample.UpdatedBy = in.UserID
		if err := repos.Samples.Update(ctx, sample); err != nil {
			return nil, err
		}
		return &Result{Sample: sample}, nil
	})
}
