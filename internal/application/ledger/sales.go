package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// SaleInput venta facturada. InvoiceDate es la fecha de negocio donde se descuenta.
type SaleInput struct {
	ProductID   int64
	Quantity    decimal.Decimal
	OrderID     int64
	InvoiceDate time.Time
	UserID      int64
}

// RecordSale reserva la cantidad vendida (reserved_out) si el cierre del día la cubre.
func (r *TransactionRecorder) RecordSale(ctx context.Context, in SaleInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if in.OrderID <= 0 {
		return nil, domain.Invalid("pedido requerido")
	}
	if err := requireDate(in.InvoiceDate, "fecha de factura"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	orderID := in.OrderID
	return r.run(ctx, "record sale", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.InvoiceDate, in.UserID)
		if err != nil {
			return nil, err
		}
		if err := requireAvailable(row, in.Quantity); err != nil {
			return nil, err
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnReservedOut,
			delta:    in.Quantity,
			txType:   entity.TransactionTypeSale,
			quantity: in.Quantity.Neg(),
			orderID:  &orderID,
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}

// ReverseSaleInput reverso (total o parcial) de una venta del pedido.
type ReverseSaleInput struct {
	OrderID     int64
	ProductID   int64
	Quantity    decimal.Decimal
	InvoiceDate time.Time
	Reason      string
	UserID      int64
}

// ReverseSale devuelve la cantidad a la fila de la fecha de factura. La transacción original no se
// toca: el reverso es una nueva transacción "sale" con cantidad positiva y estado cancelled.
func (r *TransactionRecorder) ReverseSale(ctx context.Context, in ReverseSaleInput) (*Result, error) {
	if err := requirePositive(in.Quantity, "cantidad"); err != nil {
		return nil, err
	}
	if in.OrderID <= 0 {
		return nil, domain.Invalid("pedido requerido")
	}
	if err := requireDate(in.InvoiceDate, "fecha de factura"); err != nil {
		return nil, err
	}
	if _, err := r.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	orderID := in.OrderID
	return r.run(ctx, "reverse sale", func(repos TxRepos) (*Result, error) {
		row, err := r.store.GetOrCreate(ctx, repos.Ledger, in.ProductID, in.InvoiceDate, in.UserID)
		if err != nil {
			return nil, err
		}
		if row.ReservedOut.LessThan(in.Quantity) {
			return nil, domain.Invalid("reverso %s mayor que lo reservado %s", in.Quantity, row.ReservedOut)
		}
		sold, err := repos.Transactions.NetSaleQuantity(ctx, in.OrderID, in.ProductID, row.BusinessDate)
		if err != nil {
			return nil, err
		}
		if sold.LessThan(in.Quantity) {
			return nil, domain.Invalid("el pedido %d solo tiene %s vendido sin reversar", in.OrderID, sold)
		}
		row, tx, err := r.post(ctx, repos, row, posting{
			column:   entity.ColumnReservedOut,
			delta:    in.Quantity.Neg(),
			txType:   entity.TransactionTypeSale,
			quantity: in.Quantity,
			status:   entity.TransactionStatusCancelled,
			reason:   strings.TrimSpace(in.Reason),
			orderID:  &orderID,
		}, in.UserID)
		if err != nil {
			return nil, err
		}
		res := &Result{}
		res.add(row, tx)
		return res, nil
	})
}
