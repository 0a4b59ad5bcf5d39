package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// TransactionRecorder registra los movimientos del libro diario. Cada operación es una unidad de
// trabajo: bloquea/crea la fila, aplica el delta, propaga a fechas posteriores y deja la transacción
// de auditoría. Un conflicto de numeración reintenta la unidad completa.
type TransactionRecorder struct {
	txRunner TxRunner
	products repository.ProductRepository
	store    *LedgerStore
	seq      *SequenceGenerator
	backdate *BackdatePropagator
	retry    RetryPolicy
	log      zerolog.Logger
}

// NewTransactionRecorder construye el recorder con la política de reintento por defecto.
func NewTransactionRecorder(txRunner TxRunner, products repository.ProductRepository, log zerolog.Logger) *TransactionRecorder {
	return &TransactionRecorder{
		txRunner: txRunner,
		products: products,
		store:    NewLedgerStore(log),
		seq:      NewSequenceGenerator(),
		backdate: NewBackdatePropagator(log),
		retry:    DefaultRetryPolicy(),
		log:      log,
	}
}

// WithRetryPolicy reemplaza la política de reintento.
func (r *TransactionRecorder) WithRetryPolicy(p RetryPolicy) *TransactionRecorder {
	r.retry = p
	return r
}

// Result filas y registros tocados por una operación, leídos después de aplicar los cambios.
type Result struct {
	Row          *entity.LedgerRow
	Rows         []*entity.LedgerRow
	Transaction  *entity.Transaction
	Transactions []*entity.Transaction
	Repacking    *entity.RepackingRecord
	Sample       *entity.SampleTracking
}

func (res *Result) add(row *entity.LedgerRow, tx *entity.Transaction) {
	if res.Row == nil {
		res.Row = row
	}
	if res.Transaction == nil {
		res.Transaction = tx
	}
	res.Rows = append(res.Rows, row)
	if tx != nil {
		res.Transactions = append(res.Transactions, tx)
	}
}

// posting un movimiento sobre una fila. Sin column el delta mueve opening_stock.
type posting struct {
	column      entity.LedgerColumn
	delta       decimal.Decimal
	txType      string
	quantity    decimal.Decimal
	status      string
	reason      string
	batch       string
	orderID     *int64
	repackingID *int64
	sampleID    *int64
}

// post aplica p sobre la fila bloqueada, propaga el cambio de cierre y registra la transacción.
func (r *TransactionRecorder) post(ctx context.Context, repos TxRepos, row *entity.LedgerRow, p posting, userID int64) (*entity.LedgerRow, *entity.Transaction, error) {
	var (
		updated *entity.LedgerRow
		err     error
	)
	if p.column == "" {
		updated, err = r.store.AddOpening(ctx, repos.Ledger, row, p.delta, userID)
	} else {
		updated, err = r.store.ApplyDelta(ctx, repos.Ledger, row, p.column, p.delta, userID)
	}
	if err != nil {
		return nil, nil, err
	}

	shift := updated.ClosingStock.Sub(row.ClosingStock)
	if _, err := r.backdate.Propagate(ctx, repos.Ledger, row.ProductID, row.BusinessDate, shift, userID); err != nil {
		return nil, nil, err
	}

	number, err := r.seq.Next(ctx, repos.Sequences, entity.PrefixTransaction, row.BusinessDate)
	if err != nil {
		return nil, nil, err
	}
	status := p.status
	if status == "" {
		status = entity.TransactionStatusCompleted
	}
	tx := &entity.Transaction{
		TransactionNumber:     number,
		TransactionType:       p.txType,
		BusinessDate:          row.BusinessDate,
		ProductID:             row.ProductID,
		Quantity:              p.quantity,
		BalanceAfter:          updated.ClosingStock,
		OrderID:               p.orderID,
		RepackingID:           p.repackingID,
		SampleTrackingID:      p.sampleID,
		ProductionBatchNumber: p.batch,
		Status:                status,
		Reason:                p.reason,
		CreatedBy:             userID,
	}
	if err := repos.Transactions.Create(ctx, tx); err != nil {
		return nil, nil, err
	}
	return updated, tx, nil
}

// run ejecuta fn como unidad de trabajo; solo domain.ErrConflict se reintenta.
func (r *TransactionRecorder) run(ctx context.Context, op string, fn func(repos TxRepos) (*Result, error)) (*Result, error) {
	var (
		res     *Result
		attempt int
	)
	operation := func() error {
		attempt++
		err := r.txRunner.Run(ctx, func(repos TxRepos) error {
			out, err := fn(repos)
			if err != nil {
				return err
			}
			res = out
			return nil
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().
			Err(err).
			Str("operation", op).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("conflicto de numeración, reintentando")
	}
	if err := backoff.RetryNotify(operation, r.retry.backOff(ctx), notify); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, tx := range res.Transactions {
		r.log.Info().
			Str("operation", op).
			Str("transaction_number", tx.TransactionNumber).
			Str("transaction_type", tx.TransactionType).
			Int64("product_id", tx.ProductID).
			Str("business_date", tx.BusinessDate.Format(time.DateOnly)).
			Str("quantity", tx.Quantity.String()).
			Msg("transacción registrada")
	}
	return res, nil
}

// requireProduct valida que el producto exista y esté activo.
func (r *TransactionRecorder) requireProduct(ctx context.Context, id int64) (*entity.Product, error) {
	if id <= 0 {
		return nil, domain.Invalid("producto requerido")
	}
	p, err := r.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil || !p.IsActive {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func requirePositive(qty decimal.Decimal, field string) error {
	if !qty.IsPositive() {
		return domain.Invalid("%s debe ser mayor que cero", field)
	}
	return nil
}

func requireDate(date time.Time, field string) error {
	if date.IsZero() {
		return domain.Invalid("%s requerida", field)
	}
	return nil
}

// requireAvailable falla con el faltante si el cierre de la fila no cubre qty.
func requireAvailable(row *entity.LedgerRow, qty decimal.Decimal) error {
	if row.ClosingStock.LessThan(qty) {
		return domain.NewInsufficientStockError(row.ProductID, row.BusinessDate, qty, row.ClosingStock)
	}
	return nil
}
