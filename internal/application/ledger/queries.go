package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	maxRangeDays    = 366
)

// LedgerQueries lecturas del libro diario y de sus registros de auditoría.
type LedgerQueries struct {
	txRunner TxRunner
}

// NewLedgerQueries construye el servicio de consultas.
func NewLedgerQueries(txRunner TxRunner) *LedgerQueries {
	return &LedgerQueries{txRunner: txRunner}
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// GetRow devuelve la fila (producto, fecha) o domain.ErrNotFound.
func (q *LedgerQueries) GetRow(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	var row *entity.LedgerRow
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		row, err = repos.Ledger.Get(ctx, productID, entity.BusinessDate(date))
		return err
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return row, nil
}

// ListRowsByDate filas de todos los productos en una fecha, por product_id.
func (q *LedgerQueries) ListRowsByDate(ctx context.Context, date time.Time, limit, offset int) ([]*entity.LedgerRow, error) {
	if offset < 0 {
		offset = 0
	}
	var rows []*entity.LedgerRow
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		rows, err = repos.Ledger.ListByDate(ctx, entity.BusinessDate(date), pageSize(limit), offset)
		return err
	})
	return rows, err
}

// ListRowsByProduct historia de un producto entre from y to (inclusive).
func (q *LedgerQueries) ListRowsByProduct(ctx context.Context, productID int64, from, to time.Time) ([]*entity.LedgerRow, error) {
	from, to = entity.BusinessDate(from), entity.BusinessDate(to)
	if to.Before(from) {
		return nil, domain.Invalid("rango de fechas invertido")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, domain.Invalid("el rango no puede superar %d días", maxRangeDays)
	}
	var rows []*entity.LedgerRow
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		rows, err = repos.Ledger.ListByProduct(ctx, productID, from, to)
		return err
	})
	return rows, err
}

// ListTransactions transacciones filtradas, más recientes primero.
func (q *LedgerQueries) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	if filter.Type != "" && !entity.ValidTransactionType(filter.Type) {
		return nil, domain.Invalid("tipo de transacción %q inválido", filter.Type)
	}
	if filter.From != nil {
		d := entity.BusinessDate(*filter.From)
		filter.From = &d
	}
	if filter.To != nil {
		d := entity.BusinessDate(*filter.To)
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Invalid("rango de fechas invertido")
	}
	filter.Limit = pageSize(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	var txs []*entity.Transaction
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		txs, err = repos.Transactions.List(ctx, filter)
		return err
	})
	return txs, err
}

// GetTransaction devuelve una transacción o domain.ErrNotFound.
func (q *LedgerQueries) GetTransaction(ctx context.Context, id int64) (*entity.Transaction, error) {
	var tx *entity.Transaction
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		tx, err = repos.Transactions.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

// GetRepacking devuelve un reempaque o domain.ErrNotFound.
func (q *LedgerQueries) GetRepacking(ctx context.Context, id int64) (*entity.RepackingRecord, error) {
	var rec *entity.RepackingRecord
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		rec, err = repos.Repackings.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// GetSample devuelve una muestra o domain.ErrNotFound.
func (q *LedgerQueries) GetSample(ctx context.Context, id int64) (*entity.SampleTracking, error) {
	var s *entity.SampleTracking
	err := q.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		s, err = repos.Samples.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
