package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, transaction_number, transaction_type, business_date, product_id, quantity,
	balance_after, order_id, repacking_id, sample_tracking_id, production_batch_number, status, reason,
	created_by, created_at`

// TransactionRepo registro de auditoría ledger_transactions. Un trigger impide UPDATE/DELETE.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID, &t.TransactionNumber, &t.TransactionType, &t.BusinessDate, &t.ProductID, &t.Quantity,
		&t.BalanceAfter, &t.OrderID, &t.RepackingID, &t.SampleTrackingID, &t.ProductionBatchNumber, &t.Status, &t.Reason,
		&t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.BusinessDate = entity.BusinessDate(t.BusinessDate)
	return &t, nil
}

// Create inserta la transacción y asigna ID y CreatedAt. Número duplicado -> domain.ErrConflict.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO ledger_transactions (transaction_number, transaction_type, business_date, product_id,
			quantity, balance_after, order_id, repacking_id, sample_tracking_id, production_batch_number,
			status, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		tx.TransactionNumber, tx.TransactionType, entity.BusinessDate(tx.BusinessDate), tx.ProductID,
		tx.Quantity, tx.BalanceAfter, tx.OrderID, tx.RepackingID, tx.SampleTrackingID, tx.ProductionBatchNumber,
		tx.Status, tx.Reason, tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return mapError("create ledger transaction", err)
	}
	return nil
}

// GetByID obtiene una transacción; nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get ledger transaction", err)
	}
	return t, nil
}

// List aplica los filtros presentes; más recientes primero.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != nil {
		add("product_id = $%d", *f.ProductID)
	}
	if f.OrderID != nil {
		add("order_id = $%d", *f.OrderID)
	}
	if f.Type != "" {
		add("transaction_type = $%d", f.Type)
	}
	if f.From != nil {
		add("business_date >= $%d", entity.BusinessDate(*f.From))
	}
	if f.To != nil {
		add("business_date <= $%d", entity.BusinessDate(*f.To))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM ledger_transactions`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, f.Limit, f.Offset)
	fmt.Fprintf(&b, " ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, mapError("list ledger transactions", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, mapError("list ledger transactions", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list ledger transactions", err)
	}
	return list, nil
}

// NetSaleQuantity cantidad vendida sin reversar: las ventas son negativas y los reversos positivos.
func (r *TransactionRepo) NetSaleQuantity(ctx context.Context, orderID, productID int64, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(-SUM(quantity), 0)
		FROM ledger_transactions
		WHERE transaction_type = $1 AND order_id = $2 AND product_id = $3 AND business_date = $4`
	var net decimal.Decimal
	if err := r.q.QueryRow(ctx, query, entity.TransactionTypeSale, orderID, productID, entity.BusinessDate(date)).Scan(&net); err != nil {
		return decimal.Zero, mapError("net sale quantity", err)
	}
	return net, nil
}
