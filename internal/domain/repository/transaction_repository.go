package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// TransactionFilter filtros opcionales para listar transacciones. Campos nil/vacíos no filtran.
type TransactionFilter struct {
	ProductID *int64
	OrderID   *int64
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TransactionRepository puerto del registro de auditoría (ledger_transactions). Solo inserción.
type TransactionRepository interface {
	// Create asigna ID y CreatedAt. Un número duplicado devuelve domain.ErrConflict.
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
	// NetSaleQuantity cantidad vendida neta (ventas menos reversos) de un pedido, producto y fecha.
	NetSaleQuantity(ctx context.Context, orderID, productID int64, date time.Time) (decimal.Decimal, error)
}
