package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia de las filas del libro diario (daily_inventory).
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción (SELECT FOR UPDATE).
// Las lecturas devuelven nil, nil cuando la fila no existe.
type LedgerRepository interface {
	Get(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error)
	GetForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error)
	// GetLatestBefore devuelve la fila más reciente con business_date < date.
	GetLatestBefore(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error)
	GetLatestBeforeForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error)
	// Insert crea la fila; devuelve false si ya existía (ON CONFLICT DO NOTHING).
	Insert(ctx context.Context, row *entity.LedgerRow) (bool, error)
	// ApplyDelta suma delta a un solo acumulador y devuelve la fila con el cierre re-derivado.
	ApplyDelta(ctx context.Context, rowID int64, col entity.LedgerColumn, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error)
	AddOpeningStock(ctx context.Context, rowID int64, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error)
	// ShiftOpeningAfter suma delta al opening de todas las filas del producto posteriores a date.
	ShiftOpeningAfter(ctx context.Context, productID int64, date time.Time, delta decimal.Decimal, userID int64) (int64, error)
	UpdateThresholds(ctx context.Context, rowID int64, minimum, maximum *decimal.Decimal, userID int64) (*entity.LedgerRow, error)
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*entity.LedgerRow, error)
	ListByProduct(ctx context.Context, productID int64, from, to time.Time) ([]*entity.LedgerRow, error)
}
