package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// LedgerStore crea filas de forma perezosa y aplica deltas sobre un único acumulador.
// Todas sus operaciones corren dentro de la transacción del llamador.
type LedgerStore struct {
	log zerolog.Logger
}

// NewLedgerStore construye el store.
func NewLedgerStore(log zerolog.Logger) *LedgerStore {
	return &LedgerStore{log: log}
}

// GetOrCreate bloquea la fila (producto, fecha). Si no existe la crea con el cierre de la fila
// anterior más cercana como saldo inicial (también bloqueada), o cero si no hay historia.
func (s *LedgerStore) GetOrCreate(ctx context.Context, repo repository.LedgerRepository, productID int64, date time.Time, userID int64) (*entity.LedgerRow, error) {
	date = entity.BusinessDate(date)
	row, err := repo.GetForUpdate(ctx, productID, date)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}

	prev, err := repo.GetLatestBeforeForUpdate(ctx, productID, date)
	if err != nil {
		return nil, err
	}
	row = &entity.LedgerRow{
		ProductID:    productID,
		BusinessDate: date,
		OpeningStock: decimal.Zero,
		IsActive:     true,
		CreatedBy:    userID,
		UpdatedBy:    userID,
	}
	if prev != nil {
		row.OpeningStock = prev.ClosingStock
		// Los umbrales se heredan del día anterior.
		seed := prev.Clone()
		row.MinimumStock, row.MaximumStock = seed.MinimumStock, seed.MaximumStock
	} else {
		s.log.Warn().
			Int64("product_id", productID).
			Str("business_date", date.Format(time.DateOnly)).
			Msg("sin fila anterior: saldo inicial en cero")
	}
	row.Recompute()

	if _, err := repo.Insert(ctx, row); err != nil {
		return nil, err
	}
	// Otro escritor pudo insertar primero; en ambos casos se relee con bloqueo.
	row, err = repo.GetForUpdate(ctx, productID, date)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("ledger row %d/%s not visible after insert", productID, date.Format(time.DateOnly))
	}
	return row, nil
}

// ApplyDelta suma delta a un acumulador de la fila bloqueada. Rechaza un acumulador negativo.
func (s *LedgerStore) ApplyDelta(ctx context.Context, repo repository.LedgerRepository, row *entity.LedgerRow, col entity.LedgerColumn, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	if !col.Valid() {
		return nil, domain.Invalid("columna %q no es un acumulador", col)
	}
	if row.Accumulator(col).Add(delta).IsNegative() {
		return nil, domain.Invalid("%s quedaría negativo (actual %s, delta %s)", col, row.Accumulator(col), delta)
	}
	return repo.ApplyDelta(ctx, row.ID, col, delta, userID)
}

// AddOpening mueve el saldo inicial. Solo lo usan ajustes y mermas.
func (s *LedgerStore) AddOpening(ctx context.Context, repo repository.LedgerRepository, row *entity.LedgerRow, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	return repo.AddOpeningStock(ctx, row.ID, delta, userID)
}
