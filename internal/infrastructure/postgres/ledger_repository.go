package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, product_id, business_date, opening_stock, goods_in, reserved_out, repack_out,
	sample_out, production_material_out, closing_stock, minimum_stock, maximum_stock,
	is_active, deleted_at, created_by, updated_by, created_at, updated_at`

// Nombres de columna permitidos en UPDATE dinámico (nunca se interpola entrada del usuario).
var accumulatorColumns = map[entity.LedgerColumn]string{
	entity.ColumnGoodsIn:               "goods_in",
	entity.ColumnReservedOut:           "reserved_out",
	entity.ColumnRepackOut:             "repack_out",
	entity.ColumnSampleOut:             "sample_out",
	entity.ColumnProductionMaterialOut: "production_material_out",
}

// LedgerRepo implementación de LedgerRepository sobre daily_inventory (usable con pool o tx).
// closing_stock es columna generada: solo se lee.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

func scanLedgerRow(row pgx.Row) (*entity.LedgerRow, error) {
	var r entity.LedgerRow
	err := row.Scan(
		&r.ID, &r.ProductID, &r.BusinessDate, &r.OpeningStock, &r.GoodsIn, &r.ReservedOut, &r.RepackOut,
		&r.SampleOut, &r.ProductionMaterialOut, &r.ClosingStock, &r.MinimumStock, &r.MaximumStock,
		&r.IsActive, &r.DeletedAt, &r.CreatedBy, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.BusinessDate = entity.BusinessDate(r.BusinessDate)
	return &r, nil
}

func (r *LedgerRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.LedgerRow, error) {
	row, err := scanLedgerRow(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return row, nil
}

// Get obtiene la fila de un producto en una fecha.
func (r *LedgerRepo) Get(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE product_id = $1 AND business_date = $2 AND deleted_at IS NULL`
	return r.getOne(ctx, "get ledger row", query, productID, entity.BusinessDate(date))
}

// GetForUpdate obtiene la fila y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *LedgerRepo) GetForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE product_id = $1 AND business_date = $2 AND deleted_at IS NULL
		FOR UPDATE`
	return r.getOne(ctx, "get ledger row for update", query, productID, entity.BusinessDate(date))
}

// GetLatestBefore obtiene la fila más reciente anterior a date.
func (r *LedgerRepo) GetLatestBefore(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE product_id = $1 AND business_date < $2 AND deleted_at IS NULL
		ORDER BY business_date DESC
		LIMIT 1`
	return r.getOne(ctx, "get previous ledger row", query, productID, entity.BusinessDate(date))
}

// GetLatestBeforeForUpdate igual que GetLatestBefore, bloqueando la fila.
func (r *LedgerRepo) GetLatestBeforeForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE product_id = $1 AND business_date < $2 AND deleted_at IS NULL
		ORDER BY business_date DESC
		LIMIT 1
		FOR UPDATE`
	return r.getOne(ctx, "get previous ledger row for update", query, productID, entity.BusinessDate(date))
}

// Insert crea la fila si no existe (ON CONFLICT DO NOTHING). Devuelve true si la insertó.
func (r *LedgerRepo) Insert(ctx context.Context, row *entity.LedgerRow) (bool, error) {
	query := `
		INSERT INTO daily_inventory (product_id, business_date, opening_stock, goods_in, reserved_out,
			repack_out, sample_out, production_material_out, minimum_stock, maximum_stock,
			is_active, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (product_id, business_date) DO NOTHING
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		row.ProductID, entity.BusinessDate(row.BusinessDate), row.OpeningStock, row.GoodsIn, row.ReservedOut,
		row.RepackOut, row.SampleOut, row.ProductionMaterialOut, row.MinimumStock, row.MaximumStock,
		row.IsActive, row.CreatedBy, row.UpdatedBy,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, mapError("insert ledger row", err)
	}
	row.ID = id
	return true, nil
}

// ApplyDelta suma delta a un acumulador. El CHECK (>= 0) de la tabla rechaza valores negativos.
func (r *LedgerRepo) ApplyDelta(ctx context.Context, rowID int64, col entity.LedgerColumn, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	column, ok := accumulatorColumns[col]
	if !ok {
		return nil, domain.Invalid("columna %q no es un acumulador", col)
	}
	query := fmt.Sprintf(`
		UPDATE daily_inventory
		SET %[1]s = %[1]s + $2, updated_by = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+ledgerColumns, column)
	row, err := r.getOne(ctx, "apply ledger delta", query, rowID, delta, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("apply ledger delta: fila %d: %w", rowID, domain.ErrNotFound)
	}
	return row, nil
}

// AddOpeningStock mueve el saldo inicial de una fila (ajustes y mermas).
func (r *LedgerRepo) AddOpeningStock(ctx context.Context, rowID int64, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	query := `
		UPDATE daily_inventory
		SET opening_stock = opening_stock + $2, updated_by = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + ledgerColumns
	row, err := r.getOne(ctx, "add opening stock", query, rowID, delta, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("add opening stock: fila %d: %w", rowID, domain.ErrNotFound)
	}
	return row, nil
}

// ShiftOpeningAfter propaga delta a todas las filas posteriores en un solo UPDATE.
func (r *LedgerRepo) ShiftOpeningAfter(ctx context.Context, productID int64, date time.Time, delta decimal.Decimal, userID int64) (int64, error) {
	query := `
		UPDATE daily_inventory
		SET opening_stock = opening_stock + $3, updated_by = $4, updated_at = now()
		WHERE product_id = $1 AND business_date > $2 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query, productID, entity.BusinessDate(date), delta, userID)
	if err != nil {
		return 0, mapError("shift opening stock", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateThresholds reemplaza mínimo y máximo (nil = sin umbral).
func (r *LedgerRepo) UpdateThresholds(ctx context.Context, rowID int64, minimum, maximum *decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	query := `
		UPDATE daily_inventory
		SET minimum_stock = $2, maximum_stock = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + ledgerColumns
	row, err := r.getOne(ctx, "update thresholds", query, rowID, minimum, maximum, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("update thresholds: fila %d: %w", rowID, domain.ErrNotFound)
	}
	return row, nil
}

// ListByDate filas de una fecha ordenadas por producto.
func (r *LedgerRepo) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE business_date = $1 AND deleted_at IS NULL
		ORDER BY product_id
		LIMIT $2 OFFSET $3`
	return r.list(ctx, "list ledger rows by date", query, entity.BusinessDate(date), limit, offset)
}

// ListByProduct historia de un producto en [from, to].
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID int64, from, to time.Time) ([]*entity.LedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_inventory
		WHERE product_id = $1 AND business_date BETWEEN $2 AND $3 AND deleted_at IS NULL
		ORDER BY business_date`
	return r.list(ctx, "list ledger rows by product", query, productID, entity.BusinessDate(from), entity.BusinessDate(to))
}

func (r *LedgerRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.LedgerRow, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.LedgerRow
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return list, nil
}
