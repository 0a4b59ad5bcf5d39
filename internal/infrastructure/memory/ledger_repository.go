package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*ledgerRepo)(nil)

type ledgerRepo struct {
	st  *state
	now func() time.Time
}

func (r *ledgerRepo) Get(_ context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	row, ok := r.st.rows[rowKey{productID, entity.BusinessDate(date)}]
	if !ok || row.DeletedAt != nil {
		return nil, nil
	}
	return row.Clone(), nil
}

// GetForUpdate igual a Get: la unidad de trabajo ya es exclusiva.
func (r *ledgerRepo) GetForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	return r.Get(ctx, productID, date)
}

func (r *ledgerRepo) GetLatestBefore(_ context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	date = entity.BusinessDate(date)
	var best *entity.LedgerRow
	for k, row := range r.st.rows {
		if k.productID != productID || !k.date.Before(date) || row.DeletedAt != nil {
			continue
		}
		if best == nil || k.date.After(best.BusinessDate) {
			best = row
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.Clone(), nil
}

func (r *ledgerRepo) GetLatestBeforeForUpdate(ctx context.Context, productID int64, date time.Time) (*entity.LedgerRow, error) {
	return r.GetLatestBefore(ctx, productID, date)
}

func (r *ledgerRepo) Insert(_ context.Context, row *entity.LedgerRow) (bool, error) {
	key := rowKey{row.ProductID, entity.BusinessDate(row.BusinessDate)}
	if _, ok := r.st.rows[key]; ok {
		return false, nil
	}
	now := r.now()
	r.st.nextRowID++
	c := row.Clone()
	c.ID = r.st.nextRowID
	c.BusinessDate = key.date
	c.CreatedAt, c.UpdatedAt = now, now
	c.Recompute()
	r.st.rows[key] = c
	r.st.rowKeys[c.ID] = key
	row.ID = c.ID
	return true, nil
}

func (r *ledgerRepo) byID(id int64) (*entity.LedgerRow, error) {
	key, ok := r.st.rowKeys[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.st.rows[key], nil
}

func (r *ledgerRepo) ApplyDelta(_ context.Context, rowID int64, col entity.LedgerColumn, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	row, err := r.byID(rowID)
	if err != nil {
		return nil, err
	}
	if !col.Valid() {
		return nil, domain.Invalid("columna %q no es un acumulador", col)
	}
	v := row.Accumulator(col).Add(delta)
	if v.IsNegative() {
		return nil, domain.Invalid("%s quedaría negativo", col)
	}
	row.SetAccumulator(col, v)
	row.UpdatedBy, row.UpdatedAt = userID, r.now()
	return row.Clone(), nil
}

func (r *ledgerRepo) AddOpeningStock(_ context.Context, rowID int64, delta decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	row, err := r.byID(rowID)
	if err != nil {
		return nil, err
	}
	row.OpeningStock = row.OpeningStock.Add(delta)
	row.Recompute()
	row.UpdatedBy, row.UpdatedAt = userID, r.now()
	return row.Clone(), nil
}

func (r *ledgerRepo) ShiftOpeningAfter(_ context.Context, productID int64, date time.Time, delta decimal.Decimal, userID int64) (int64, error) {
	date = entity.BusinessDate(date)
	now := r.now()
	var n int64
	for k, row := range r.st.rows {
		if k.productID != productID || !k.date.After(date) || row.DeletedAt != nil {
			continue
		}
		row.OpeningStock = row.OpeningStock.Add(delta)
		row.Recompute()
		row.UpdatedBy, row.UpdatedAt = userID, now
		n++
	}
	return n, nil
}

func (r *ledgerRepo) UpdateThresholds(_ context.Context, rowID int64, minimum, maximum *decimal.Decimal, userID int64) (*entity.LedgerRow, error) {
	row, err := r.byID(rowID)
	if err != nil {
		return nil, err
	}
	row.MinimumStock, row.MaximumStock = copyDecimal(minimum), copyDecimal(maximum)
	row.UpdatedBy, row.UpdatedAt = userID, r.now()
	return row.Clone(), nil
}

func (r *ledgerRepo) ListByDate(_ context.Context, date time.Time, limit, offset int) ([]*entity.LedgerRow, error) {
	date = entity.BusinessDate(date)
	var out []*entity.LedgerRow
	for k, row := range r.st.rows {
		if k.date.Equal(date) && row.DeletedAt == nil {
			out = append(out, row.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return page(out, limit, offset), nil
}

func (r *ledgerRepo) ListByProduct(_ context.Context, productID int64, from, to time.Time) ([]*entity.LedgerRow, error) {
	from, to = entity.BusinessDate(from), entity.BusinessDate(to)
	var out []*entity.LedgerRow
	for k, row := range r.st.rows {
		if k.productID != productID || k.date.Before(from) || k.date.After(to) || row.DeletedAt != nil {
			continue
		}
		out = append(out, row.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessDate.Before(out[j].BusinessDate) })
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
