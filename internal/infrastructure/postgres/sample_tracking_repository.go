package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.SampleTrackingRepository = (*SampleTrackingRepo)(nil)

const sampleColumns = `id, sample_number, business_date, product_id, quantity, recipient, purpose, status,
	returned_quantity, returned_at, sample_out_transaction_id, sample_return_transaction_id,
	converted_order_id, created_by, updated_by, created_at, updated_at`

// SampleTrackingRepo persistencia de sample_trackings.
type SampleTrackingRepo struct {
	q Querier
}

// NewSampleTrackingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSampleTrackingRepository(q Querier) *SampleTrackingRepo {
	return &SampleTrackingRepo{q: q}
}

// Create inserta la muestra y asigna ID.
func (r *SampleTrackingRepo) Create(ctx context.Context, s *entity.SampleTracking) error {
	query := `
		INSERT INTO sample_trackings (sample_number, business_date, product_id, quantity, recipient, purpose,
			status, returned_quantity, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		s.SampleNumber, entity.BusinessDate(s.BusinessDate), s.ProductID, s.Quantity, s.Recipient, s.Purpose,
		s.Status, s.ReturnedQuantity, s.CreatedBy, s.UpdatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapError("create sample tracking", err)
	}
	return nil
}

func (r *SampleTrackingRepo) get(ctx context.Context, op, query string, id int64) (*entity.SampleTracking, error) {
	var s entity.SampleTracking
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.SampleNumber, &s.BusinessDate, &s.ProductID, &s.Quantity, &s.Recipient, &s.Purpose, &s.Status,
		&s.ReturnedQuantity, &s.ReturnedAt, &s.SampleOutTransactionID, &s.SampleReturnTransactionID,
		&s.ConvertedOrderID, &s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	s.BusinessDate = entity.BusinessDate(s.BusinessDate)
	return &s, nil
}

// GetByID obtiene una muestra; nil si no existe.
func (r *SampleTrackingRepo) GetByID(ctx context.Context, id int64) (*entity.SampleTracking, error) {
	return r.get(ctx, "get sample tracking", `SELECT `+sampleColumns+` FROM sample_trackings WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene y bloquea la muestra (SELECT FOR UPDATE).
func (r *SampleTrackingRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.SampleTracking, error) {
	return r.get(ctx, "get sample tracking for update", `SELECT `+sampleColumns+` FROM sample_trackings WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste estado, devolución y vínculos.
func (r *SampleTrackingRepo) Update(ctx context.Context, s *entity.SampleTracking) error {
	query := `
		UPDATE sample_trackings
		SET status = $2, returned_quantity = $3, returned_at = $4, sample_out_transaction_id = $5,
			sample_return_transaction_id = $6, converted_order_id = $7, updated_by = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		s.ID, s.Status, s.ReturnedQuantity, s.ReturnedAt, s.SampleOutTransactionID,
		s.SampleReturnTransactionID, s.ConvertedOrderID, s.UpdatedBy,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update sample tracking: %w", domain.ErrNotFound)
		}
		return mapError("update sample tracking", err)
	}
	return nil
}
