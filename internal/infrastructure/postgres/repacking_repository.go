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

var _ repository.RepackingRepository = (*RepackingRepo)(nil)

// RepackingRepo persistencia de repacking_records.
type RepackingRepo struct {
	q Querier
}

// NewRepackingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRepackingRepository(q Querier) *RepackingRepo {
	return &RepackingRepo{q: q}
}

// Create inserta el registro (sin transacciones aún; se enlazan con LinkTransactions).
func (r *RepackingRepo) Create(ctx context.Context, rec *entity.RepackingRecord) error {
	query := `
		INSERT INTO repacking_records (repacking_number, business_date, source_product_id, source_quantity,
			target_product_id, target_quantity, conversion_ratio, expected_target_qty, loss_quantity,
			loss_percentage, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		rec.RepackingNumber, entity.BusinessDate(rec.BusinessDate), rec.SourceProductID, rec.SourceQuantity,
		rec.TargetProductID, rec.TargetQuantity, rec.ConversionRatio, rec.ExpectedTargetQuantity, rec.LossQuantity,
		rec.LossPercentage, rec.Notes, rec.CreatedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return mapError("create repacking record", err)
	}
	return nil
}

// LinkTransactions guarda las transacciones repack-out y repack-in del registro.
func (r *RepackingRepo) LinkTransactions(ctx context.Context, id, outTxID, inTxID int64) error {
	query := `
		UPDATE repacking_records
		SET repack_out_transaction_id = $2, repack_in_transaction_id = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, outTxID, inTxID)
	if err != nil {
		return mapError("link repacking transactions", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link repacking transactions: %w", domain.ErrNotFound)
	}
	return nil
}

// GetByID obtiene un reempaque; nil si no existe.
func (r *RepackingRepo) GetByID(ctx context.Context, id int64) (*entity.RepackingRecord, error) {
	query := `
		SELECT id, repacking_number, business_date, source_product_id, source_quantity, target_product_id,
			target_quantity, conversion_ratio, expected_target_qty, loss_quantity, loss_percentage,
			repack_out_transaction_id, repack_in_transaction_id, notes, created_by, created_at, updated_at
		FROM repacking_records WHERE id = $1`
	var rec entity.RepackingRecord
	err := r.q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.RepackingNumber, &rec.BusinessDate, &rec.SourceProductID, &rec.SourceQuantity, &rec.TargetProductID,
		&rec.TargetQuantity, &rec.ConversionRatio, &rec.ExpectedTargetQuantity, &rec.LossQuantity, &rec.LossPercentage,
		&rec.RepackOutTransactionID, &rec.RepackInTransactionID, &rec.Notes, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get repacking record", err)
	}
	rec.BusinessDate = entity.BusinessDate(rec.BusinessDate)
	return &rec, nil
}
