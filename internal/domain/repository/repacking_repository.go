package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// RepackingRepository puerto de persistencia de reempaques (repacking_records).
type RepackingRepository interface {
	Create(ctx context.Context, rec *entity.RepackingRecord) error
	LinkTransactions(ctx context.Context, id, outTxID, inTxID int64) error
	GetByID(ctx context.Context, id int64) (*entity.RepackingRecord, error)
}
