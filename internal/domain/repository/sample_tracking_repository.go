package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// SampleTrackingRepository puerto de persistencia de muestras (sample_trackings).
type SampleTrackingRepository interface {
	Create(ctx context.Context, s *entity.SampleTracking) error
	GetByID(ctx context.Context, id int64) (*entity.SampleTracking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.SampleTracking, error)
	// Update persiste estado, cantidad devuelta y vínculos de transacción/pedido.
	Update(ctx context.Context, s *entity.SampleTracking) error
}
