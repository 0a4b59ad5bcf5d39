package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// BackdatePropagator traslada un cambio de cierre a todas las filas posteriores del producto.
// No crea filas para los huecos: esas fechas se siembran al usarse.
type BackdatePropagator struct {
	log zerolog.Logger
}

// NewBackdatePropagator construye el propagador.
func NewBackdatePropagator(log zerolog.Logger) *BackdatePropagator {
	return &BackdatePropagator{log: log}
}

// Propagate suma delta al saldo inicial de las filas con business_date > fromDate.
// Devuelve cuántas filas se desplazaron.
func (p *BackdatePropagator) Propagate(ctx context.Context, repo repository.LedgerRepository, productID int64, fromDate time.Time, delta decimal.Decimal, userID int64) (int64, error) {
	if delta.IsZero() {
		return 0, nil
	}
	n, err := repo.ShiftOpeningAfter(ctx, productID, fromDate, delta, userID)
	if err != nil {
		return 0, fmt.Errorf("propagate backdate: %w", err)
	}
	if n > 0 {
		p.log.Debug().
			Int64("product_id", productID).
			Str("from_date", fromDate.Format(time.DateOnly)).
			Str("delta", delta.String()).
			Int64("rows", n).
			Msg("saldo propagado a fechas posteriores")
	}
	return n, nil
}
