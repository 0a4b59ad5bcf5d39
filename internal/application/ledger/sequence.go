package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// SequenceGenerator emite números legibles {PREFIX}-{YYYYMMDD}-{seq}, consecutivos por (prefijo, día).
type SequenceGenerator struct{}

// NewSequenceGenerator construye el generador.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Next reserva el siguiente número dentro de la transacción en curso.
func (g *SequenceGenerator) Next(ctx context.Context, repo repository.SequenceRepository, prefix string, date time.Time) (string, error) {
	if !inventory.ValidPrefix(prefix) {
		return "", domain.Invalid("prefijo %q inválido", prefix)
	}
	date = entity.BusinessDate(date)
	seq, err := repo.NextSequence(ctx, prefix, date)
	if err != nil {
		return "", err
	}
	return inventory.FormatNumber(prefix, date, seq), nil
}
