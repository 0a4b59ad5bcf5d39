package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// Tabla y columna dueñas de cada prefijo.
var sequenceSources = map[string]string{
	entity.PrefixTransaction: `SELECT COALESCE(MAX(substring(transaction_number FROM char_length($1::text) + 1)::int), 0)
		FROM ledger_transactions WHERE starts_with(transaction_number, $1::text)`,
	entity.PrefixRepacking: `SELECT COALESCE(MAX(substring(repacking_number FROM char_length($1::text) + 1)::int), 0)
		FROM repacking_records WHERE starts_with(repacking_number, $1::text)`,
	entity.PrefixSample: `SELECT COALESCE(MAX(substring(sample_number FROM char_length($1::text) + 1)::int), 0)
		FROM sample_trackings WHERE starts_with(sample_number, $1::text)`,
}

// SequenceRepo consecutivos por (prefijo, día) con pg_advisory_xact_lock: el lock vive hasta el fin
// de la transacción, así dos escritores del mismo día no leen el mismo MAX.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Debe usarse dentro de una tx.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextSequence bloquea (prefix, date) y devuelve MAX(sufijo) + 1.
func (r *SequenceRepo) NextSequence(ctx context.Context, prefix string, date time.Time) (int, error) {
	query, ok := sequenceSources[prefix]
	if !ok {
		return 0, domain.Invalid("prefijo %q sin tabla de numeración", prefix)
	}
	stem := inventory.NumberStem(prefix, date)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, stem); err != nil {
		return 0, mapError("lock sequence", err)
	}
	var last int
	if err := r.q.QueryRow(ctx, query, stem).Scan(&last); err != nil {
		return 0, mapError("next sequence", err)
	}
	return last + 1, nil
}
