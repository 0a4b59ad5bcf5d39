package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ledger-api/internal/domain"
)

const (
	uniqueViolation      = "23505"
	checkViolation       = "23514"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
	lockNotAvailable     = "55P03"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == uniqueViolation
}

// mapError traduce los códigos SQLSTATE que el dominio entiende; el resto se envuelve con op.
// Los conflictos de concurrencia quedan como domain.ErrConflict para que el recorder reintente.
func mapError(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	if pgErr := pgError(err); pgErr != nil {
		switch pgErr.Code {
		case serializationFailure, deadlockDetected, lockNotAvailable:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case checkViolation:
			return fmt.Errorf("%s: %w", op, domain.Invalid("restricción %s", pgErr.ConstraintName))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
