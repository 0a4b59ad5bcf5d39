package repository

import (
	"context"
	"time"
)

// SequenceRepository entrega el siguiente consecutivo para (prefix, date).
// La implementación serializa llamadores concurrentes del mismo par hasta el fin de la transacción.
type SequenceRepository interface {
	NextSequence(ctx context.Context, prefix string, date time.Time) (int, error)
}
