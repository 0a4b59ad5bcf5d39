package ledger

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Ledger       repository.LedgerRepository
	Transactions repository.TransactionRepository
	Repackings   repository.RepackingRepository
	Samples      repository.SampleTrackingRepository
	Sequences    repository.SequenceRepository
}

// TxRunner ejecuta fn dentro de una unidad de trabajo: Commit si fn devuelve nil, Rollback en otro caso.
// Garantiza atomicidad para el libro diario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
