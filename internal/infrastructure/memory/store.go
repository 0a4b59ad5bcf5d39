// Package memory implementa los puertos del libro diario en memoria. Las unidades de trabajo se
// serializan y trabajan sobre una copia del estado que solo se publica en Commit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

type rowKey struct {
	productID int64
	date      time.Time
}

type state struct {
	rows       map[rowKey]*entity.LedgerRow
	rowKeys    map[int64]rowKey
	txs        []*entity.Transaction
	repackings map[int64]*entity.RepackingRecord
	samples    map[int64]*entity.SampleTracking

	nextRowID       int64
	nextTxID        int64
	nextRepackingID int64
	nextSampleID    int64
}

func newState() *state {
	return &state{
		rows:       make(map[rowKey]*entity.LedgerRow),
		rowKeys:    make(map[int64]rowKey),
		repackings: make(map[int64]*entity.RepackingRecord),
		samples:    make(map[int64]*entity.SampleTracking),
	}
}

func (s *state) clone() *state {
	c := &state{
		rows:            make(map[rowKey]*entity.LedgerRow, len(s.rows)),
		rowKeys:         make(map[int64]rowKey, len(s.rowKeys)),
		txs:             make([]*entity.Transaction, len(s.txs)),
		repackings:      make(map[int64]*entity.RepackingRecord, len(s.repackings)),
		samples:         make(map[int64]*entity.SampleTracking, len(s.samples)),
		nextRowID:       s.nextRowID,
		nextTxID:        s.nextTxID,
		nextRepackingID: s.nextRepackingID,
		nextSampleID:    s.nextSampleID,
	}
	for k, r := range s.rows {
		c.rows[k] = r.Clone()
	}
	for id, k := range s.rowKeys {
		c.rowKeys[id] = k
	}
	// Las transacciones son inmutables una vez creadas.
	copy(c.txs, s.txs)
	for id, r := range s.repackings {
		c.repackings[id] = cloneRepacking(r)
	}
	for id, smp := range s.samples {
		c.samples[id] = cloneSample(smp)
	}
	return c
}

// Store libro diario en memoria. Implementa ledger.TxRunner y repository.ProductRepository.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	state    *state
	products map[int64]*entity.Product

	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		state:    newState(),
		products: make(map[int64]*entity.Product),
		now:      time.Now,
	}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(s.repos(work)); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

func (s *Store) repos(st *state) ledger.TxRepos {
	return ledger.TxRepos{
		Ledger:       &ledgerRepo{st: st, now: s.now},
		Transactions: &transactionRepo{st: st, now: s.now},
		Repackings:   &repackingRepo{st: st, now: s.now},
		Samples:      &sampleRepo{st: st, now: s.now},
		Sequences:    &sequenceRepo{st: st},
	}
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// GetByID devuelve nil, nil si el producto no existe.
func (s *Store) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}
