package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/inventory"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository    = (*transactionRepo)(nil)
	_ repository.RepackingRepository      = (*repackingRepo)(nil)
	_ repository.SampleTrackingRepository = (*sampleRepo)(nil)
	_ repository.SequenceRepository       = (*sequenceRepo)(nil)
)

type transactionRepo struct {
	st  *state
	now func() time.Time
}

func (r *transactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	for _, t := range r.st.txs {
		if t.TransactionNumber == tx.TransactionNumber {
			return domain.ErrConflict
		}
	}
	r.st.nextTxID++
	tx.ID = r.st.nextTxID
	tx.BusinessDate = entity.BusinessDate(tx.BusinessDate)
	tx.CreatedAt = r.now()
	c := *tx
	r.st.txs = append(r.st.txs, &c)
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	for _, t := range r.st.txs {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (r *transactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, t := range r.st.txs {
		if f.ProductID != nil && t.ProductID != *f.ProductID {
			continue
		}
		if f.OrderID != nil && (t.OrderID == nil || *t.OrderID != *f.OrderID) {
			continue
		}
		if f.Type != "" && t.TransactionType != f.Type {
			continue
		}
		if f.From != nil && t.BusinessDate.Before(*f.From) {
			continue
		}
		if f.To != nil && t.BusinessDate.After(*f.To) {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, f.Limit, f.Offset), nil
}

func (r *transactionRepo) NetSaleQuantity(_ context.Context, orderID, productID int64, date time.Time) (decimal.Decimal, error) {
	date = entity.BusinessDate(date)
	sum := decimal.Zero
	for _, t := range r.st.txs {
		if t.TransactionType != entity.TransactionTypeSale || t.ProductID != productID ||
			t.OrderID == nil || *t.OrderID != orderID || !t.BusinessDate.Equal(date) {
			continue
		}
		sum = sum.Add(t.Quantity)
	}
	// Ventas negativas, reversos positivos.
	return sum.Neg(), nil
}

type repackingRepo struct {
	st  *state
	now func() time.Time
}

func (r *repackingRepo) Create(_ context.Context, rec *entity.RepackingRecord) error {
	for _, x := range r.st.repackings {
		if x.RepackingNumber == rec.RepackingNumber {
			return domain.ErrConflict
		}
	}
	now := r.now()
	r.st.nextRepackingID++
	rec.ID = r.st.nextRepackingID
	rec.BusinessDate = entity.BusinessDate(rec.BusinessDate)
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.st.repackings[rec.ID] = cloneRepacking(rec)
	return nil
}

func (r *repackingRepo) LinkTransactions(_ context.Context, id, outTxID, inTxID int64) error {
	rec, ok := r.st.repackings[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.RepackOutTransactionID, rec.RepackInTransactionID = &outTxID, &inTxID
	rec.UpdatedAt = r.now()
	return nil
}

func (r *repackingRepo) GetByID(_ context.Context, id int64) (*entity.RepackingRecord, error) {
	rec, ok := r.st.repackings[id]
	if !ok {
		return nil, nil
	}
	return cloneRepacking(rec), nil
}

type sampleRepo struct {
	st  *state
	now func() time.Time
}

func (r *sampleRepo) Create(_ context.Context, s *entity.SampleTracking) error {
	for _, x := range r.st.samples {
		if x.SampleNumber == s.SampleNumber {
			return domain.ErrConflict
		}
	}
	now := r.now()
	r.st.nextSampleID++
	s.ID = r.st.nextSampleID
	s.BusinessDate = entity.BusinessDate(s.BusinessDate)
	s.CreatedAt, s.UpdatedAt = now, now
	r.st.samples[s.ID] = cloneSample(s)
	return nil
}

func (r *sampleRepo) GetByID(_ context.Context, id int64) (*entity.SampleTracking, error) {
	s, ok := r.st.samples[id]
	if !ok {
		return nil, nil
	}
	return cloneSample(s), nil
}

func (r *sampleRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.SampleTracking, error) {
	return r.GetByID(ctx, id)
}

func (r *sampleRepo) Update(_ context.Context, s *entity.SampleTracking) error {
	if _, ok := r.st.samples[s.ID]; !ok {
		return domain.ErrNotFound
	}
	s.UpdatedAt = r.now()
	r.st.samples[s.ID] = cloneSample(s)
	return nil
}

// sequenceRepo deriva el consecutivo del mayor número existente del prefijo en el día.
type sequenceRepo struct {
	st *state
}

func (r *sequenceRepo) NextSequence(_ context.Context, prefix string, date time.Time) (int, error) {
	var numbers []string
	switch prefix {
	case entity.PrefixRepacking:
		for _, x := range r.st.repackings {
			numbers = append(numbers, x.RepackingNumber)
		}
	case entity.PrefixSample:
		for _, x := range r.st.samples {
			numbers = append(numbers, x.SampleNumber)
		}
	default:
		for _, x := range r.st.txs {
			numbers = append(numbers, x.TransactionNumber)
		}
	}
	last := 0
	for _, n := range numbers {
		if seq, ok := inventory.ParseSequence(n, prefix, date); ok && seq > last {
			last = seq
		}
	}
	return last + 1, nil
}

func cloneRepacking(r *entity.RepackingRecord) *entity.RepackingRecord {
	c := *r
	if r.RepackOutTransactionID != nil {
		v := *r.RepackOutTransactionID
		c.RepackOutTransactionID = &v
	}
	if r.RepackInTransactionID != nil {
		v := *r.RepackInTransactionID
		c.RepackInTransactionID = &v
	}
	return &c
}

func cloneSample(s *entity.SampleTracking) *entity.SampleTracking {
	c := *s
	for _, p := range []**int64{&c.SampleOutTransactionID, &c.SampleReturnTransactionID, &c.ConvertedOrderID} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if s.ReturnedAt != nil {
		v := *s.ReturnedAt
		c.ReturnedAt = &v
	}
	return &c
}
