package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock de una fila del libro diario.
const (
	StockStatusOutOfStock = "OUT_OF_STOCK"
	StockStatusLowStock   = "LOW_STOCK"
	StockStatusOverstock  = "OVERSTOCK"
	StockStatusAvailable  = "AVAILABLE"
)

// LedgerColumn identifica uno de los cinco acumuladores de una fila.
type LedgerColumn string

const (
	ColumnGoodsIn               LedgerColumn = "goods_in"
	ColumnReservedOut           LedgerColumn = "reserved_out"
	ColumnRepackOut             LedgerColumn = "repack_out"
	ColumnSampleOut             LedgerColumn = "sample_out"
	ColumnProductionMaterialOut LedgerColumn = "production_material_out"
)

// Valid indica si la columna es uno de los acumuladores mutables.
func (c LedgerColumn) Valid() bool {
	switch c {
	case ColumnGoodsIn, ColumnReservedOut, ColumnRepackOut, ColumnSampleOut, ColumnProductionMaterialOut:
		return true
	}
	return false
}

// Inbound indica si el acumulador suma al cierre (goods_in) o resta (el resto).
func (c LedgerColumn) Inbound() bool {
	return c == ColumnGoodsIn
}

// LedgerRow es la fila contable de un producto en una fecha de negocio.
// ClosingStock es derivado: lo genera la BD (columna GENERATED) o Recompute en memoria.
//
//	closing = opening + goods_in - reserved_out - repack_out - sample_out - production_material_out
type LedgerRow struct {
	ID                    int64
	ProductID             int64
	BusinessDate          time.Time
	OpeningStock          decimal.Decimal
	GoodsIn               decimal.Decimal
	ReservedOut           decimal.Decimal
	RepackOut             decimal.Decimal
	SampleOut             decimal.Decimal
	ProductionMaterialOut decimal.Decimal
	ClosingStock          decimal.Decimal
	MinimumStock          *decimal.Decimal
	MaximumStock          *decimal.Decimal
	IsActive              bool
	DeletedAt             *time.Time
	CreatedBy             int64
	UpdatedBy             int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ComputeClosing aplica la fórmula contable sobre los valores actuales.
func (r *LedgerRow) ComputeClosing() decimal.Decimal {
	return r.OpeningStock.
		Add(r.GoodsIn).
		Sub(r.ReservedOut).
		Sub(r.RepackOut).
		Sub(r.SampleOut).
		Sub(r.ProductionMaterialOut)
}

// Recompute re-deriva ClosingStock. Solo lo usan stores sin columna generada.
func (r *LedgerRow) Recompute() {
	r.ClosingStock = r.ComputeClosing()
}

// Accumulator devuelve el valor del acumulador indicado.
func (r *LedgerRow) Accumulator(col LedgerColumn) decimal.Decimal {
	switch col {
	case ColumnGoodsIn:
		return r.GoodsIn
	case ColumnReservedOut:
		return r.ReservedOut
	case ColumnRepackOut:
		return r.RepackOut
	case ColumnSampleOut:
		return r.SampleOut
	case ColumnProductionMaterialOut:
		return r.ProductionMaterialOut
	}
	return decimal.Zero
}

// SetAccumulator asigna el acumulador indicado y re-deriva el cierre.
func (r *LedgerRow) SetAccumulator(col LedgerColumn, v decimal.Decimal) {
	switch col {
	case ColumnGoodsIn:
		r.GoodsIn = v
	case ColumnReservedOut:
		r.ReservedOut = v
	case ColumnRepackOut:
		r.RepackOut = v
	case ColumnSampleOut:
		r.SampleOut = v
	case ColumnProductionMaterialOut:
		r.ProductionMaterialOut = v
	}
	r.Recompute()
}

// Status clasifica el cierre contra los umbrales de la fila.
func (r *LedgerRow) Status() string {
	closing := r.ClosingStock
	if closing.LessThanOrEqual(decimal.Zero) {
		return StockStatusOutOfStock
	}
	if r.MinimumStock != nil && closing.LessThanOrEqual(*r.MinimumStock) {
		return StockStatusLowStock
	}
	if r.MaximumStock != nil && closing.GreaterThanOrEqual(*r.MaximumStock) {
		return StockStatusOverstock
	}
	return StockStatusAvailable
}

// Clone devuelve una copia profunda (los umbrales son punteros).
func (r *LedgerRow) Clone() *LedgerRow {
	c := *r
	if r.MinimumStock != nil {
		v := *r.MinimumStock
		c.MinimumStock = &v
	}
	if r.MaximumStock != nil {
		v := *r.MaximumStock
		c.MaximumStock = &v
	}
	if r.DeletedAt != nil {
		v := *r.DeletedAt
		c.DeletedAt = &v
	}
	return &c
}

// BusinessDate normaliza un instante a la fecha calendario (medianoche UTC) en su zona.
func BusinessDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
