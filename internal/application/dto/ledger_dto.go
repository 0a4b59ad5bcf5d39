package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// DateLayout formato de fecha de negocio en la API.
const DateLayout = "2006-01-02"

// ── Requests ─────────────────────────────────────────────────────────────────

// ProductionRequest body para POST /api/ledger/production.
type ProductionRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"quantity"`
	BatchNumber  string          `json:"batch_number" validate:"max=64"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
}

// PurchaseRequest body para POST /api/ledger/purchases.
type PurchaseRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reference    string          `json:"reference" validate:"max=255"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
}

// MaterialConsumptionRequest body para POST /api/ledger/material-consumptions.
type MaterialConsumptionRequest struct {
	MaterialProductID int64           `json:"material_product_id" validate:"required,gt=0"`
	Quantity          decimal.Decimal `json:"quantity"`
	BatchNumber       string          `json:"batch_number" validate:"max=64"`
	BusinessDate      string          `json:"business_date" validate:"required,datetime=2006-01-02"`
}

// SaleRequest body para POST /api/ledger/sales.
type SaleRequest struct {
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	Quantity    decimal.Decimal `json:"quantity"`
	OrderID     int64           `json:"order_id" validate:"required,gt=0"`
	InvoiceDate string          `json:"invoice_date" validate:"required,datetime=2006-01-02"`
}

// ReverseSaleRequest body para POST /api/ledger/sales/reversals.
type ReverseSaleRequest struct {
	OrderID     int64           `json:"order_id" validate:"required,gt=0"`
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	Quantity    decimal.Decimal `json:"quantity"`
	InvoiceDate string          `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	Reason      string          `json:"reason" validate:"required,max=500"`
}

// RepackingRequest body para POST /api/ledger/repackings.
type RepackingRequest struct {
	SourceProductID int64            `json:"source_product_id" validate:"required,gt=0"`
	SourceQuantity  decimal.Decimal  `json:"source_quantity"`
	TargetProductID int64            `json:"target_product_id" validate:"required,gt=0,nefield=SourceProductID"`
	TargetQuantity  decimal.Decimal  `json:"target_quantity"`
	StandardRatio   *decimal.Decimal `json:"standard_ratio,omitempty"`
	BusinessDate    string           `json:"business_date" validate:"required,datetime=2006-01-02"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

// SampleOutRequest body para POST /api/ledger/samples.
type SampleOutRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"quantity"`
	Recipient    string          `json:"recipient" validate:"required,max=255"`
	Purpose      string          `json:"purpose" validate:"max=500"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
}

// SampleReturnRequest body para POST /api/ledger/samples/:id/return.
type SampleReturnRequest struct {
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	Outcome          string          `json:"outcome" validate:"required,oneof=returned consumed lost"`
	ReturnDate       string          `json:"return_date" validate:"required,datetime=2006-01-02"`
}

// ConvertSampleRequest body para POST /api/ledger/samples/:id/convert.
type ConvertSampleRequest struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

// AdjustmentRequest body para POST /api/ledger/adjustments.
type AdjustmentRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
	Delta        decimal.Decimal `json:"delta"`
	Reason       string          `json:"reason" validate:"required,max=500"`
}

// WasteRequest body para POST /api/ledger/waste.
type WasteRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       string          `json:"reason" validate:"required,max=500"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
}

// ReconcileRequest body para POST /api/ledger/reconciliations.
type ReconcileRequest struct {
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	BusinessDate string          `json:"business_date" validate:"required,datetime=2006-01-02"`
	Counted      decimal.Decimal `json:"counted"`
	Reason       string          `json:"reason" validate:"max=500"`
}

// ThresholdRequest body para PUT /api/ledger/thresholds. Nil = sin umbral.
type ThresholdRequest struct {
	ProductID    int64            `json:"product_id" validate:"required,gt=0"`
	BusinessDate string           `json:"business_date" validate:"required,datetime=2006-01-02"`
	Minimum      *decimal.Decimal `json:"minimum_stock"`
	Maximum      *decimal.Decimal `json:"maximum_stock"`
}

// AvailabilityItemRequest línea de pedido a verificar.
type AvailabilityItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// AvailabilityRequest body para POST /api/ledger/availability.
type AvailabilityRequest struct {
	BusinessDate string                    `json:"business_date" validate:"required,datetime=2006-01-02"`
	Items        []AvailabilityItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// TransactionQuery filtros de GET /api/ledger/transactions.
type TransactionQuery struct {
	ProductID int64  `query:"product_id" validate:"min=0"`
	OrderID   int64  `query:"order_id" validate:"min=0"`
	Type      string `query:"type"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PageRequest
}

// ── Responses ────────────────────────────────────────────────────────────────

// LedgerRowDTO fila diaria (producto, fecha).
type LedgerRowDTO struct {
	ID                    int64            `json:"id"`
	ProductID             int64            `json:"product_id"`
	BusinessDate          string           `json:"business_date"`
	OpeningStock          decimal.Decimal  `json:"opening_stock"`
	GoodsIn               decimal.Decimal  `json:"goods_in"`
	ReservedOut           decimal.Decimal  `json:"reserved_out"`
	RepackOut             decimal.Decimal  `json:"repack_out"`
	SampleOut             decimal.Decimal  `json:"sample_out"`
	ProductionMaterialOut decimal.Decimal  `json:"production_material_out"`
	ClosingStock          decimal.Decimal  `json:"closing_stock"`
	MinimumStock          *decimal.Decimal `json:"minimum_stock,omitempty"`
	MaximumStock          *decimal.Decimal `json:"maximum_stock,omitempty"`
	Status                string           `json:"status"`
	UpdatedBy             int64            `json:"updated_by"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// TransactionDTO movimiento del registro de auditoría.
type TransactionDTO struct {
	ID                    int64           `json:"id"`
	TransactionNumber     string          `json:"transaction_number"`
	TransactionType       string          `json:"transaction_type"`
	BusinessDate          string          `json:"business_date"`
	ProductID             int64           `json:"product_id"`
	Quantity              decimal.Decimal `json:"quantity"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	OrderID               *int64          `json:"order_id,omitempty"`
	RepackingID           *int64          `json:"repacking_id,omitempty"`
	SampleTrackingID      *int64          `json:"sample_tracking_id,omitempty"`
	ProductionBatchNumber string          `json:"production_batch_number,omitempty"`
	Status                string          `json:"status"`
	Reason                string          `json:"reason,omitempty"`
	CreatedBy             int64           `json:"created_by"`
	CreatedAt             time.Time       `json:"created_at"`
}

// RepackingDTO registro de reempaque con su merma.
type RepackingDTO struct {
	ID                     int64           `json:"id"`
	RepackingNumber        string          `json:"repacking_number"`
	BusinessDate           string          `json:"business_date"`
	SourceProductID        int64           `json:"source_product_id"`
	SourceQuantity         decimal.Decimal `json:"source_quantity"`
	TargetProductID        int64           `json:"target_product_id"`
	TargetQuantity         decimal.Decimal `json:"target_quantity"`
	ConversionRatio        decimal.Decimal `json:"conversion_ratio"`
	ExpectedTargetQuantity decimal.Decimal `json:"expected_target_qty"`
	LossQuantity           decimal.Decimal `json:"loss_quantity"`
	LossPercentage         decimal.Decimal `json:"loss_percentage"`
	RepackOutTransactionID *int64          `json:"repack_out_transaction_id,omitempty"`
	RepackInTransactionID  *int64          `json:"repack_in_transaction_id,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}

// SampleDTO seguimiento de una entrega de muestras.
type SampleDTO struct {
	ID                        int64           `json:"id"`
	SampleNumber              string          `json:"sample_number"`
	BusinessDate              string          `json:"business_date"`
	ProductID                 int64           `json:"product_id"`
	Quantity                  decimal.Decimal `json:"quantity"`
	Recipient                 string          `json:"recipient"`
	Purpose                   string          `json:"purpose,omitempty"`
	Status                    string          `json:"status"`
	ReturnedQuantity          decimal.Decimal `json:"returned_quantity"`
	ReturnedAt                *time.Time      `json:"returned_at,omitempty"`
	SampleOutTransactionID    *int64          `json:"sample_out_transaction_id,omitempty"`
	SampleReturnTransactionID *int64          `json:"sample_return_transaction_id,omitempty"`
	ConvertedOrderID          *int64          `json:"converted_order_id,omitempty"`
}

// ResultDTO respuesta de toda operación de escritura.
type ResultDTO struct {
	Row          *LedgerRowDTO    `json:"row,omitempty"`
	Rows         []LedgerRowDTO   `json:"rows,omitempty"`
	Transaction  *TransactionDTO  `json:"transaction,omitempty"`
	Transactions []TransactionDTO `json:"transactions,omitempty"`
	Repacking    *RepackingDTO    `json:"repacking,omitempty"`
	Sample       *SampleDTO       `json:"sample,omitempty"`
}

// ItemAvailabilityDTO resultado por producto.
type ItemAvailabilityDTO struct {
	ProductID int64            `json:"product_id"`
	Requested decimal.Decimal  `json:"requested"`
	Available decimal.Decimal  `json:"available"`
	Shortage  decimal.Decimal  `json:"shortage"`
	Minimum   *decimal.Decimal `json:"minimum_stock,omitempty"`
	Status    string           `json:"status"`
}

// AvailabilityReportDTO respuesta de POST /api/ledger/availability.
type AvailabilityReportDTO struct {
	BusinessDate   string                `json:"business_date"`
	ValidationType string                `json:"validation_type"`
	ShouldBlock    bool                  `json:"should_block"`
	Items          []ItemAvailabilityDTO `json:"items"`
}

// InsufficientStockDTO detalle de un rechazo por stock.
type InsufficientStockDTO struct {
	ProductID    int64           `json:"product_id"`
	BusinessDate string          `json:"business_date"`
	Requested    decimal.Decimal `json:"requested"`
	Available    decimal.Decimal `json:"available"`
	Shortage     decimal.Decimal `json:"shortage"`
}

// StockCountResultDTO resultado por línea del conteo físico.
type StockCountResultDTO struct {
	Line              int             `json:"line"`
	ProductID         int64           `json:"product_id"`
	Previous          decimal.Decimal `json:"previous"`
	Counted           decimal.Decimal `json:"counted"`
	Delta             decimal.Decimal `json:"delta"`
	TransactionNumber string          `json:"transaction_number,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FromLedgerRow convierte la entidad a DTO.
func FromLedgerRow(r *entity.LedgerRow) LedgerRowDTO {
	return LedgerRowDTO{
		ID:                    r.ID,
		ProductID:             r.ProductID,
		BusinessDate:          formatDate(r.BusinessDate),
		OpeningStock:          r.OpeningStock,
		GoodsIn:               r.GoodsIn,
		ReservedOut:           r.ReservedOut,
		RepackOut:             r.RepackOut,
		SampleOut:             r.SampleOut,
		ProductionMaterialOut: r.ProductionMaterialOut,
		ClosingStock:          r.ClosingStock,
		MinimumStock:          r.MinimumStock,
		MaximumStock:          r.MaximumStock,
		Status:                r.Status(),
		UpdatedBy:             r.UpdatedBy,
		UpdatedAt:             r.UpdatedAt,
	}
}

// FromLedgerRows convierte una lista de filas.
func FromLedgerRows(rows []*entity.LedgerRow) []LedgerRowDTO {
	out := make([]LedgerRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromLedgerRow(r))
	}
	return out
}

// FromTransaction convierte la entidad a DTO.
func FromTransaction(t *entity.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                    t.ID,
		TransactionNumber:     t.TransactionNumber,
		TransactionType:       t.TransactionType,
		BusinessDate:          formatDate(t.BusinessDate),
		ProductID:             t.ProductID,
		Quantity:              t.Quantity,
		BalanceAfter:          t.BalanceAfter,
		OrderID:               t.OrderID,
		RepackingID:           t.RepackingID,
		SampleTrackingID:      t.SampleTrackingID,
		ProductionBatchNumber: t.ProductionBatchNumber,
		Status:                t.Status,
		Reason:                t.Reason,
		CreatedBy:             t.CreatedBy,
		CreatedAt:             t.CreatedAt,
	}
}

// FromTransactions convierte una lista de transacciones.
func FromTransactions(list []*entity.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(list))
	for _, t := range list {
		out = append(out, FromTransaction(t))
	}
	return out
}

// FromRepacking convierte la entidad a DTO.
func FromRepacking(r *entity.RepackingRecord) RepackingDTO {
	return RepackingDTO{
		ID:                     r.ID,
		RepackingNumber:        r.RepackingNumber,
		BusinessDate:           formatDate(r.BusinessDate),
		SourceProductID:        r.SourceProductID,
		SourceQuantity:         r.SourceQuantity,
		TargetProductID:        r.TargetProductID,
		TargetQuantity:         r.TargetQuantity,
		ConversionRatio:        r.ConversionRatio,
		ExpectedTargetQuantity: r.ExpectedTargetQuantity,
		LossQuantity:           r.LossQuantity,
		LossPercentage:         r.LossPercentage,
		RepackOutTransactionID: r.RepackOutTransactionID,
		RepackInTransactionID:  r.RepackInTransactionID,
		Notes:                  r.Notes,
		CreatedAt:              r.CreatedAt,
	}
}

// FromSample convierte la entidad a DTO.
func FromSample(s *entity.SampleTracking) SampleDTO {
	return SampleDTO{
		ID:                        s.ID,
		SampleNumber:              s.SampleNumber,
		BusinessDate:              formatDate(s.BusinessDate),
		ProductID:                 s.ProductID,
		Quantity:                  s.Quantity,
		Recipient:                 s.Recipient,
		Purpose:                   s.Purpose,
		Status:                    s.Status,
		ReturnedQuantity:          s.ReturnedQuantity,
		ReturnedAt:                s.ReturnedAt,
		SampleOutTransactionID:    s.SampleOutTransactionID,
		SampleReturnTransactionID: s.SampleReturnTransactionID,
		ConvertedOrderID:          s.ConvertedOrderID,
	}
}

// FromResult convierte el resultado de una operación del recorder.
func FromResult(res *ledger.Result) ResultDTO {
	var out ResultDTO
	if res == nil {
		return out
	}
	if res.Row != nil {
		row := FromLedgerRow(res.Row)
		out.Row = &row
	}
	if len(res.Rows) > 1 {
		out.Rows = FromLedgerRows(res.Rows)
	}
	if res.Transaction != nil {
		tx := FromTransaction(res.Transaction)
		out.Transaction = &tx
	}
	if len(res.Transactions) > 1 {
		out.Transactions = FromTransactions(res.Transactions)
	}
	if res.Repacking != nil {
		rec := FromRepacking(res.Repacking)
		out.Repacking = &rec
	}
	if res.Sample != nil {
		s := FromSample(res.Sample)
		out.Sample = &s
	}
	return out
}

// FromAvailabilityReport convierte el reporte de disponibilidad.
func FromAvailabilityReport(r *ledger.AvailabilityReport) AvailabilityReportDTO {
	out := AvailabilityReportDTO{
		BusinessDate:   formatDate(r.BusinessDate),
		ValidationType: r.ValidationType,
		ShouldBlock:    r.ShouldBlock,
		Items:          make([]ItemAvailabilityDTO, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, ItemAvailabilityDTO{
			ProductID: it.ProductID,
			Requested: it.Requested,
			Available: it.Available,
			Shortage:  it.Shortage,
			Minimum:   it.Minimum,
			Status:    it.Status,
		})
	}
	return out
}

// FromInsufficientStock detalle para la respuesta 409.
func FromInsufficientStock(e *domain.InsufficientStockError) InsufficientStockDTO {
	return InsufficientStockDTO{
		ProductID:    e.ProductID,
		BusinessDate: formatDate(e.BusinessDate),
		Requested:    e.Requested,
		Available:    e.Available,
		Shortage:     e.Shortage,
	}
}

// FromStockCountResults convierte el resumen del conteo físico.
func FromStockCountResults(results []ledger.StockCountResult) []StockCountResultDTO {
	out := make([]StockCountResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, StockCountResultDTO{
			Line:              r.Line,
			ProductID:         r.ProductID,
			Previous:          r.Previous,
			Counted:           r.Counted,
			Delta:             r.Delta,
			TransactionNumber: r.TransactionNumber,
			Error:             r.Error,
		})
	}
	return out
}
