package http

import (
	"bytes"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-api/internal/application/dto"
	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// LedgerHandler expone el libro diario de inventario (protegido).
type LedgerHandler struct {
	recorder *ledger.TransactionRecorder
	checker  *ledger.AvailabilityChecker
	queries  *ledger.LedgerQueries
	importer *ledger.StockCountImporter
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

// LedgerHandlerDeps dependencias del handler. Location define el "hoy" del negocio.
type LedgerHandlerDeps struct {
	Recorder *ledger.TransactionRecorder
	Checker  *ledger.AvailabilityChecker
	Queries  *ledger.LedgerQueries
	Importer *ledger.StockCountImporter
	Location *time.Location
	Now      func() time.Time
	Log      zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(deps LedgerHandlerDeps) *LedgerHandler {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &LedgerHandler{
		recorder: deps.Recorder,
		checker:  deps.Checker,
		queries:  deps.Queries,
		importer: deps.Importer,
		validate: newValidator(),
		loc:      loc,
		now:      now,
		log:      deps.Log,
	}
}

// today fecha de negocio actual en la zona configurada.
func (h *LedgerHandler) today() time.Time {
	return entity.BusinessDate(h.now().In(h.loc))
}

// bind parsea y valida el body. Devuelve false si ya respondió con error.
func (h *LedgerHandler) bind(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

func (h *LedgerHandler) created(c *fiber.Ctx, res *ledger.Result, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromResult(res))
}

func (h *LedgerHandler) ok(c *fiber.Ctx, res *ledger.Result, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromResult(res))
}

// RecordProduction godoc
// @Summary      Registrar producción
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "product_id, quantity, batch_number, business_date"
// @Success      201   {object}  dto.ResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/production [post]
func (h *LedgerHandler) RecordProduction(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordProduction(c.UserContext(), ledger.ProductionInput{
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		BatchNumber:  in.BatchNumber,
		BusinessDate: date,
		UserID:       GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordPurchase godoc
// @Summary      Registrar compra recibida
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/purchases [post]
func (h *LedgerHandler) RecordPurchase(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordPurchase(c.UserContext(), ledger.PurchaseInput{
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Reference:    in.Reference,
		BusinessDate: date,
		UserID:       GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordMaterialConsumption godoc
// @Summary      Registrar consumo de material en producción
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/material-consumptions [post]
func (h *LedgerHandler) RecordMaterialConsumption(c *fiber.Ctx) error {
	var in dto.MaterialConsumptionRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordMaterialConsumption(c.UserContext(), ledger.MaterialConsumptionInput{
		MaterialProductID: in.MaterialProductID,
		Quantity:          in.Quantity,
		BatchNumber:       in.BatchNumber,
		BusinessDate:      date,
		UserID:            GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordSale godoc
// @Summary      Registrar venta (reserva de stock por pedido)
// @Tags         ledger
// @Security     Bearer
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con detalle"
// @Router       /api/ledger/sales [post]
func (h *LedgerHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.InvoiceDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordSale(c.UserContext(), ledger.SaleInput{
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		OrderID:     in.OrderID,
		InvoiceDate: date,
		UserID:      GetUserID(c),
	})
	return h.created(c, res, err)
}

// ReverseSale godoc
// @Summary      Reversar venta (cancelación de pedido)
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/sales/reversals [post]
func (h *LedgerHandler) ReverseSale(c *fiber.Ctx) error {
	var in dto.ReverseSaleRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.InvoiceDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.ReverseSale(c.UserContext(), ledger.ReverseSaleInput{
		OrderID:     in.OrderID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		InvoiceDate: date,
		Reason:      in.Reason,
		UserID:      GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordRepacking godoc
// @Summary      Registrar reempaque (origen -> destino) con merma
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/repackings [post]
func (h *LedgerHandler) RecordRepacking(c *fiber.Ctx) error {
	var in dto.RepackingRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordRepacking(c.UserContext(), ledger.RepackingInput{
		SourceProductID: in.SourceProductID,
		SourceQuantity:  in.SourceQuantity,
		TargetProductID: in.TargetProductID,
		TargetQuantity:  in.TargetQuantity,
		StandardRatio:   in.StandardRatio,
		BusinessDate:    date,
		Notes:           in.Notes,
		UserID:          GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordSampleOut godoc
// @Summary      Entregar muestras
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/samples [post]
func (h *LedgerHandler) RecordSampleOut(c *fiber.Ctx) error {
	var in dto.SampleOutRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordSampleOut(c.UserContext(), ledger.SampleOutInput{
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Recipient:    in.Recipient,
		Purpose:      in.Purpose,
		BusinessDate: date,
		UserID:       GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordSampleReturn godoc
// @Summary      Cerrar muestra (devuelta, consumida o perdida)
// @Tags         ledger
// @Security     Bearer
// @Param        id  path  int  true  "ID de la muestra"
// @Router       /api/ledger/samples/{id}/return [post]
func (h *LedgerHandler) RecordSampleReturn(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.SampleReturnRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.ReturnDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordSampleReturn(c.UserContext(), ledger.SampleReturnInput{
		SampleID:         int64(id),
		ReturnedQuantity: in.ReturnedQuantity,
		Outcome:          in.Outcome,
		ReturnDate:       date,
		UserID:           GetUserID(c),
	})
	return h.ok(c, res, err)
}

// ConvertSampleToSale godoc
// @Summary      Convertir muestra en venta
// @Tags         ledger
// @Security     Bearer
// @Param        id  path  int  true  "ID de la muestra"
// @Router       /api/ledger/samples/{id}/convert [post]
func (h *LedgerHandler) ConvertSampleToSale(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.ConvertSampleRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	res, err := h.recorder.ConvertSampleToSale(c.UserContext(), ledger.ConvertSampleInput{
		SampleID: int64(id),
		OrderID:  in.OrderID,
		UserID:   GetUserID(c),
	})
	return h.ok(c, res, err)
}

// AdjustStock godoc
// @Summary      Ajuste manual de saldo inicial
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.AdjustStock(c.UserContext(), ledger.AdjustmentInput{
		ProductID:    in.ProductID,
		BusinessDate: date,
		Delta:        in.Delta,
		Reason:       in.Reason,
		UserID:       GetUserID(c),
	})
	return h.created(c, res, err)
}

// RecordWaste godoc
// @Summary      Registrar merma o vencimiento
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/waste [post]
func (h *LedgerHandler) RecordWaste(c *fiber.Ctx) error {
	var in dto.WasteRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.RecordWaste(c.UserContext(), ledger.WasteInput{
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		BusinessDate: date,
		UserID:       GetUserID(c),
	})
	return h.created(c, res, err)
}

// ReconcileStock godoc
// @Summary      Conciliar contra conteo físico de un producto
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/reconciliations [post]
func (h *LedgerHandler) ReconcileStock(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.ReconcileStock(c.UserContext(), ledger.ReconcileInput{
		ProductID:    in.ProductID,
		BusinessDate: date,
		Counted:      in.Counted,
		Reason:       in.Reason,
		UserID:       GetUserID(c),
	})
	return h.ok(c, res, err)
}

// SetThresholds godoc
// @Summary      Definir stock mínimo y máximo de una fila
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/thresholds [put]
func (h *LedgerHandler) SetThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.recorder.SetThresholds(c.UserContext(), ledger.ThresholdInput{
		ProductID:    in.ProductID,
		BusinessDate: date,
		Minimum:      in.Minimum,
		Maximum:      in.Maximum,
		UserID:       GetUserID(c),
	})
	return h.ok(c, res, err)
}

// CheckAvailability godoc
// @Summary      Verificar disponibilidad de un pedido
// @Description  should_block solo es true para pedidos del mismo día con faltantes.
// @Tags         ledger
// @Security     Bearer
// @Success      200  {object}  dto.AvailabilityReportDTO
// @Router       /api/ledger/availability [post]
func (h *LedgerHandler) CheckAvailability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if ok, err := h.bind(c, &in); !ok {
		return err
	}
	date, err := parseDate(in.BusinessDate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]ledger.AvailabilityItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.AvailabilityItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	report, err := h.checker.Check(c.UserContext(), date, h.today(), items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromAvailabilityReport(report))
}

// ImportStockCount godoc
// @Summary      Importar conteo físico (CSV product_id,counted_quantity[,reason])
// @Tags         ledger
// @Security     Bearer
// @Accept       text/csv
// @Param        business_date  query  string  true   "YYYY-MM-DD"
// @Param        latin1         query  bool    false  "archivo en ISO-8859-1"
// @Router       /api/ledger/stock-counts [post]
func (h *LedgerHandler) ImportStockCount(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("business_date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	lines, err := ledger.ParseStockCount(bytes.NewReader(c.Body()), ledger.StockCountOptions{Latin1: c.QueryBool("latin1")})
	if err != nil {
		return writeError(c, h.log, err)
	}
	results, err := h.importer.ApplyStockCount(c.UserContext(), date, lines, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	return c.JSON(fiber.Map{
		"business_date": date.Format(dto.DateLayout),
		"total":         len(results),
		"failed":        failed,
		"lines":         dto.FromStockCountResults(results),
	})
}

// GetRow godoc
// @Summary      Fila diaria de un producto
// @Tags         ledger
// @Security     Bearer
// @Param        productId  path  int     true  "ID del producto"
// @Param        date       path  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.LedgerRowDTO
// @Router       /api/ledger/products/{productId}/rows/{date} [get]
func (h *LedgerHandler) GetRow(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "producto inválido"})
	}
	date, err := parseDate(c.Params("date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	row, err := h.queries.GetRow(c.UserContext(), int64(productID), date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromLedgerRow(row))
}

// ListRowsByProduct godoc
// @Summary      Historial diario de un producto
// @Tags         ledger
// @Security     Bearer
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Router       /api/ledger/products/{productId}/rows [get]
func (h *LedgerHandler) ListRowsByProduct(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "producto inválido"})
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	rows, err := h.queries.ListRowsByProduct(c.UserContext(), int64(productID), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "rows": dto.FromLedgerRows(rows)})
}

// ListRowsByDate godoc
// @Summary      Libro diario de una fecha (todos los productos)
// @Tags         ledger
// @Security     Bearer
// @Param        date    query  string  true   "YYYY-MM-DD"
// @Param        limit   query  int     false  "máx. 500"
// @Param        offset  query  int     false  "desplazamiento"
// @Router       /api/ledger/rows [get]
func (h *LedgerHandler) ListRowsByDate(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := h.validate.Struct(page); err != nil {
		return validationError(c, err)
	}
	page.DefaultPage()
	rows, err := h.queries.ListRowsByDate(c.UserContext(), date, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		"rows": dto.FromLedgerRows(rows),
	})
}

// ListTransactions godoc
// @Summary      Consultar registro de transacciones
// @Tags         ledger
// @Security     Bearer
// @Param        product_id  query  int     false  "producto"
// @Param        order_id    query  int     false  "pedido"
// @Param        type        query  string  false  "tipo de transacción"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Router       /api/ledger/transactions [get]
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	var q dto.TransactionQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := h.validate.Struct(q); err != nil {
		return validationError(c, err)
	}
	q.DefaultPage()
	filter := repository.TransactionFilter{Type: q.Type, Limit: q.Limit, Offset: q.Offset}
	if q.ProductID > 0 {
		filter.ProductID = &q.ProductID
	}
	if q.OrderID > 0 {
		filter.OrderID = &q.OrderID
	}
	var err error
	if filter.From, err = parseOptionalDate(q.From); err != nil {
		return writeError(c, h.log, err)
	}
	if filter.To, err = parseOptionalDate(q.To); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.queries.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"page":         dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
		"transactions": dto.FromTransactions(list),
	})
}

// GetTransaction godoc
// @Summary      Obtener transacción por ID
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	tx, err := h.queries.GetTransaction(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromTransaction(tx))
}

// GetRepacking godoc
// @Summary      Obtener reempaque por ID
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/repackings/{id} [get]
func (h *LedgerHandler) GetRepacking(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	rec, err := h.queries.GetRepacking(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromRepacking(rec))
}

// GetSample godoc
// @Summary      Obtener muestra por ID
// @Tags         ledger
// @Security     Bearer
// @Router       /api/ledger/samples/{id} [get]
func (h *LedgerHandler) GetSample(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	s, err := h.queries.GetSample(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromSample(s))
}
