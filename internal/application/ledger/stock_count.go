package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ledger-api/internal/domain"
)

// StockCountLine una línea del conteo físico (opname).
type StockCountLine struct {
	Line      int
	ProductID int64
	Counted   decimal.Decimal
	Reason    string
}

// StockCountOptions opciones de lectura del archivo de conteo.
type StockCountOptions struct {
	// Latin1 decodifica ISO-8859-1 (exportaciones de hojas de cálculo en Windows).
	Latin1 bool
}

// ParseStockCount lee "product_id,counted_quantity[,reason]". El separador (',' o ';') se detecta
// en la primera línea; con ';' la coma se acepta como separador decimal. El encabezado es opcional.
func ParseStockCount(r io.Reader, opts StockCountOptions) ([]StockCountLine, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	first, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read stock count: %w", err)
	}
	if len(bytes.TrimSpace(first)) == 0 {
		return nil, domain.Invalid("archivo de conteo vacío")
	}
	comma := ','
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
		comma = ';'
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var lines []StockCountLine
	seen := make(map[int64]int)
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.Invalid("línea %d: %v", n, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		productID, perr := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if perr != nil {
			if n == 1 {
				continue // encabezado
			}
			return nil, domain.Invalid("línea %d: producto %q inválido", n, rec[0])
		}
		if len(rec) < 2 {
			return nil, domain.Invalid("línea %d: falta la cantidad contada", n)
		}
		raw := strings.TrimSpace(rec[1])
		if comma == ';' {
			raw = strings.ReplaceAll(raw, ",", ".")
		}
		counted, derr := decimal.NewFromString(raw)
		if derr != nil || counted.IsNegative() {
			return nil, domain.Invalid("línea %d: cantidad %q inválida", n, rec[1])
		}
		if prev, dup := seen[productID]; dup {
			return nil, domain.Invalid("línea %d: producto %d repetido (línea %d)", n, productID, prev)
		}
		seen[productID] = n
		line := StockCountLine{Line: n, ProductID: productID, Counted: counted}
		if len(rec) > 2 {
			line.Reason = strings.TrimSpace(rec[2])
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("archivo de conteo sin líneas")
	}
	return lines, nil
}

// StockCountResult resultado por línea. Error vacío si la línea se aplicó.
type StockCountResult struct {
	Line              int
	ProductID         int64
	Previous          decimal.Decimal
	Counted           decimal.Decimal
	Delta             decimal.Decimal
	TransactionNumber string
	Error             string
}

// StockCountImporter aplica conteos físicos como ajustes, una unidad de trabajo por línea.
type StockCountImporter struct {
	recorder *TransactionRecorder
}

// NewStockCountImporter construye el importador.
func NewStockCountImporter(recorder *TransactionRecorder) *StockCountImporter {
	return &StockCountImporter{recorder: recorder}
}

// ApplyStockCount ajusta cada producto al conteo. Una línea fallida no detiene las demás; solo
// la cancelación del contexto corta el proceso.
func (i *StockCountImporter) ApplyStockCount(ctx context.Context, date time.Time, lines []StockCountLine, userID int64) ([]StockCountResult, error) {
	results := make([]StockCountResult, 0, len(lines))
	for _, l := range lines {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		out := StockCountResult{Line: l.Line, ProductID: l.ProductID, Counted: l.Counted}
		res, err := i.recorder.ReconcileStock(ctx, ReconcileInput{
			ProductID:    l.ProductID,
			BusinessDate: date,
			Counted:      l.Counted,
			Reason:       l.Reason,
			UserID:       userID,
		})
		if err != nil {
			out.Error = err.Error()
			results = append(results, out)
			continue
		}
		out.Delta = decimal.Zero
		out.Previous = res.Row.ClosingStock
		if res.Transaction != nil {
			out.Delta = res.Transaction.Quantity
			out.Previous = res.Row.ClosingStock.Sub(out.Delta)
			out.TransactionNumber = res.Transaction.TransactionNumber
		}
		results = append(results, out)
	}
	return results, nil
}
