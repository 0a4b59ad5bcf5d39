package inventory

import (
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Escalas de redondeo del cálculo de reempaque (coinciden con las columnas NUMERIC).
const (
	ratioScale      = 4
	quantityScale   = 3
	percentageScale = 2
)

var (
	hundred = decimal.NewFromInt(100)
	// minRatio menor relación que cabe en conversion_ratio NUMERIC(18,4).
	minRatio = decimal.New(1, -ratioScale)
)

// RepackingCalculation resultado del cálculo de conversión y merma.
type RepackingCalculation struct {
	ConversionRatio        decimal.Decimal
	ExpectedTargetQuantity decimal.Decimal
	LossQuantity           decimal.Decimal
	LossPercentage         decimal.Decimal
}

// CalculateRepacking implementa la conversión (servicio de dominio puro).
//
//	ratio    = origen / destino
//	esperado = origen / ratio
//	merma    = esperado - destino
//	% merma  = merma / origen * 100
//
// El ida y vuelta origen/ratio es intencional: con cantidades redondeadas expone la merma.
func CalculateRepacking(sourceQty, targetQty decimal.Decimal) (RepackingCalculation, error) {
	if !targetQty.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("cantidad destino debe ser mayor que cero")
	}
	if !sourceQty.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("cantidad origen debe ser mayor que cero")
	}
	exact := sourceQty.DivRound(targetQty, ratioScale+4)
	ratio := exact.Round(ratioScale)
	if !ratio.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("relación origen/destino %s menor que el mínimo registrable %s", exact, minRatio)
	}
	return CalculateRepackingWithRatio(sourceQty, targetQty, ratio)
}

// CalculateRepackingWithRatio usa una relación estándar conocida (p. ej. 1 bulto = 4 paquetes)
// en lugar de derivarla de las cantidades; así la merma refleja la pérdida real del proceso.
func CalculateRepackingWithRatio(sourceQty, targetQty, ratio decimal.Decimal) (RepackingCalculation, error) {
	if !sourceQty.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("cantidad origen debe ser mayor que cero")
	}
	if !targetQty.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("cantidad destino debe ser mayor que cero")
	}
	if !ratio.IsPositive() {
		return RepackingCalculation{}, domain.Invalid("relación de conversión debe ser mayor que cero")
	}
	expected := sourceQty.DivRound(ratio, quantityScale+4).Round(quantityScale)
	loss := expected.Sub(targetQty)
	lossPct := loss.DivRound(sourceQty, percentageScale+4).Mul(hundred).Round(percentageScale)
	return RepackingCalculation{
		ConversionRatio:        ratio,
		ExpectedTargetQuantity: expected,
		LossQuantity:           loss,
		LossPercentage:         lossPct,
	}, nil
}
