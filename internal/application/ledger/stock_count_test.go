package ledger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
)

func TestParseStockCount_ComaConEncabezado(t *testing.T) {
	in := "product_id,counted_quantity,reason\n1,12.5,conteo mensual\n2,0\n"
	lines, err := ledger.ParseStockCount(strings.NewReader(in), ledger.StockCountOptions{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	requireDec(t, "12.5", lines[0].Counted)
	assert.Equal(t, "conteo mensual", lines[0].Reason)
	requireDec(t, "0", lines[1].Counted)
}

func TestParseStockCount_PuntoYComaLatin1(t *testing.T) {
	utf := "producto;cantidad;motivo\n3;7,25;revisión bodega\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)

	lines, err := ledger.ParseStockCount(bytes.NewReader([]byte(encoded)), ledger.StockCountOptions{Latin1: true})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	requireDec(t, "7.25", lines[0].Counted)
	assert.Equal(t, "revisión bodega", lines[0].Reason)
}

func TestParseStockCount_Rechazos(t *testing.T) {
	cases := map[string]string{
		"vacío":             "  \n",
		"cantidad negativa": "1,-2\n",
		"producto inválido": "1,2\nabc,3\n",
		"repetido":          "1,2\n1,3\n",
		"sin cantidad":      "1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ledger.ParseStockCount(strings.NewReader(in), ledger.StockCountOptions{})
			assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		})
	}
}

func TestApplyStockCount(t *testing.T) {
	f := newFixture(t)
	f.produce(t, productBulk, "40", day(1))
	f.produce(t, productRetail, "10", day(1))
	f.sell(t, productBulk, "3", 1, day(2))

	importer := ledger.NewStockCountImporter(f.recorder)
	results, err := importer.ApplyStockCount(context.Background(), day(1), []ledger.StockCountLine{
		{Line: 1, ProductID: productBulk, Counted: dec("37")},
		{Line: 2, ProductID: productRetail, Counted: dec("10")},
		{Line: 3, ProductID: 404, Counted: dec("1")},
	}, testUserID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	requireDec(t, "40", results[0].Previous)
	requireDec(t, "-3", results[0].Delta)
	assert.NotEmpty(t, results[0].TransactionNumber)
	assert.Empty(t, results[0].Error)

	requireDec(t, "0", results[1].Delta)
	assert.Empty(t, results[1].TransactionNumber, "sin diferencia no hay ajuste")

	assert.NotEmpty(t, results[2].Error)

	requireDec(t, "37", f.row(t, productBulk, day(1)).ClosingStock)
	requireDec(t, "34", f.row(t, productBulk, day(2)).ClosingStock, "el ajuste se propaga")
}
