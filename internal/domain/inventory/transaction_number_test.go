package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ledger-api/internal/domain/inventory"
)

func TestFormatNumber(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "TRX-20261019-0001", inventory.FormatNumber("TRX", date, 1))
	assert.Equal(t, "RPK-20261019-0042", inventory.FormatNumber("RPK", date, 42))
	assert.Equal(t, "TRX-20261019-12345", inventory.FormatNumber("TRX", date, 12345), "crece más allá de 4 dígitos")
}

func TestParseSequence(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	n, ok := inventory.ParseSequence("TRX-20261019-0007", "TRX", date)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = inventory.ParseSequence("TRX-20261018-0007", "TRX", date)
	assert.False(t, ok, "otro día")
	_, ok = inventory.ParseSequence("SMP-20261019-0007", "TRX", date)
	assert.False(t, ok, "otro prefijo")
	_, ok = inventory.ParseSequence("TRX-20261019-00A7", "TRX", date)
	assert.False(t, ok, "sufijo no numérico")
}

func TestValidPrefix(t *testing.T) {
	assert.True(t, inventory.ValidPrefix("TRX"))
	assert.False(t, inventory.ValidPrefix("T"))
	assert.False(t, inventory.ValidPrefix("TR-X"))
	assert.False(t, inventory.ValidPrefix("trx"))
}
