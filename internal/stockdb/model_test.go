package stockdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockCreateValidate(t *testing.T) {
	valid := StockCreate{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43}
	assert.NoError(t, valid.Validate())

	// Optional quantities default to zero and are fine
	minimal := StockCreate{Symbol: "A", Name: "A Co"}
	assert.NoError(t, minimal.Validate())

	tests := []struct {
		name  string
		input StockCreate
	}{
		{"missing symbol", StockCreate{Name: "No symbol", Price: 1}},
		{"blank symbol", StockCreate{Symbol: "   ", Name: "Blank", Price: 1}},
		{"missing name", StockCreate{Symbol: "AAPL", Price: 1}},
		{"negative volume", StockCreate{Symbol: "AAPL", Name: "Apple Inc.", Price: 1, Volume: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			assert.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestStockUpdateValidate(t *testing.T) {
	price := 10.0
	assert.NoError(t, StockUpdate{Price: &price}.Validate())

	// An empty patch is valid; it just refreshes nothing but the timestamp
	assert.NoError(t, StockUpdate{}.Validate())

	blank := "  "
	err := StockUpdate{Symbol: &blank}.Validate()
	assert.Error(t, err)
	assert.True(t, IsValidation(err))

	negative := int64(-1)
	err = StockUpdate{Volume: &negative}.Validate()
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestStockUpdateIsEmpty(t *testing.T) {
	assert.True(t, StockUpdate{}.IsEmpty())

	name := "New Name"
	assert.False(t, StockUpdate{Name: &name}.IsEmpty())
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("aapl"))
	assert.Equal(t, "AAPL", NormalizeSymbol("  AaPl "))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
}
