package stockdb

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Stock represents a single catalog entry. Symbol is stored
// uppercase-normalized and is unique across the collection.
type Stock struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	Volume    int64   `json:"volume"`
	MarketCap float64 `json:"market_cap"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// StockCreate is the input for creating a new stock. Change, Volume and
// MarketCap default to zero when omitted.
type StockCreate struct {
	Symbol    string  `json:"symbol" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	Volume    int64   `json:"volume" validate:"gte=0"`
	MarketCap float64 `json:"market_cap"`
}

// StockUpdate is a partial update. Nil fields leave the stored value
// untouched; non-nil fields overwrite, including explicit zero values.
type StockUpdate struct {
	Symbol    *string  `json:"symbol,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Change    *float64 `json:"change,omitempty"`
	Volume    *int64   `json:"volume,omitempty" validate:"omitempty,gte=0"`
	MarketCap *float64 `json:"market_cap,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (u StockUpdate) IsEmpty() bool {
	return u.Symbol == nil && u.Name == nil && u.Price == nil &&
		u.Change == nil && u.Volume == nil && u.MarketCap == nil
}

var validate = validator.New()

// Validate checks the create input against its struct tags.
func (c StockCreate) Validate() error {
	if strings.TrimSpace(c.Symbol) == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be blank"}
	}
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{
				Field:  strings.ToLower(errs[0].Field()),
				Reason: "failed " + errs[0].Tag() + " constraint",
			}
		}
		return err
	}
	return nil
}

// Validate checks the update patch against its struct tags.
func (u StockUpdate) Validate() error {
	if u.Symbol != nil && strings.TrimSpace(*u.Symbol) == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be blank"}
	}
	if err := validate.Struct(u); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{
				Field:  strings.ToLower(errs[0].Field()),
				Reason: "failed " + errs[0].Tag() + " constraint",
			}
		}
		return err
	}
	return nil
}

// NormalizeSymbol returns the canonical stored form of a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
