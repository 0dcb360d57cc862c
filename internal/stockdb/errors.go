package stockdb

import (
	"errors"
	"fmt"
)

// ErrCorruptData is returned under the strict corruption policy when the
// persisted collection cannot be parsed.
var ErrCorruptData = errors.New("persisted stock data is corrupt")

// DuplicateSymbolError is returned by Create and Update when the symbol
// uniqueness invariant would be violated. The caller must pick a different
// symbol; retrying the same call will fail again.
type DuplicateSymbolError struct {
	Symbol string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("stock symbol %s already exists", e.Symbol)
}

// IsDuplicateSymbol reports whether err is a DuplicateSymbolError.
func IsDuplicateSymbol(err error) bool {
	var dup *DuplicateSymbolError
	return errors.As(err, &dup)
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
