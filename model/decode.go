package model

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation marks any failure at the raw-input boundary. Callers match it
// with errors.Is; the wrapped detail carries the per-field ozzo report.
var ErrValidation = errors.New("validation failed")

// Decode parses raw untyped input into a validatable destination and runs its
// schema. Invalid input fails the whole request: no partial filter or payload
// ever reaches an engine.
func Decode(raw []byte, dst validation.Validatable) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
