package ledger

import "errors"

var (
	ErrInvalidQuantity = errors.New("transfer quantity must be finite and non-negative")
	ErrSameAsset       = errors.New("transfer source and destination must differ")
	ErrEmptySymbol     = errors.New("asset symbol is required")
)
