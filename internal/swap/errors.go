package swap

import "errors"

var (
	ErrLoading             = errors.New("swap form is still loading")
	ErrUnknownAsset        = errors.New("asset not in catalog")
	ErrInvalidAmountSyntax = errors.New("amount must be digits with at most one decimal point")
	ErrInvalidForm         = errors.New("swap form has validation errors")
	ErrNoQuote             = errors.New("swap quantities must both be positive")
	ErrReceiptNotFound     = errors.New("swap receipt not found")
)
