package swap

import (
	"math"
	"strconv"
)

// Field names a form input that can carry a validation error.
type Field string

const (
	FieldSourceAsset      Field = "source-asset"
	FieldDestinationAsset Field = "destination-asset"
	FieldSourceAmount     Field = "source-amount"
)

const (
	MsgSelectSource      = "Please select source token"
	MsgSelectDest        = "Please select destination token"
	MsgSameAsset         = "Source and destination tokens must be different"
	MsgEnterAmount       = "Please enter amount"
	MsgInsufficient      = "Insufficient balance"
	MsgAmountNotPositive = "Amount must be greater than 0"
)

type ValidationError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// Validate checks the form in a fixed order and returns every problem found.
// An empty result means the form can be submitted.
func Validate(form FormState, sufficientBalance bool) []ValidationError {
	var errs []ValidationError

	if form.Source == nil {
		errs = append(errs, ValidationError{Field: FieldSourceAsset, Message: MsgSelectSource})
	}
	if form.Destination == nil {
		errs = append(errs, ValidationError{Field: FieldDestinationAsset, Message: MsgSelectDest})
	}
	if form.Source != nil && form.Destination != nil && form.Source.Symbol == form.Destination.Symbol {
		errs = append(errs, ValidationError{Field: FieldDestinationAsset, Message: MsgSameAsset})
	}

	switch {
	case form.SourceAmount == "" || form.SourceAmount == "0":
		errs = append(errs, ValidationError{Field: FieldSourceAmount, Message: MsgEnterAmount})
	case !sufficientBalance:
		errs = append(errs, ValidationError{Field: FieldSourceAmount, Message: MsgInsufficient})
	default:
		v, err := strconv.ParseFloat(form.SourceAmount, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			errs = append(errs, ValidationError{Field: FieldSourceAmount, Message: MsgAmountNotPositive})
		}
	}
	return errs
}

// ErrorFor returns the first message recorded for field.
func ErrorFor(errs []ValidationError, field Field) (string, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

func withoutFields(errs []ValidationError, fields ...Field) []ValidationError {
	out := errs[:0:0]
	for _, e := range errs {
		drop := false
		for _, f := range fields {
			if e.Field == f {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, e)
		}
	}
	return out
}
