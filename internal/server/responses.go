package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/swap"
)

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []swap.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, swap.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.Is(err, swap.ErrLoading):
		return http.StatusConflict
	case errors.Is(err, swap.ErrUnknownAsset),
		errors.Is(err, swap.ErrInvalidAmountSyntax):
		return http.StatusBadRequest
	case errors.Is(err, swap.ErrInvalidForm),
		errors.Is(err, swap.ErrNoQuote),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrSameAsset),
		errors.Is(err, ledger.ErrEmptySymbol):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
