package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/BrunoViet/swapdesk/internal/store"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listSwaps(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	filter := store.SwapFilter{SessionID: c.ID()}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	swaps, err := s.store.ListSwaps(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if swaps == nil {
		swaps = []swap.Receipt{}
	}
	writeJSON(w, http.StatusOK, swaps)
}

func (s *Server) getSwap(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "swapID")
	receipt, err := s.store.GetSwap(r.Context(), id)
	if err == nil && receipt.SessionID != c.ID() {
		err = fmt.Errorf("%w: %s", swap.ErrReceiptNotFound, id)
	}
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) swapVolume(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	vols, err := s.store.SessionVolume(r.Context(), c.ID())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if vols == nil {
		vols = []ledger.Volume{}
	}
	writeJSON(w, http.StatusOK, vols)
}

func (s *Server) getPrices(w http.ResponseWriter, r *http.Request) {
	var table prices.Table
	if s.opts.Prices != nil {
		table = s.opts.Prices.FetchPrices(r.Context())
	}
	if table == nil {
		table = prices.Table{}
	}
	writeJSON(w, http.StatusOK, table)
}

// listAssets serves the static catalog definitions without prices.
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, asset.BuildCatalog(s.opts.Swap.Symbols, nil, s.opts.Swap.IconBaseURL))
}
