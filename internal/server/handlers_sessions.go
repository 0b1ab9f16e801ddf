package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type submitResponse struct {
	Receipt swap.Receipt `json:"receipt"`
	View    swap.View    `json:"view"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	c := s.newController()
	if err := c.Load(r.Context()); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	s.sessions.Add(c)
	s.metrics.SessionOpened()
	s.log.Info("session opened", zap.String("session", c.ID()))

	writeJSON(w, http.StatusCreated, c.View())
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.IDs())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Remove(id) {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error())
		return
	}
	s.metrics.SessionClosed()
	if _, err := s.store.DeleteSession(r.Context(), id); err != nil {
		s.log.Warn("drop session journal", zap.String("session", id), zap.Error(err))
	}
	s.log.Info("session closed", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectSource(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, func(c *swap.Controller) error { return c.SelectSource(req.Symbol) })
}

func (s *Server) selectDestination(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, func(c *swap.Controller) error { return c.SelectDestination(req.Symbol) })
}

func (s *Server) editAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	s.apply(w, r, func(c *swap.Controller) error { return c.EditAmount(req.Amount) })
}

func (s *Server) flip(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, (*swap.Controller).Flip)
}

func (s *Server) setMax(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, (*swap.Controller).SetMax)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(c *swap.Controller) error {
		_, err := c.Validate()
		return err
	})
}

func (s *Server) dismissConfirmation(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, func(c *swap.Controller) error {
		c.DismissConfirmation()
		return nil
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	receipt, err := c.Submit(r.Context())
	if errors.Is(err, swap.ErrInvalidForm) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  err.Error(),
			Fields: c.View().Errors,
		})
		return
	}
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Receipt: receipt, View: c.View()})
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Ledger().Holdings())
}

// apply runs one intent and answers with the resulting view.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, intent func(*swap.Controller) error) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := intent(c); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*swap.Controller, bool) {
	c, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return nil, false
	}
	return c, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
