package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"VNIndexAgent/internal/app"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/portfolio"
	"VNIndexAgent/internal/state"
)

type stateResponse struct {
	Messages        []model.Message             `json:"messages"`
	Prices          model.PriceTable            `json:"prices"`
	Portfolio       portfolio.Summary           `json:"portfolio"`
	Alerts          []model.Alert               `json:"alerts"`
	Recommendations []model.SavedRecommendation `json:"recommendations"`
	ActiveSymbol    string                      `json:"active_symbol"`
	ActivePrice     *float64                    `json:"active_price,omitempty"`
	Composing       bool                        `json:"composing"`
	Refreshing      bool                        `json:"refreshing"`
	LastUpdated     *time.Time                  `json:"last_updated,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.app.Snapshot()
	resp := stateResponse{
		Messages:        st.Messages,
		Prices:          st.Prices,
		Portfolio:       portfolio.Value(st.Portfolio),
		Alerts:          nonNil(st.Alerts),
		Recommendations: nonNil(st.Recommendations),
		ActiveSymbol:    st.ActiveSymbol,
		Composing:       st.IsComposing(),
		Refreshing:      st.Refreshing,
	}
	if p, ok := st.Prices.Lookup(st.ActiveSymbol); ok {
		resp.ActivePrice = &p
	}
	if !st.LastUpdated.IsZero() {
		resp.LastUpdated = &st.LastUpdated
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMessages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Snapshot().Messages)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Research bool   `json:"research"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	msg, err := s.app.Chat(r.Context(), req.Text, req.Research)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handlePrices(w http.ResponseWriter, _ *http.Request) {
	st := s.app.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"prices":       st.Prices,
		"refreshing":   st.Refreshing,
		"last_updated": st.LastUpdated,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res := s.app.RefreshPrices(r.Context())
	status := http.StatusOK
	if res.Skipped {
		status = http.StatusAccepted
	}
	s.writeJSON(w, status, map[string]any{
		"skipped":  res.Skipped,
		"accepted": res.Accepted,
		"rejected": len(res.Rejected),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, portfolio.Value(s.app.Snapshot().Portfolio))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	msg, err := s.app.AnalyzePortfolio(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.ReviewPortfolio(r.Context()))
}

func (s *Server) handleListAlerts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.app.Snapshot().Alerts))
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol    string          `json:"symbol"`
		Condition model.Condition `json:"condition"`
		Threshold float64         `json:"threshold"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	al, err := s.app.AddAlert(req.Symbol, req.Condition, req.Threshold)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, al)
}

func (s *Server) handleQuickAlerts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	pair, err := s.app.QuickAlerts(req.Symbol)
	if errors.Is(err, app.ErrUnknownPrice) {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, pair)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveAlert(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, state.ErrAlertNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, nonNil(s.app.Snapshot().Recommendations))
}

func (s *Server) handleSaveRecommendation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID string `json:"message_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.app.SaveRecommendation(req.MessageID)
	switch {
	case errors.Is(err, state.ErrMessageNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) handleActiveSymbol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.app.SetActiveSymbol(req.Symbol); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"active_symbol": s.app.Snapshot().ActiveSymbol})
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
