package http

import (
	"net/http"

	"pocketrithm/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.ledger.BuildDashboard(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	groups, err := s.ledger.Transactions(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []core.DayGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.ledger.BuildDashboard(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	png, err := s.renderer.CategorySpending(month, d.ByCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, png)
}

// handleTypeChart renders the need/desire/lack breakdown as a pie chart.
func (s *Server) handleTypeChart(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	month, err := monthParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.ledger.BuildDashboard(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	png, err := s.renderer.TypeBreakdown(d.ByType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, png)
}

func writePNG(w http.ResponseWriter, png []byte) {
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
