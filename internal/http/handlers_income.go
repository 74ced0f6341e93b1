package http

import (
	"net/http"

	"pocketrithm/internal/core"
)

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	filter, err := entryFilterFrom(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	incomes, err := s.ledger.ListIncomes(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var i core.Income
	if err := decodeJSON(r, &i); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	i.ID = ""
	i.UserID = user.ID

	if err := s.ledger.CreateIncome(r.Context(), &i); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	i, err := s.ledger.GetIncome(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var i core.Income
	if err := decodeJSON(r, &i); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	i.ID = r.PathValue("id")
	i.UserID = user.ID

	if err := s.ledger.UpdateIncome(r.Context(), &i); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.ledger.DeleteIncome(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
