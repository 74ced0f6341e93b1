package http

import (
	"net/http"

	"pocketrithm/internal/core"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	p, err := s.profiles.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var p core.Profile
	if err := decodeJSON(r, &p); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = user.ID

	if err := s.profiles.UpsertProfile(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
