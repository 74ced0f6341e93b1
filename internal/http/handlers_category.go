package http

import (
	"net/http"

	"pocketrithm/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	kind := core.CategoryKind(r.URL.Query().Get("type"))
	if kind != "" {
		if err := kind.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
	}

	categories, err := s.categories.List(r.Context(), user.ID, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = ""
	c.UserID = user.ID

	if err := s.categories.Create(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = r.PathValue("id")
	c.UserID = user.ID

	if err := s.categories.Update(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.categories.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReorderCategories(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req struct {
		Type core.CategoryKind `json:"type"`
		IDs  []string          `json:"ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.categories.Reorder(r.Context(), user.ID, req.Type, req.IDs); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	seeded, err := s.categories.SeedDefaults(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"seeded": seeded})
}
