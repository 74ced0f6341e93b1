package http

import (
	"net/http"
)

// handleDeleteAccount wipes the user's data, deletes the auth identity,
// and signs the session out. Partial failures come back as warnings with
// a 200; only a failed identity delete is an error.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	warnings, err := s.account.Delete(r.Context(), user.ID, tokenFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"warnings": warnings})
}
