package handler

import "net/http"

// GetHealth reports liveness. It intentionally does not touch the database:
// the process serving requests is the thing being probed.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
