package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
)

type readyzResponse struct {
	Status  string `json:"status"`
	Folders int    `json:"folders"`
}

// Readyz answers ready once the snapshot store is reachable. Loading the
// catalog is the readiness probe: the store self-heals an empty snapshot, so
// a failure here means the data directory itself is broken.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders := d.Catalog.List(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(readyzResponse{
			Status:  "ready",
			Folders: len(folders),
		})
	}
}
