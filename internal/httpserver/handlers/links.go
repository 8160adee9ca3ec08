package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpx"
)

// ListLinks returns the full catalog: folders in display order, each with its
// links in insertion order. Read-only — never touches claim state.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders := d.Catalog.List(r.Context())
		httpx.WriteJSON(w, http.StatusOK, folders)
	}
}
