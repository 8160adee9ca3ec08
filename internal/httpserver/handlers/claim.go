package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkdrop/internal/httpx"
)

type claimRequest struct {
	ID string `json:"id"`
}

type claimResponse struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
}

// Claim redeems a link for the calling visitor, subject to the global
// cooldown.
func Claim(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[claimRequest](r)
		if err != nil || req.ID == "" {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		visitorID := mw.VisitorID(r.Context())
		url, err := d.Catalog.Claim(r.Context(), visitorID, req.ID)
		if err != nil {
			httpx.Fail(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, claimResponse{OK: true, URL: url})
	}
}
