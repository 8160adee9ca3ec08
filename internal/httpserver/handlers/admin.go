package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkdrop/internal/httpx"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/utils"
)

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

type addFolderRequest struct {
	Title string `json:"title"`
}

type addLinkRequest struct {
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

type idRequest struct {
	ID string `json:"id"`
}

// VerifyPin checks the admin PIN through the per-IP lockout gate and, on
// success, flips the admin flag on the caller's session.
func VerifyPin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[verifyPinRequest](r)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		ip := utils.ClientIP(r, d.TrustProxy)
		if err := d.Gate.Verify(ip, req.Pin); err != nil {
			httpx.Fail(w, err)
			return
		}

		d.Sessions.SetAdmin(mw.SessionToken(r.Context()))
		d.Logger.Info("admin session granted", logger.String("ip", ip))
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// AddFolder creates a catalog folder.
func AddFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[addFolderRequest](r)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		id, err := d.Catalog.AddFolder(r.Context(), req.Title)
		if err != nil {
			httpx.Fail(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
	}
}

// RemoveFolder deletes a folder and all its links.
func RemoveFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[idRequest](r)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		if err := d.Catalog.RemoveFolder(r.Context(), req.ID); err != nil {
			httpx.Fail(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// AddLink validates the URL and appends a link to a folder.
func AddLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[addLinkRequest](r)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		id, err := d.Catalog.AddLink(r.Context(), req.FolderID, req.Name, req.URL)
		if err != nil {
			httpx.Fail(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
	}
}

// RemoveLink deletes a link wherever it lives.
func RemoveLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := httpx.DecodeJSON[idRequest](r)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid_input",
			})
			return
		}

		if err := d.Catalog.RemoveLink(r.Context(), req.ID); err != nil {
			httpx.Fail(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// ClearMyTimer resets the calling admin's own claim cooldown, mainly so the
// catalog can be smoke-tested end to end.
func ClearMyTimer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitorID := mw.VisitorID(r.Context())
		if err := d.Catalog.ClearClaimTimer(r.Context(), visitorID); err != nil {
			httpx.Fail(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// Stats reports best-effort per-link claim counters. With no Redis configured
// the counters come back empty.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders := d.Catalog.List(r.Context())

		var linkIDs []string
		for _, f := range folders {
			for _, l := range f.Links {
				linkIDs = append(linkIDs, l.ID)
			}
		}

		counts, err := d.Stats.ClaimCounts(r.Context(), linkIDs)
		if err != nil {
			d.Logger.Warn("failed to read claim counters", logger.Error(err))
			counts = map[string]int64{}
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"enabled": d.Stats.Enabled(),
			"claims":  counts,
		})
	}
}
