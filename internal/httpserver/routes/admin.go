package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(mw.AllowOnlyCIDRS(d.AdminCIDRs, d.TrustProxy, d.Logger))
		ar.Use(mw.Sessions(d.Sessions))

		// The PIN check sits in front of the session flag, behind its own
		// per-IP lockout.
		ar.Post("/verify-pin", handlers.VerifyPin(d))

		ar.Group(func(pr chi.Router) {
			pr.Use(mw.RequireAdmin(d.Sessions))
			pr.Post("/add-folder", handlers.AddFolder(d))
			pr.Post("/remove-folder", handlers.RemoveFolder(d))
			pr.Post("/add-link", handlers.AddLink(d))
			pr.Post("/remove-link", handlers.RemoveLink(d))
			pr.Post("/clear-my-timer", handlers.ClearMyTimer(d))
			pr.Get("/stats", handlers.Stats(d))
		})
	})
}
