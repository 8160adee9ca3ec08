package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
)

func init() { Register(registerClaim) }

func registerClaim(r chi.Router, d deps.Deps) {
	r.With(mw.Sessions(d.Sessions)).Post("/api/claim", handlers.Claim(d))
}
