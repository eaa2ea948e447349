package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yangfinder/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	writes := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		MaxEntries:   10000,
		TrustProxy:   d.TrustProxy,
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		api.Use(mw.ClientID(d.Logger))

		api.Get("/search", handlers.Search(d))
		api.Get("/suggest", handlers.Suggest(d))
		api.Get("/modules/{name}", handlers.Module(d))

		api.Get("/recent", handlers.Recent(d))
		api.With(writes).Post("/recent", handlers.RecordView(d))
		api.Get("/favorites", handlers.Favorites(d))
		api.With(writes).Post("/favorites/toggle", handlers.ToggleFavorite(d))

		api.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/status", handlers.Status(d))
	})
}
