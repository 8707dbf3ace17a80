package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/revisit-app/decks-service/internal/service"
)

// RouterOptions holds the optional parts of the middleware chain.
type RouterOptions struct {
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
	// Limiter throttles mutating requests. Nil disables rate limiting.
	Limiter RateLimiter
}

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(decks *service.DeckService, saves *service.SaveService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, RequestLogger, SecurityHeaders)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "userId", "cardId", headerRequestID},
			ExposedHeaders: []string{"Location", "Retry-After", headerRequestID},
			MaxAge:         300,
		}))
	}
	if opts.Limiter != nil {
		r.Use(RateLimit(opts.Limiter))
	}

	RegisterRoutes(r, NewDeckHandler(decks), NewSavedHandler(saves))
	return r
}

// RegisterRoutes sets up all HTTP routes on the given router. The static
// saved segment takes precedence over deck ids.
func RegisterRoutes(r chi.Router, decks *DeckHandler, saved *SavedHandler) {
	r.Get("/healthz", HandleHealthz)

	r.Get("/saved", saved.HandleList)
	r.Put("/saved/{id}", saved.HandleSave)
	r.Delete("/saved/{id}", saved.HandleUnsave)

	r.Post("/", decks.HandleCreate)
	r.Get("/{id}", decks.HandleGet)
	r.Put("/{id}", decks.HandleUpdate)
	r.Delete("/{id}", decks.HandleDelete)
	r.Put("/{id}/cards", decks.HandleAddCard)
	r.Delete("/{id}/cards", decks.HandleRemoveCard)
}
