package httpapi

import (
	stdhttp "net/http"
	"time"

	"bingoart/internal/http/handlers"
	"bingoart/internal/infra"
	appmw "bingoart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	Logger          infra.Logger
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(appmw.RequestID, middleware.RealIP, middleware.Recoverer, appmw.Logger(opts.Logger))
	r.Use(appmw.CORS(opts.AllowedOrigins))

	// Health
	r.Get("/", app.Health)
	r.Get("/healthz", app.Health)

	r.Route("/scenario", func(r chi.Router) {
		r.Use(appmw.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/generate", app.GenerateVideo)
		r.Post("/generate-card", app.GenerateCard)
		r.Post("/generate-ball-caller", app.GenerateBallCaller)
	})

	return r
}
