package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"buzzi-console/internal/config"
	"buzzi-console/internal/handlers"
	"buzzi-console/internal/middleware"
	"buzzi-console/internal/models"
	"buzzi-console/internal/service"
)

func New(log zerolog.Logger, ops *service.Operations, cfg config.Config, health func(context.Context) error) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))

	// Health
	r.Get("/healthz", handlers.Health(health))

	th := handlers.NewTicketHTTP(ops)
	qh := handlers.NewQuoteHTTP(ops)
	uh := handlers.NewUserHTTP(ops)
	mh := handlers.NewMessageHTTP(ops)
	kh := handlers.NewKnowledgeHTTP(ops)
	sh := handlers.NewRemoteSessionHTTP(ops)
	rh := handlers.NewReportsHTTP(ops)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithAuth(log, cfg.SessionSecret))
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRoles(models.RoleAdmin))

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", th.List())
			r.With(httprate.LimitByIP(30, time.Minute)).Post("/", th.Create())
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", th.Delete())
				r.Patch("/status", th.UpdateStatus())
				r.Patch("/technician", th.Assign())
				r.Post("/code", th.ToggleCode())
			})
		})

		r.Get("/reports/summary", rh.Summary())
		r.Post("/refresh", rh.Refresh())

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", qh.List())
			r.Post("/", qh.Create())
			r.Post("/{id}/invoice", qh.Invoice())
			r.Route("/drafts", func(r chi.Router) {
				r.Post("/", qh.StartDraft())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", qh.GetDraft())
					r.Delete("/", qh.DiscardDraft())
					r.Post("/items", qh.AddItem())
					r.Delete("/items/{itemId}", qh.RemoveItem())
					r.Post("/submit", qh.SubmitDraft())
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.List())
			r.Post("/", uh.Create())
		})

		r.Post("/messages/bulk", mh.Bulk())

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", kh.List())
			r.Post("/", kh.Upload())
			r.Delete("/{id}", kh.Delete())
		})

		r.Post("/remote-sessions", sh.Launch())
	})

	return otelhttp.NewHandler(r, "buzzi-console")
}
