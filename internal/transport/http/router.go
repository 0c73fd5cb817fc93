package http

import (
	"net/http"

	"accounts/internal/httpx"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Accounts service.AccountService
	Tokens   service.TokenService
	// JWKS is set when tokens are asymmetric; it backs /v1/oauth/jwks.
	JWKS        func() map[string]any
	CORSOrigins []string
	Gatherer    prometheus.Gatherer // defaults to prometheus.DefaultGatherer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithClientMeta)
	r.Use(middleware.WithMetrics)
	r.Use(httpx.LogRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID, middleware.HeaderTraceID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	h := handlers{accounts: d.Accounts}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", h.createAccount)
		r.Post("/accounts/verify", h.verifyEmail)
		r.Post("/auth/login", h.login)

		if d.JWKS != nil {
			r.Get("/oauth/jwks", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"keys": []map[string]any{d.JWKS()}})
			})
		}

		r.Group(func(pr chi.Router) {
			pr.Use(RequireBearer(d.Tokens))
			pr.Get("/me", h.me)
			pr.Patch("/me", h.editProfile)
			pr.Delete("/me", h.deleteAccount)
			pr.Get("/users/{id}", h.userProfile)
		})
	})

	return r
}
