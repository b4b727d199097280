// File: internal/infra/web/server.go
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"stockus-platform/internal/domain/ports/adapter"
	"stockus-platform/internal/usecase"
)

// Server is the public HTTP surface: storefront API, gateway webhook and
// the admin endpoints, all on one listener.
type Server struct {
	reconcileUC    usecase.ReconcileUseCase
	checkoutUC     usecase.CheckoutUseCase
	contentUC      usecase.ContentUseCase
	userUC         usecase.UserUseCase
	auth           *AuthManager
	limiter        adapter.RateLimiter
	allowedOrigins []string
	log            *zerolog.Logger

	httpServer *http.Server
}

func NewServer(
	reconcileUC usecase.ReconcileUseCase,
	checkoutUC usecase.CheckoutUseCase,
	contentUC usecase.ContentUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	limiter adapter.RateLimiter,
	allowedOrigins []string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		reconcileUC:    reconcileUC,
		checkoutUC:     checkoutUC,
		contentUC:      contentUC,
		userUC:         userUC,
		auth:           auth,
		limiter:        limiter,
		allowedOrigins: allowedOrigins,
		log:            logger,
	}
}

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The webhook is gateway-to-server traffic: no session, no CORS, and no
	// rate limit that could starve legitimate retries. Authenticity comes
	// from the payload signature.
	r.Post("/api/v1/payments/webhook", webhookHandler(s.reconcileUC))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(s.auth))

		// Public, anonymous-friendly routes.
		r.Get("/reports", reportsListHandler(s.contentUC))
		r.Get("/reports/{id}", reportGetHandler(s.contentUC))
		r.Get("/cohorts", cohortsListHandler(s.contentUC))

		// Credential endpoints carry the brute-force rate limit.
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(s.limiter, s.log))
			r.Post("/auth/register", registerHandler(s.userUC, s.auth))
			r.Post("/auth/login", loginHandler(s.userUC, s.auth))
		})
		r.Post("/auth/logout", logoutHandler(s.auth))

		r.Group(func(r chi.Router) {
			r.Use(RequireUser())
			r.Get("/me", meHandler(s.userUC))
			r.Get("/payments", paymentHistoryHandler(s.checkoutUC))
			r.Post("/promos/validate", promoValidateHandler(s.checkoutUC))

			r.Group(func(r chi.Router) {
				r.Use(RateLimit(s.limiter, s.log))
				r.Post("/checkout/subscription", subscriptionCheckoutHandler(s.checkoutUC))
				r.Post("/checkout/workshop", workshopCheckoutHandler(s.checkoutUC))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin())
			r.Get("/admin/users", adminUsersListHandler(s.userUC))
			r.Patch("/admin/users/{id}/tier", adminSetTierHandler(s.userUC))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return Chain(c.Handler(r),
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
		Timeout(30*time.Second),
	)
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("http server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
