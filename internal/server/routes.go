package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/observability"
	"github.com/kamiza/kamiza/internal/server/handlers"
	servermw "github.com/kamiza/kamiza/internal/server/middleware"
)

func (s *Server) registerRoutes() {
	s.registerOpsRoutes()
	s.registerAdminEndpoint()

	if api := s.opts.API; api != nil {
		s.registerAPIRoutes(api)
	}
}

func (s *Server) registerOpsRoutes() {
	if hm := s.opts.Health; hm != nil {
		s.router.Get("/health", hm.HealthHandler)
		s.router.Get("/health/live", hm.LivenessHandler)
		s.router.Get("/health/ready", hm.ReadinessHandler)
		s.router.Get("/health/startup", hm.StartupHandler)
	} else {
		for _, path := range []string{"/health", "/health/live", "/health/ready", "/health/startup"} {
			s.router.Get(path, handlers.NotReadyHandler)
		}
	}

	s.router.Get("/version", handlers.VersionHandler)

	s.router.Get("/metrics", MetricsHandler)
}

func (s *Server) registerAPIRoutes(api *handlers.API) {
	s.router.Route("/api", func(r chi.Router) {
		r.With(servermw.Throttle(servermw.ThrottleOptions{
			Limiter:  s.opts.RegisterThrottle,
			Endpoint: "/api/register",
			Respond:  respondThrottled,
		})).Post("/register", api.Register)

		r.With(servermw.Throttle(servermw.ThrottleOptions{
			Limiter:  s.opts.OrderThrottle,
			Endpoint: "/api/order",
			Respond:  respondThrottled,
		})).Post("/order", api.Order)

		r.Get("/events", api.ReducedEvents)
		r.Get("/event", api.Events)

		r.Post("/login", api.Login)
		r.Post("/logout", api.Logout)

		r.Get("/rental/books", api.BookRentals)
		r.Post("/rental/books", api.CreateBookRental)
		r.Delete("/rental/books", api.DeleteBookRental)

		r.Get("/loans", api.ListLoans)
		r.Post("/loans", api.CreateLoan)

		r.Get("/products", api.Products)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(servermw.RequireSession(api.Backend, api.CookieName()))
		r.Get("/dashboard", api.Dashboard)
		r.Get("/dashboard/*", api.Dashboard)
	})
}

// registerAdminEndpoint mounts the gofulmen signal endpoint when a token is set.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger

	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no server.admin_token set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
