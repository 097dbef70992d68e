package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	// AuthMiddleware guards the trip and notification routes when ProtectResources is set.
	// When nil, NewAuthMiddleware(server.Auth) is used.
	AuthMiddleware func(http.Handler) http.Handler

	ProtectResources bool

	// LogRequests enables chi's request logger.
	LogRequests bool
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/signup", s.Signup)
	r.Post("/login", s.Login)
	r.Post("/reset-password", s.ResetPassword)

	r.Group(func(r chi.Router) {
		if opts.ProtectResources {
			mw := opts.AuthMiddleware
			if mw == nil {
				mw = NewAuthMiddleware(s.Auth)
			}
			r.Use(mw)
		}

		r.Post("/trip/add", s.AddTrip)
		r.Get("/trip", s.ListTrips)
		r.Delete("/trip/delete/{id}", s.DeleteTrip)

		r.Post("/notification/add", s.AddNotification)
		r.Get("/notification", s.ListNotifications)
		r.Delete("/notification/delete/{id}", s.DeleteNotification)
	})

	return r
}
