package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/roadbook-api/internal/app/auth"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/notifications"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/trips"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers. Each handler decodes its request, delegates to an app service
// and writes the JSON result or error envelope.
type Server struct {
	Auth          *auth.Service
	Trips         *trips.Service
	Notifications *notifications.Service
	Idem          idempotency.Store

	// ResetLinkInResponse echoes the reset link in the /reset-password response.
	ResetLinkInResponse bool

	Logger *log.Logger
}

func NewServer(authSvc *auth.Service, tripsSvc *trips.Service, notificationsSvc *notifications.Service, idem idempotency.Store) *Server {
	return &Server{
		Auth:                authSvc,
		Trips:               tripsSvc,
		Notifications:       notificationsSvc,
		Idem:                idem,
		ResetLinkInResponse: true,
		Logger:              log.Default(),
	}
}

// decodeJSON reads a JSON object body. An empty body decodes as {} so that the
// service reports the missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return false
	}
	return true
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, err := s.Auth.Signup(r.Context(), auth.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully"})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.Auth.Login(r.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: res.Token})
}

func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.Auth.ResetPassword(r.Context(), req.Email)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := resetPasswordResponse{Message: "Password reset link sent"}
	if s.ResetLinkInResponse {
		resp.Link = res.Link
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) AddTrip(w http.ResponseWriter, r *http.Request) {
	var req addTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := parseTripDate(req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date", map[string]any{"date": "must be YYYY-MM-DD"})
		return
	}
	in := trips.AddTripInput{Name: req.Name, Date: date}
	if b, err := req.Budget.Get(); err == nil {
		in.Budget = &b
	}

	bodyHash, err := hashAddTripBody(in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	fp, handled := s.beginIdempotent(w, r, "/trip/add", bodyHash)
	if handled {
		return
	}

	t, err := s.Trips.AddTrip(r.Context(), in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.finishIdempotent(w, r, fp, http.StatusCreated, addTripResponse{Message: "Trip added successfully", Trip: tripFromDomain(t)})
}

func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Trips.ListTrips(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := make([]tripJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, tripFromDomain(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Trips.DeleteTrip(r.Context(), domain.TripID(id)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Trip deleted successfully"})
}

func (s *Server) AddNotification(w http.ResponseWriter, r *http.Request) {
	var req addNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := notifications.AddNotificationInput{Message: req.Message, Type: req.Type}

	bodyHash, err := hashAddNotificationBody(in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	fp, handled := s.beginIdempotent(w, r, "/notification/add", bodyHash)
	if handled {
		return
	}

	n, err := s.Notifications.AddNotification(r.Context(), in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.finishIdempotent(w, r, fp, http.StatusCreated, addNotificationResponse{
		Message:      "Notification added successfully",
		Notification: notificationFromDomain(n),
	})
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := s.Notifications.ListNotifications(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := make([]notificationJSON, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationFromDomain(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Notifications.DeleteNotification(r.Context(), domain.NotificationID(id)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Notification deleted successfully"})
}

func now() time.Time { return time.Now().UTC() }
