package httpapi

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
)

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type addTripRequest struct {
	Name   string                     `json:"name"`
	Date   json.RawMessage            `json:"date,omitempty"`
	Budget nullable.Nullable[float64] `json:"budget,omitempty"`
}

// parseTripDate reads a YYYY-MM-DD date. Absent and null both yield nil.
func parseTripDate(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d openapi_types.Date
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	t := d.Time
	return &t, nil
}

type addNotificationRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type resetPasswordResponse struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

type tripJSON struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Date      openapi_types.Date `json:"date"`
	Budget    float64            `json:"budget"`
	CreatedAt time.Time          `json:"createdAt"`
}

type addTripResponse struct {
	Message string   `json:"message"`
	Trip    tripJSON `json:"trip"`
}

type notificationJSON struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type addNotificationResponse struct {
	Message      string           `json:"message"`
	Notification notificationJSON `json:"notification"`
}

func tripFromDomain(t domain.Trip) tripJSON {
	return tripJSON{
		ID:        string(t.ID),
		Name:      t.Name,
		Date:      openapi_types.Date{Time: t.Date},
		Budget:    t.Budget,
		CreatedAt: t.CreatedAt,
	}
}

func notificationFromDomain(n domain.Notification) notificationJSON {
	return notificationJSON{
		ID:        string(n.ID),
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
	}
}
