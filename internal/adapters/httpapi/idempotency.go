package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Overland-East-Bay/roadbook-api/internal/app/notifications"
	"github.com/Overland-East-Bay/roadbook-api/internal/app/trips"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/idempotency"
)

const idempotencyKeyHeader = "Idempotency-Key"

// beginIdempotent handles the Idempotency-Key header for a create route:
//   - same key + route + body hash: the stored response is replayed
//   - same key + route with a different body hash: 409
//
// A key is only claimed by finishIdempotent, so a rejected request leaves it free.
// It reports handled=true when a response has already been written.
// The returned fingerprint has an empty Key when the header is absent.
func (s *Server) beginIdempotent(w http.ResponseWriter, r *http.Request, route string, bodyHash string) (idempotency.Fingerprint, bool) {
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" || s.Idem == nil {
		return idempotency.Fingerprint{}, false
	}
	ctx := r.Context()

	metaFP := idempotency.Fingerprint{
		Key:      idempotency.Key(key),
		Method:   http.MethodPost,
		Route:    route,
		BodyHash: "",
	}
	meta, ok, err := s.Idem.Get(ctx, metaFP)
	if err != nil {
		s.writeAppError(w, r, err)
		return idempotency.Fingerprint{}, true
	}
	if ok && string(meta.Body) != bodyHash {
		writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "idempotency key reuse with different payload", nil)
		return idempotency.Fingerprint{}, true
	}

	respFP := metaFP
	respFP.BodyHash = bodyHash
	rec, ok, err := s.Idem.Get(ctx, respFP)
	if err != nil {
		s.writeAppError(w, r, err)
		return idempotency.Fingerprint{}, true
	}
	if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
		w.Header().Set("Content-Type", rec.ContentType)
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
		return idempotency.Fingerprint{}, true
	}
	return respFP, false
}

// finishIdempotent writes the response and, when fp carries a key, claims the key and stores the response for replay.
func (s *Server) finishIdempotent(w http.ResponseWriter, r *http.Request, fp idempotency.Fingerprint, status int, payload any) {
	if fp.Key == "" {
		writeJSON(w, status, payload)
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	b = append(b, '\n')
	metaFP := fp
	metaFP.BodyHash = ""
	if err := s.Idem.Put(r.Context(), metaFP, idempotency.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte(fp.BodyHash),
		CreatedAt:   now(),
	}); err != nil {
		s.logf(r, "idempotency: claim key: %v", err)
	}
	if err := s.Idem.Put(r.Context(), fp, idempotency.Record{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        b,
		CreatedAt:   now(),
	}); err != nil {
		s.logf(r, "idempotency: store response: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func hashJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func hashAddTripBody(in trips.AddTripInput) (string, error) {
	canon := struct {
		Name   string   `json:"name"`
		Date   string   `json:"date,omitempty"`
		Budget *float64 `json:"budget,omitempty"`
	}{
		Name:   domain.NormalizeHumanName(in.Name),
		Budget: in.Budget,
	}
	if in.Date != nil {
		canon.Date = in.Date.UTC().Format("2006-01-02")
	}
	return hashJSON(canon)
}

func hashAddNotificationBody(in notifications.AddNotificationInput) (string, error) {
	canon := struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}{
		Message: strings.TrimSpace(in.Message),
		Type:    strings.TrimSpace(in.Type),
	}
	return hashJSON(canon)
}
