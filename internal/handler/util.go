package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/middleware"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/pkg/logger"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var (
		validation  *service.ValidationError
		noSelection *service.NoSelectionError
		notFound    *service.NotFoundError
		busy        *service.BusyError
		inference   *service.InferenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &noSelection), errors.As(err, &busy):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &inference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status it maps to. Unclassified
// errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithCorrelationID(middleware.GetCorrelationID(r.Context())).Error("failed to "+action, zap.Error(err))
		writeError(w, status, "failed to "+action)
		return
	}
	writeError(w, status, err.Error())
}

// conversationID returns the decoded {id} path parameter. chi matches on the
// raw path when it holds escaped reserved characters, so "a%2Fb" arrives
// undecoded and has to be unescaped here.
func conversationID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, nil
	}
	id, err := url.PathUnescape(id)
	if err != nil {
		return "", errors.New("invalid conversation id")
	}
	return id, nil
}
