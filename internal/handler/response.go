package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/capitalstack/directory/internal/contextkeys"
	"github.com/capitalstack/directory/internal/domain"
	"github.com/sirupsen/logrus"
)

// maxJSONBody bounds decoded request bodies.
const maxJSONBody = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("failed to encode JSON response")
		}
	}
}

type errorBody struct {
	Error        string        `json:"error"`
	RequiredPlan domain.PlanID `json:"requiredPlan,omitempty"`
}

// Error writes an error JSON response, using AppError status codes when available.
// Internal causes are logged, never written to the client.
func Error(w http.ResponseWriter, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Code >= http.StatusInternalServerError {
			logrus.WithError(err).WithField("kind", appErr.Kind).Error("request failed")
		}
		JSON(w, appErr.Code, errorBody{Error: appErr.Message, RequiredPlan: appErr.RequiredPlan})
		return
	}
	logrus.WithError(err).Error("unhandled error")
	JSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}

// Attachment writes a CSV export as a file download.
func Attachment(w http.ResponseWriter, export *domain.Export) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		logrus.WithError(err).WithField("file", export.Filename).Warn("failed to write export")
	}
}

// callerFrom returns the caller placed in the context by the auth middleware.
// Unauthenticated requests yield the zero Caller.
func callerFrom(r *http.Request) domain.Caller {
	caller, _ := r.Context().Value(contextkeys.Caller).(domain.Caller)
	return caller
}
