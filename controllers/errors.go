package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

const msgInvalidBody = "Invalid request body."

// errorMessages overrides the response text for specific service errors.
type errorMessages map[error]string

var defaultMessages = errorMessages{
	services.ErrUsernameTaken:      "Username already exists.",
	services.ErrInvalidCredentials: "Invalid credentials.",
}

// statusFor maps a service error to its HTTP status. Anything unknown is a
// server fault.
func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotAMember), errors.Is(err, services.ErrGroupNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with {"message": ...}. Server faults are logged and
// answered with fallback so store details never reach the client.
func writeError(w http.ResponseWriter, log *logger.Logger, err error, fallback string, messages errorMessages) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("❌ "+fallback, "error", err)
		utils.WriteMessage(w, status, fallback)
		return
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.WriteMessage(w, status, verr.Message)
		return
	}
	for _, set := range []errorMessages{messages, defaultMessages} {
		for target, msg := range set {
			if errors.Is(err, target) {
				utils.WriteMessage(w, status, msg)
				return
			}
		}
	}
	utils.WriteMessage(w, status, err.Error())
}

// decodeJSON decodes the request body into v. A malformed body is reported
// as a validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &services.ValidationError{Message: msgInvalidBody}
	}
	return nil
}
