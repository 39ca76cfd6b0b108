package utils

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the body of every error and bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSONResponse sets the content type, writes status and encodes payload.
func WriteJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSONResponse(w, status, MessageResponse{Message: msg})
}
