package utils

import (
	"encoding/json"
	"net/http"

	"outfitorbit/globals"

	"go.uber.org/zap"
)

// ContentTypeJSON is the content type of every JSON body the API writes.
const ContentTypeJSON = "application/json; charset=utf-8"

// M is a loose JSON object for ad hoc response bodies.
type M map[string]any

// ErrorBody is the shape of every error answer: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, ErrorBody{Error: msg})
}

// RespondWithJSON encodes data before touching the response, so a value that
// cannot be encoded turns into a logged 500 instead of a half written body.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		globals.Log.Error("encode response", zap.Int("status", statusCode), zap.Error(err))
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorBody{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}
