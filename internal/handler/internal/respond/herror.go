package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type Error struct {
	Code int    `json:"code"`
	Text string `json:"text,omitempty"`
}

func ErrorWithCode(w http.ResponseWriter, r *http.Request, httpCode, appCode int) {
	ErrorWithText(w, r, httpCode, appCode, "")
}

func ErrorWithText(w http.ResponseWriter, r *http.Request, httpCode, appCode int, errText string) {
	writeJSON(w, r, httpCode, Error{Code: appCode, Text: errText})
}

func JSON(w http.ResponseWriter, r *http.Request, v any) {
	writeJSON(w, r, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, r *http.Request, httpCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
