package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/memo/internal/checksum"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeJSONCached writes v with a strong ETag and answers 304 when the
// request's If-None-Match already names it.
func writeJSONCached(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	body = append(body, '\n')
	etag := checksum.ETag(body)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

const (
	kindBadRequest = "BadRequest"
	kindNotFound   = "NotFound"
	kindInternal   = "Internal"
	kindBusy       = "Busy"
)

type errResponse struct {
	Error   string `json:"error" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func errorBody(kind, msg string) errResponse {
	return errResponse{Error: kind, Message: msg}
}
