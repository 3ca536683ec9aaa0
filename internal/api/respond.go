package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iammorganparry/backlog/internal/models"
)

var errEmptyBody = errors.New("empty body")

// maxBodyBytes caps request bodies; chat messages are short.
const maxBodyBytes = 1 << 20

// writeJSON writes v as pretty-printed JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// notFound is the plain-text 404 used for every unknown route or method.
func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, "Not found")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errEmptyBody
		}
		return err
	}
	return nil
}
