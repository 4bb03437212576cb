package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/untilzero/lanlobby/internal/lobby"
)

func writeJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"ok": false, "message": message})
}

// writeLobbyError maps a domain error code to its HTTP status. Anything
// that is not a *lobby.Error is reported generically.
func writeLobbyError(w http.ResponseWriter, err error) {
	var lerr *lobby.Error
	if !errors.As(err, &lerr) {
		writeError(w, http.StatusInternalServerError, "Unexpected server error.")
		return
	}
	status := http.StatusInternalServerError
	switch lerr.Code {
	case lobby.CodeNotFound:
		status = http.StatusNotFound
	case lobby.CodeForbidden:
		status = http.StatusForbidden
	case lobby.CodeConflict:
		status = http.StatusConflict
	case lobby.CodeBadRequest:
		status = http.StatusBadRequest
	}
	writeError(w, status, lerr.Message)
}

// decodeBody reads a JSON body under the configured size ceiling. An empty
// body leaves dst at its zero value, matching clients that post without
// one. The returned error message is already player-facing.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return errors.New("Body too large.")
		}
		return errors.New("Invalid request body.")
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("Invalid JSON body.")
	}
	return nil
}
