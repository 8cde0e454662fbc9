package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
)

var (
	errBadRequestBody  = errors.New("invalid request body")
	errTooManyRequests = errors.New("too many requests")
)

const maxBodySize = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequestBody
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{common.ErrUnauthenticated, http.StatusUnauthorized},
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{common.ErrEmailNotVerified, http.StatusForbidden},
	{common.ErrUserExists, http.StatusConflict},
	{common.ErrNotFound, http.StatusNotFound},
	{common.ErrStorageDisabled, http.StatusServiceUnavailable},
	{common.ErrInvalidEmail, http.StatusBadRequest},
	{common.ErrPasswordTooShort, http.StatusBadRequest},
	{common.ErrPasswordTooLong, http.StatusBadRequest},
	{common.ErrInvalidAvatarKey, http.StatusBadRequest},
	{common.ErrInvalidToken, http.StatusBadRequest},
	{common.ErrTokenExpired, http.StatusBadRequest},
	{common.ErrInvalidTheme, http.StatusBadRequest},
	{errBadRequestBody, http.StatusBadRequest},
}

// fail writes the status and message for a service error. Unknown errors
// are logged and answered with a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	// lets browser clients tell a stale session from no session
	if errors.Is(err, common.ErrUnauthenticated) && auth.TokenExpired(r.Context()) {
		writeError(w, http.StatusUnauthorized, common.ErrTokenExpired)
		return
	}
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.err)
			return
		}
	}
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, common.ErrInternal)
}
