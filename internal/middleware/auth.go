package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"whatsapp-channel/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const bearerPrefix = "Bearer "

var ErrUnauthorized = errors.New("missing or invalid bearer token")

// RequireBearer guards the admin routes with a static bearer token. The token
// is looked up per request so a rotated ADMIN_TOKEN applies at once. An empty
// configured token rejects everything.
func RequireBearer(log *logger.Logger, token func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bearerMatches(token(), r.Header.Get("Authorization")) {
				log.Warn("Rejected unauthorized request", logrus.Fields{
					"request_id": RequestID(r.Context()),
					"path":       r.URL.Path,
				})
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeErr(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerMatches(want, header string) bool {
	if want == "" || !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	got := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
