package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"whatsapp-channel/internal/config"
	"whatsapp-channel/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const (
	SignatureHeader = "X-Hub-Signature"
	signaturePrefix = "sha1="

	// MaxWebhookBody caps how much of a webhook body is buffered for hashing.
	MaxWebhookBody = 3 << 20
)

var ErrInvalidSignature = errors.New("invalid x-hub-signature")

// ComputeSignature returns the x-hub-signature header value for body.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ValidateSignature checks header against the HMAC-SHA1 of body keyed by secret.
func ValidateSignature(secret string, body []byte, header string) error {
	if secret == "" {
		return fmt.Errorf("%w: app secret", config.ErrMissingConfig)
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return fmt.Errorf("%w: missing sha1 signature", ErrInvalidSignature)
	}

	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifySignature rejects requests whose body does not match x-hub-signature.
// The secret is looked up per request so rotated credentials apply at once.
// The body is restored for the next handler.
func VerifySignature(log *logger.Logger, secret func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBody))
			r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					log.Warn("Rejected oversized webhook request", logrus.Fields{"request_id": RequestID(r.Context()), "limit": tooLarge.Limit})
					writeErr(w, http.StatusRequestEntityTooLarge, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
					return
				}
				writeErr(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
				return
			}

			if err := ValidateSignature(secret(), body, r.Header.Get(SignatureHeader)); err != nil {
				log.Warn("Rejected webhook request", logrus.Fields{"request_id": RequestID(r.Context()), "error": err.Error()})
				writeErr(w, http.StatusInternalServerError, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func writeErr(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"err": err.Error()})
}
