package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	internal_errors "github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/middleware/ratelimiter"
	"github.com/stackover-dev/stackover/internal/utils"
)

// RateLimit throttles requests keyed by the identity getIdentity
// extracts. Credential endpoints use it to slow down brute forcing of
// passwords and reset codes.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the real client IP from RemoteAddr.
// Does NOT trust X-Real-IP or X-Forwarded-For headers (no reverse proxy)
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Fallback: if RemoteAddr doesn't have port, use it directly
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}

// Requests to the endpoints this guards are small JSON documents;
// anything bigger is rejected before being buffered.
const maxRateLimitBodySize = 1 << 20

// GetEmailFromBody extracts email from the JSON request body for rate
// limiting purposes. It reads the body (capped) and restores it so the
// handler can read it again.
func GetEmailFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBodySize+1))
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	if len(body) > maxRateLimitBodySize {
		return "", &internal_errors.ErrorWithStatusCode{
			Message:    "Request body too large",
			StatusCode: http.StatusRequestEntityTooLarge,
		}
	}
	// Restore the body so the handler can read it
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", errors.New("invalid request body")
	}

	if data.Email == "" {
		return "", errors.New("email field is required")
	}

	return data.Email, nil
}
