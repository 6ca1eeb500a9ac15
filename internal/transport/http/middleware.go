package httptransport

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

const (
	headerDeviceID   = "X-Device-Id"
	headerDeviceName = "X-Device-Name"
)

// clientMetadata captures request time, client IP, User-Agent, and the device
// headers into the request context, so domain code never touches net/http.
func clientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		ctx = requestcontext.WithClientMetadata(ctx, clientIP(r), r.UserAgent())
		if fp := strings.TrimSpace(r.Header.Get(headerDeviceID)); fp != "" {
			ctx = requestcontext.WithDeviceFingerprint(ctx, fp)
		}
		if name := strings.TrimSpace(r.Header.Get(headerDeviceName)); name != "" {
			ctx = requestcontext.WithDeviceName(ctx, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TokenValidator is the slice of the token service the auth middleware needs.
type TokenValidator interface {
	ValidateAccess(ctx context.Context, tokenString string) (userID string, jti string, err error)
}

// requireAuth validates the bearer token and stores the subject in the
// request context.
func requireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}
			userID, _, err := tokens.ValidateAccess(r.Context(), raw)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithSubject(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
