package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
)

// SessionCheck confirms the session behind a verified token is still live.
// A non-nil error rejects the request with 401.
type SessionCheck func(ctx context.Context, claims jwtx.Claims) error

// AuthnMiddleware requires a valid bearer access token. When check is
// non-nil it also runs against every verified token, which is how revoked
// sessions lose access before their tokens expire.
func AuthnMiddleware(v jwtx.Verifier, check SessionCheck) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if check != nil {
				if err := check(ctx, claims); err != nil {
					log.Info("session rejected", "sid", claims.SID, "err", err)
					writeBearerError(w, "session is no longer active")
					return
				}
			}

			ctx = ContextWithClaims(ctx, claims)
			ctx = slogx.WithContext(ctx, log.With("user_id", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// RFC 6750 challenge plus the usual {"message"} body.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteMessage(w, http.StatusUnauthorized, desc)
}
