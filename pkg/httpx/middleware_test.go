package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, "mockbank", nil)

	token, err := signer.Sign(jwtx.NewAccessClaims("user-1", "7", "ada@example.com", "mockbank", nil, time.Minute, time.Now()))
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := httpx.UserIDFromContext(r.Context())
		sid, _ := httpx.SessionIDFromContext(r.Context())
		_, _ = w.Write([]byte(uid + "/" + sid))
	})

	revoked := errors.New("revoked")

	tests := []struct {
		name   string
		header string
		check  httpx.SessionCheck
		code   int
		body   string
	}{
		{name: "valid", header: "Bearer " + token, code: http.StatusOK, body: "user-1/7"},
		{name: "lower-case scheme", header: "bearer " + token, code: http.StatusOK, body: "user-1/7"},
		{name: "missing", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", code: http.StatusUnauthorized},
		{
			name:   "session revoked",
			header: "Bearer " + token,
			check:  func(context.Context, jwtx.Claims) error { return revoked },
			code:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			httpx.AuthnMiddleware(verifier, tt.check)(echo).ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusUnauthorized {
				require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer "))
				require.Contains(t, rec.Body.String(), `"message"`)
				return
			}
			require.Equal(t, tt.body, rec.Body.String())
		})
	}
}
