package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
)

// maxBodyBytes caps request bodies. Every request the bank accepts is a
// small JSON document.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. On failure it writes a 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		slogx.FromContext(r.Context()).Debug("invalid request body", "error", err)
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

// writeError answers with the bank's {"message"} body. Unexpected errors
// are logged here since the member only ever sees a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	be := service.ToBankError(err)
	if be.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	be.WriteError(w)
}

// member returns the authenticated member id. Routes without AuthnMiddleware
// never call it.
func member(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "missing bearer token")
	}
	return id, ok
}

// deviceFrom reads where a login came from.
func deviceFrom(r *http.Request) service.Device {
	return service.Device{
		Name: strings.TrimSpace(r.Header.Get("X-Device-Name")),
		IP:   httpx.IPKeyExtractor(r),
	}
}

// toAPI converts a slice for a response body. The result is never nil so
// empty lists encode as [].
func toAPI[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func noContent(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// create decodes a Req, runs fn for the authenticated member and answers 201
// with the converted result.
func create[Req, D, A any](
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, string, Req) (D, error),
	conv func(D) A,
) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req Req
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := fn(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, conv(out))
}
