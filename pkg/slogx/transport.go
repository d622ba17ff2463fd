package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport logs outbound requests at debug level. Headers are never logged
// since they carry bearer tokens.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	log := t.Logger
	if log == nil {
		log = FromContext(req.Context())
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"req_id", req.Header.Get(RequestIDHeader),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		log.Debug("http_client_request", append(attrs, "err", err)...)
		return nil, err
	}

	log.Debug("http_client_request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
