package banksdk

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/aspen/pkg/idx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// unexpectedStatus is the message for statuses outside 2xx/4xx/5xx.
const unexpectedStatus = "unexpected status"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

var errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)

type response struct {
	status int
	body   []byte
}

// execute runs one logical call: build, send, classify and decode. A 401 on
// anything but the refresh call is answered with one refresh and one resend,
// and the resent response is classified on its own.
func execute[T any](ctx context.Context, c *Client, ep Endpoint, body any) (T, error) {
	var zero T

	target, err := c.endpointURL(ep)
	if err != nil {
		return zero, newError(KindInvalidURL, err)
	}

	var token string
	if ep.RequiresAuth {
		token = c.tokens.AccessToken(ctx)
		if token == "" {
			return zero, &Error{Kind: KindUnauthorized, Message: "not signed in"}
		}
	}

	payload, err := encodeBody(body)
	if err != nil {
		return zero, err
	}

	res, err := c.send(ctx, ep, target, payload, token)
	if err != nil {
		return zero, err
	}

	if res.status == http.StatusUnauthorized && !ep.isRefresh() {
		stale := token
		if !ep.RequiresAuth {
			// Nothing was sent, so whatever is stored counts as rejected.
			stale = c.tokens.AccessToken(ctx)
		}
		fresh, err := c.refreshAfter(ctx, stale)
		if err != nil && ctx.Err() != nil {
			return zero, newError(KindRequestFailed, err)
		}
		if err != nil {
			msg := cmp.Or(serverMessage(res.body), "session expired")
			return zero, &Error{Kind: KindUnauthorized, Message: msg, Err: err}
		}
		if ep.RequiresAuth {
			token = fresh
		}

		res, err = c.send(ctx, ep, target, payload, token)
		if err != nil {
			return zero, err
		}
	}

	if err := classify(ep, res); err != nil {
		return zero, err
	}
	return decode[T](res.body)
}

func (c *Client) endpointURL(ep Endpoint) (string, error) {
	if ep.Path == "" || !strings.HasPrefix(ep.Path, "/") {
		return "", fmt.Errorf("endpoint %q has no usable path", ep.Name)
	}
	if strings.Contains(ep.Path, pathParam) {
		return "", fmt.Errorf("endpoint %q is missing its id", ep.Name)
	}
	if !ep.validMethod() {
		return "", fmt.Errorf("endpoint %q has unsupported method %q", ep.Name, ep.Method)
	}

	u, err := url.Parse(c.baseURL + ep.Path)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", u.String())
	}
	return u.String(), nil
}

// encodeBody validates and serialises the request body. nil means no body.
func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if v, ok := body.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, &Error{Kind: KindCustom, Message: err.Error(), Err: err}
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindCustom, Message: "could not encode request", Err: err}
	}
	return b, nil
}

func (c *Client) send(ctx context.Context, ep Endpoint, target string, payload []byte, token string) (response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, newError(KindRequestFailed, err)
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return response{}, newError(KindInvalidURL, err)
	}

	reqID := idx.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(slogx.RequestIDHeader, reqID)
	if c.deviceName != "" {
		req.Header.Set("X-Device-Name", c.deviceName)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With("endpoint", ep.Name, "req_id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "err", err)
		return response{}, newError(KindRequestFailed, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err == nil && len(b) > maxResponseBytes {
		err = errBodyTooLarge
	}
	if err != nil {
		log.Warn("reading response failed", "status", resp.StatusCode, "err", err)
		return response{}, newError(KindInvalidResponse, err)
	}
	return response{status: resp.StatusCode, body: b}, nil
}

// classify maps a status onto the error taxonomy. nil means success.
func classify(ep Endpoint, res response) error {
	switch {
	case res.status >= 200 && res.status < 300:
		return nil
	case res.status == http.StatusUnauthorized && ep.isRefresh():
		return &Error{Kind: KindUnauthorized, Message: serverMessage(res.body)}
	case res.status >= 400 && res.status < 600:
		return ServerError(res.status, serverMessage(res.body))
	default:
		return ServerError(res.status, unexpectedStatus)
	}
}

// serverMessage pulls {"message"} out of an error body. Anything unusable
// yields "".
func serverMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Message)
}

func decode[T any](body []byte) (T, error) {
	var out T
	if _, ok := any(out).(Empty); ok {
		return out, nil
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return out, newError(KindNoData, errEmptyBody)
	}

	if err := checkRequired(body, reflect.TypeFor[T]()); err != nil {
		return out, newError(KindDecodingFailed, err)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, newError(KindDecodingFailed, err)
	}
	if err := validation.Validate(out); err != nil {
		return out, newError(KindDecodingFailed, err)
	}
	return out, nil
}

// refreshAfter returns a usable access token after stale was rejected. When
// another caller has already replaced stale the current token is returned
// without a second refresh. The shared refresh outlives a cancelled caller,
// but that caller stops waiting for it.
func (c *Client) refreshAfter(ctx context.Context, stale string) (string, error) {
	if cur := c.tokens.AccessToken(ctx); cur != "" && cur != stale {
		return cur, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(refreshKey, func() (any, error) {
		if cur := c.tokens.AccessToken(shared); cur != "" && cur != stale {
			return cur, nil
		}
		if err := c.refresh(shared); err != nil {
			return "", err
		}
		return c.tokens.AccessToken(shared), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", context.Cause(ctx)
	case res = <-ch:
	}
	if res.Shared {
		c.log.Debug("joined in-flight token refresh")
	}
	if res.Err != nil {
		return "", res.Err
	}

	token, _ := res.Val.(string)
	if token == "" {
		return "", errors.New("no access token after refresh")
	}
	return token, nil
}
