package banksdk

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/aspen/pkg/httpx"
)

// Kind classifies the outcome of a failed call. The kinds are mutually
// exclusive.
type Kind int

const (
	// KindInvalidURL means the request URL could not be built.
	KindInvalidURL Kind = iota + 1
	// KindRequestFailed means no response was received.
	KindRequestFailed
	// KindInvalidResponse means a response arrived but could not be read.
	KindInvalidResponse
	// KindUnauthorized means there is no usable access token.
	KindUnauthorized
	// KindServerError covers every 4xx/5xx not otherwise classified.
	KindServerError
	// KindNoData means a success status with an empty body where content
	// was expected.
	KindNoData
	// KindDecodingFailed means the body did not match the expected shape.
	KindDecodingFailed
	// KindCustom is a client-side failure such as a request body that does
	// not pass validation.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindRequestFailed:
		return "request_failed"
	case KindInvalidResponse:
		return "invalid_response"
	case KindUnauthorized:
		return "unauthorized"
	case KindServerError:
		return "server_error"
	case KindNoData:
		return "no_data"
	case KindDecodingFailed:
		return "decoding_failed"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type returned by the client. The mock bank uses
// the same type to write its error responses, so both sides agree on shape.
type Error struct {
	Kind Kind `json:"-"`

	// StatusCode is the HTTP status for KindServerError, zero otherwise.
	StatusCode int `json:"-"`

	// Message is the server's message, or a client-side description. Empty
	// means absent.
	Message string `json:"message"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidURL      = &Error{Kind: KindInvalidURL}
	ErrRequestFailed   = &Error{Kind: KindRequestFailed}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrServerError     = &Error{Kind: KindServerError}
	ErrNoData          = &Error{Kind: KindNoData}
	ErrDecodingFailed  = &Error{Kind: KindDecodingFailed}
	ErrCustom          = &Error{Kind: KindCustom}
)

// ServerError builds a KindServerError outcome. An empty msg means the
// server gave no usable message.
func ServerError(status int, msg string) *Error {
	return &Error{Kind: KindServerError, StatusCode: status, Message: msg}
}

// Custom builds a KindCustom error with the given message.
func Custom(format string, args ...any) *Error {
	return &Error{Kind: KindCustom, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServerError && e.Message != "":
		return fmt.Sprintf("banksdk: server error %d: %s", e.StatusCode, e.Message)
	case e.Kind == KindServerError:
		return fmt.Sprintf("banksdk: server error %d", e.StatusCode)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("banksdk: %s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("banksdk: %s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("banksdk: %s: %v", e.Kind, e.Err)
	default:
		return "banksdk: " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target with a non-zero
// StatusCode only matches that status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// WriteError writes e as a {"message"} response. Errors without a status
// code are written as 500.
func (e *Error) WriteError(w http.ResponseWriter) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	httpx.WriteMessage(w, status, msg)
}
