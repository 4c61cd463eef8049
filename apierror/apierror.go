// Package apierror is the typed error path: handlers return an *Error and
// Handler renders it in one place.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

type Kind int

const (
	Server Kind = iota
	Validation
	NotFound
	Authorization
	Upload
)

func (k Kind) Status() int {
	switch k {
	case Validation, Upload:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Authorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case Validation:
		return "ValidationError"
	case NotFound:
		return "NotFoundError"
	case Authorization:
		return "AuthorizationError"
	case Upload:
		return "UploadError"
	default:
		return "ServerError"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Message: msg, Err: err} }

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handler adapts fn to http.HandlerFunc, writing any returned error as
// {success:false, message}. Errors that are not *Error become 500s with the
// error text as message.
func Handler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = Wrap(Server, err.Error(), err)
		}

		status := apiErr.Kind.Status()
		evt := log.Warn()
		if status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Err(err).Str("kind", apiErr.Kind.String()).Str("path", r.URL.Path).Msg("request failed")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": apiErr.Message,
		})
	}
}
