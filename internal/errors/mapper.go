package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// KindOf classifies repo/infra errors into domain kinds.
// Keeps handlers clean by centralizing error mapping.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if e, ok := As(err); ok && e.Kind != KindInternal {
		return e.Kind
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	default:
		return KindInternal
	}
}

// HTTPStatus maps an error to the status code written by the API layer.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}

	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show to API clients.
// Internal errors never leak their cause.
func PublicMessage(err error) string {
	kind := KindOf(err)
	if kind == KindInternal {
		return "internal server error"
	}
	if e, ok := As(err); ok && e.Msg != "" {
		return e.Msg
	}
	if kind == KindNotFound {
		return "record not found"
	}
	if kind == KindConflict {
		return "record already exists"
	}
	return kind.String()
}

// Wrap maps raw repository errors into domain errors, leaving domain errors as they are.
func Wrap(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	switch KindOf(err) {
	case KindNotFound:
		return NotFound(notFoundMsg)
	case KindConflict:
		return &Error{Kind: KindConflict, Msg: "record already exists", Err: err}
	}
	return err
}
