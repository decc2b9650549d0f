package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"gorm.io/gorm"
)

// Kind classifies a service failure. Transports map kinds to status codes.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindOutOfStock         Kind = "out_of_stock"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindConflict           Kind = "conflict"
	KindDuplicate          Kind = "duplicate"
	KindInUse              Kind = "in_use"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindStorageUnavailable Kind = "storage_unavailable"
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps input field names to messages for KindValidation.
	Fields map[string]string
	// Available is the current stock for KindInsufficientStock.
	Available int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, services.ErrOutOfStock).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrOutOfStock         = &Error{Kind: KindOutOfStock}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrDuplicate          = &Error{Kind: KindDuplicate}
	ErrInUse              = &Error{Kind: KindInUse}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "the given data was invalid", Fields: fields}
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func duplicate(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// storageError classifies an error coming out of a repository. Record
// misses and unique violations keep their meaning; anything else is logged
// and reported as the store being unavailable.
func storageError(ctx context.Context, what string, err error) error {
	var svcErr *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate(what + " already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindStorageUnavailable, Message: "request cancelled", Err: err}
	default:
		logger.WithCtx(ctx).Error("storage failure", "entity", what, "error", err)
		return &Error{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
	}
}
