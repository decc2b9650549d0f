// Package controllers adapts HTTP requests to the stockroom services.
// Every handler decodes its input, calls exactly one service operation and
// maps the result onto the response envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/response"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:         http.StatusUnprocessableEntity,
	services.KindNotFound:           http.StatusNotFound,
	services.KindOutOfStock:         http.StatusConflict,
	services.KindInsufficientStock:  http.StatusConflict,
	services.KindConflict:           http.StatusConflict,
	services.KindDuplicate:          http.StatusConflict,
	services.KindInUse:              http.StatusConflict,
	services.KindUnauthorized:       http.StatusUnauthorized,
	services.KindForbidden:          http.StatusForbidden,
	services.KindStorageUnavailable: http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status for a service error kind.
func StatusFor(kind services.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// identity turns the verified token claims into the caller identity the
// services authorize against. A request without claims is anonymous.
func identity(c *ctx.Context) services.Identity {
	claims, ok := c.Claims()
	if !ok {
		return services.Identity{}
	}
	return services.Identity{UserID: claims.UserID, Role: claims.Role}
}

// fail writes err as an error envelope.
func fail(c *ctx.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.WithCtx(c.Context()).Error("unhandled error", "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	body := response.Envelope{Code: string(svcErr.Kind), Message: svcErr.Message}
	if len(svcErr.Fields) > 0 {
		body.Errors = svcErr.Fields
	}
	if svcErr.Kind == services.KindInsufficientStock {
		body.Data = map[string]int{"available": svcErr.Available}
	}
	c.Respond(StatusFor(svcErr.Kind), body)
}

// NotFound answers unknown routes with the JSON envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	response.NotFound(w)
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
