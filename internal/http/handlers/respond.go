package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/http/middlewares"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed response. Error is always the
// human-readable sentence.
type APIError struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.AbortWithStatusJSON(status, APIError{
		Error:     message,
		Code:      code,
		RequestID: middlewares.RequestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, code, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

// RespondErr writes any service error. Internal failures are logged with the
// request id before the response goes out.
func RespondErr(ctx *gin.Context, err error) {
	appErr := apperr.From(err)

	if appErr.Kind == apperr.KindInternal {
		slog.ErrorContext(ctx.Request.Context(), "request failed",
			observability.Err(err),
			"method", ctx.Request.Method,
			"route", ctx.FullPath(),
			"request_id", middlewares.RequestIDFrom(ctx),
		)
	}

	RespondError(ctx, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message, nil)
}
