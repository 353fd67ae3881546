package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const msgInvalidJSON = "request body must be valid JSON"

// BindJSON decodes the body into out. An empty body leaves out zero-valued so
// the service reports the missing fields. On failure the response is written
// and false is returned.
func BindJSON(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "body_too_large",
			fmt.Sprintf("request body must not exceed %d bytes", maxBytesError.Limit), nil)
		return false
	}

	RespondBadRequest(ctx, "invalid_json", msgInvalidJSON, parseBindError(err))
	return false
}

func parseBindError(err error) any {
	// in the event of bad json
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return gin.H{
			"json":   "invalid_json_syntax",
			"offset": syntaxError.Offset,
		}
	}

	// in the event of a type mismatch
	var unmatchedTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmatchedTypeError) {
		return gin.H{
			"json":  "invalid_json_type",
			"field": unmatchedTypeError.Field,
			"type":  unmatchedTypeError.Type.String(),
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "truncated"}
	}

	return nil
}
