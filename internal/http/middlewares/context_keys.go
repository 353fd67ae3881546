package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
)

// RequestIDFrom returns the id set by RequestID, or the inbound header.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return c.GetHeader(requestIDHeader)
}

// abortWithError writes the same error envelope the handlers use.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     message,
		"code":      code,
		"requestId": RequestIDFrom(c),
	})
}
