package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wastetrack/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize limits request bodies to 1 MiB. Manifest payloads
// are form data, not attachments; anything larger is a client bug.
const DefaultMaxBodySize = 1 << 20

// BodyLimit rejects requests whose body exceeds maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
