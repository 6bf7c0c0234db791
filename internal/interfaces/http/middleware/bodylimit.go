package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erp/stockledger/internal/interfaces/http/dto"
)

const bodyTooLargeMessage = "Request body exceeds maximum allowed size"

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps the
// body of everything else, so chunked uploads fail when read past the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			AbortBodyTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the BodyLimit cap
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AbortBodyTooLarge writes the 413 envelope and stops the chain
func AbortBodyTooLarge(c *gin.Context) {
	abortWith(c, dto.ErrCodeRequestTooLarge, bodyTooLargeMessage)
}
