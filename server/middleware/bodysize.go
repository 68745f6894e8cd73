package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/diagramkit/util"
)

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit caps the request body at maxSize (e.g. "10MB"). Reads past
// the cap fail, which JSON binding surfaces as a 400.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		if c.Request.ContentLength > size {
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": gin.H{"code": "INVALID_INPUT", "message": "Request body too large", "retryable": false},
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
