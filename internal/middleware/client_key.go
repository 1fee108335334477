package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientKeyHeader carries the shared key local UIs present.
const ClientKeyHeader = "X-Client-Key"

// ClientKey rejects requests whose X-Client-Key does not match key. Browsers
// cannot set headers on a websocket handshake, so the client_key query
// parameter is accepted too. An empty key disables the check.
func ClientKey(key string, logger *zap.Logger) gin.HandlerFunc {
	if key == "" {
		logger.Warn("ClientKey(): no client key configured, companion API is open to any local caller")
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		got := c.GetHeader(ClientKeyHeader)
		if got == "" {
			got = c.Query("client_key")
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid client key"})
			return
		}
		c.Next()
	}
}
