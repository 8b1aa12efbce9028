package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Vom vorgelagerten Auth-Proxy gesetzt.
	userHeader   = "X-User-ID"
	apiKeyHeader = "X-API-KEY"
	userKey      = "user_id"
)

// apiKeyAuthMiddleware prüft X-API-KEY, sofern ein Schlüssel konfiguriert ist.
func apiKeyAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if c.GetHeader(apiKeyHeader) != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// requireUser liest den authentifizierten Besitzer aus X-User-ID.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(userHeader))
		if err != nil || id == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: missing or invalid user id"})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

func currentUser(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userKey)
	owner, _ := id.(uuid.UUID)
	return owner
}
