package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/service/auth"
	"github.com/agrovex/campoflow/internal/session"
)

const sessionKey = "session"

// RequireSession resolves the bearer token and stores the session on the
// request context, rejecting unauthenticated requests.
func RequireSession(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		sess, ok := authSvc.Resolve(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireCapability rejects sessions whose role lacks the capability.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if !sess.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}
	}
	sess, _ := value.(session.Session)
	return sess
}
