package server

import (
	"context"
	"strings"
	"time"

	"pickleball/internal/apperr"
	"pickleball/internal/auth"
	"pickleball/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const callerKey = "caller"

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debugf("request method=%s path=%s status=%d duration=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// requestTimeout bounds every request with a context deadline so storage
// calls give up once the client budget is spent.
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAuth resolves the bearer token to a live user and stores the
// profile on the context.
func (s *Server) requireAuth(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		writeError(c, apperr.Unauthenticated("authorization token is required"))
		return
	}
	profile, err := s.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(callerKey, profile)
	c.Next()
}

func caller(c *gin.Context) auth.Profile {
	value, ok := c.Get(callerKey)
	if !ok {
		return auth.Profile{}
	}
	profile, _ := value.(auth.Profile)
	return profile
}

func callerID(c *gin.Context) uuid.UUID {
	return caller(c).ID
}
