package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventdash/internal/apperr"
	"eventdash/internal/model"
)

const userContextKey = "user"

// requireUser resolves the caller from a bearer API key and stores the
// user on the request context. The key stands in for whatever identity
// provider sits in front of the dashboard.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		key, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(key) == "" {
			app := apperr.Unauthorized("missing or malformed Authorization header")
			c.AbortWithStatusJSON(app.Status, app)
			return
		}

		user, err := s.users.FindByAPIKey(c.Request.Context(), strings.TrimSpace(key))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			app := apperr.Unauthorized("invalid API key")
			c.AbortWithStatusJSON(app.Status, app)
			return
		}
		if err != nil {
			// A store failure is not the caller's fault.
			s.abortWithError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(userContextKey).(*model.User)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
