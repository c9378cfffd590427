package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventdash/internal/apperr"
	"eventdash/internal/service"
)

func (s *Server) abortWithError(c *gin.Context, err error) {
	app := apperr.From(err)
	if app.Code == apperr.CodeInternal {
		s.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(app.Status, app)
}

func (s *Server) handleHealthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleBootstrapUser upserts a user keyed by the identity provider's id
// and returns the API key used on every other route. Calling it again
// for the same external id returns the same user.
func (s *Server) handleBootstrapUser(c *gin.Context) {
	externalID := strings.TrimSpace(c.GetHeader("X-External-Id"))
	if externalID == "" {
		s.abortWithError(c, apperr.Validation("X-External-Id header is required"))
		return
	}

	user, err := s.users.UpsertFromExternal(c.Request.Context(), externalID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "apiKey": user.APIKey})
}

func (s *Server) handleGetCategories(c *gin.Context) {
	user := currentUser(c)
	summaries, err := s.summaries.CategorySummaries(c.Request.Context(), user.ID, s.now())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

func (s *Server) handlePollCategory(c *gin.Context) {
	user := currentUser(c)
	hasEvents, err := s.summaries.PollCategory(c.Request.Context(), user.ID, c.Param("name"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasEvents": hasEvents})
}

type createCategoryRequest struct {
	Name  string `json:"name" binding:"required,categoryname"`
	Color string `json:"color" binding:"required"`
	Emoji string `json:"emoji"`
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperr.Validation(err.Error()))
		return
	}

	category, err := s.categories.Create(c.Request.Context(), currentUser(c), service.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
		Emoji: req.Emoji,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"eventCategory": category})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	if err := s.categories.Delete(c.Request.Context(), currentUser(c), c.Param("name")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleQuickstart(c *gin.Context) {
	count, err := s.categories.InsertQuickstart(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

type recordEventRequest struct {
	Category string         `json:"category" binding:"required,categoryname"`
	Fields   map[string]any `json:"fields"`
}

func (s *Server) handleRecordEvent(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, apperr.Validation(err.Error()))
		return
	}

	event, err := s.events.Record(c.Request.Context(), currentUser(c), req.Category, req.Fields, s.now())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event})
}
