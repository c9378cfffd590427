package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventdash/internal/config"
	"eventdash/internal/repository"
	"eventdash/internal/service"
)

// Server wires the HTTP surface over the services.
type Server struct {
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	users      *repository.UserRepository
	summaries  *service.SummaryService
	categories *service.CategoryService
	events     *service.EventService
	now        func() time.Time

	engine *gin.Engine
	http   *http.Server
}

func NewServer(
	cfg config.Config,
	log *zap.Logger,
	db *gorm.DB,
	users *repository.UserRepository,
	summaries *service.SummaryService,
	categories *service.CategoryService,
	events *service.EventService,
) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		db:         db,
		users:      users,
		summaries:  summaries,
		categories: categories,
		events:     events,
		now:        time.Now,
	}

	registerValidators()

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.handleHealthz)
	engine.POST("/v1/users", s.handleBootstrapUser)

	authed := engine.Group("/v1", s.requireUser())
	{
		authed.GET("/categories", s.handleGetCategories)
		authed.POST("/categories", s.handleCreateCategory)
		authed.POST("/categories/quickstart", s.handleQuickstart)
		authed.DELETE("/categories/:name", s.handleDeleteCategory)
		authed.GET("/categories/:name/poll", s.handlePollCategory)
		authed.POST("/events", s.handleRecordEvent)
	}

	s.engine = engine
	return s
}

// registerValidators adds the shared category-name grammar as a binding
// rule so malformed names are rejected before any store query runs.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("categoryname", func(fl validator.FieldLevel) bool {
			return service.CategoryNamePattern().MatchString(fl.Field().String())
		})
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
