package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eidan66/wedding-album-sub000/config"
	"github.com/eidan66/wedding-album-sub000/internal/handler"
	"github.com/eidan66/wedding-album-sub000/internal/middleware"
	"github.com/eidan66/wedding-album-sub000/internal/redis"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"
	"github.com/eidan66/wedding-album-sub000/pkg/database"
	"github.com/eidan66/wedding-album-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	db         *sql.DB
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Upload *handler.UploadHandler
	Media  *handler.MediaHandler
	Access *handler.AccessHandler
}

func New(cfg *config.Config, l *logger.Logger, db *sql.DB) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		db:     db,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		if redis.IsInitialized() {
			if err := redis.GetClient().Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.POST("/access/verify", handlers.Access.Verify)

	s.engine.POST("/upload-url", handlers.Upload.UploadURL)

	uploads := s.engine.Group("/uploads")
	{
		uploads.POST("/presign", handlers.Upload.Presign)
		uploads.POST("/presign/batch", handlers.Upload.PresignBatch)
		uploads.POST("/multipart/create", handlers.Upload.MultipartCreate)
		uploads.POST("/multipart/parts", handlers.Upload.MultipartParts)
		uploads.POST("/multipart/complete", handlers.Upload.MultipartComplete)
		uploads.POST("/multipart/abort", handlers.Upload.MultipartAbort)
	}

	s.engine.POST("/media", handlers.Media.Create)
	s.engine.GET("/media", handlers.Media.List)
	s.engine.GET("/media/count", handlers.Media.Count)
	s.engine.GET("/media/:id", handlers.Media.Get)
	s.engine.DELETE("/media/:id", handlers.Media.Delete)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
