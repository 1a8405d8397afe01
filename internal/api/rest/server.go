package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grape-bot/internal/container"
)

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewRouter собирает маршруты API
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/pages/:section", h.GetPage)
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.PUT("/sessions/:id/section", h.SetSection)
		api.POST("/sessions/:id/upload", h.UploadImage)
		api.POST("/sessions/:id/analyze", h.Analyze)
		api.POST("/sessions/:id/clear", h.Clear)
		api.GET("/sessions/:id/preview", h.Preview)
	}

	return router
}

func New(c *container.Container) *Server {
	gin.SetMode(gin.ReleaseMode)
	log := c.Log.Named("http")

	h := NewHandler(c.UserService, c.ScanService, c.Config.Scan.PreviewMaxSide, log)

	server := &Server{
		httpServer: &http.Server{
			Addr:           c.Config.Server.Addr(),
			Handler:        NewRouter(h),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10*time.Second + c.Config.Scan.Delay,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		log: log,
	}

	log.Info("Server created successfully", zap.String("address", server.httpServer.Addr))

	return server
}

func (s *Server) Run() error {
	s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
