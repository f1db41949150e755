package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewastelocator/internal/api"
	"ewastelocator/internal/logging"
)

//go:embed all:web
var staticFiles embed.FS

// Options 服务器参数
type Options struct {
	Addr    string
	DevMode bool
	// WebDir 开发模式下直接读取磁盘上的前端目录，便于修改后刷新
	WebDir string
}

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer 创建服务器
func NewServer(handler *api.Handler, opts Options, logger *zap.Logger) *Server {
	if !opts.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(logging.GinLogger(logger), logging.GinRecovery(logger))

	s := &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes(handler, opts)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *api.Handler, opts Options) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// API 路由
	apiGroup := s.router.Group("/api")
	{
		handler.RegisterRoutes(apiGroup)
	}

	// 静态资源
	var web fs.FS
	if opts.DevMode && opts.WebDir != "" {
		web = os.DirFS(opts.WebDir)
	} else {
		web = subFS(staticFiles, "web")
	}

	s.router.StaticFS("/static", http.FS(subFS(web, "static")))
	s.router.StaticFS("/pages", http.FS(subFS(web, "pages")))

	// 首页
	s.router.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(web, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func subFS(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fsys
	}
	return sub
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown(5 * time.Second)
	}
}

// Shutdown 关闭服务器
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
