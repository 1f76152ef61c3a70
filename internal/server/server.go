package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finsight/internal/api"
	"finsight/internal/config"
	"finsight/internal/format"
	"finsight/internal/logger"
	"finsight/internal/parser"
	"finsight/internal/store"
)

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	http   *http.Server
}

// NewServer 创建服务器：初始化存储、词库与格式化器并注册路由
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(config.DBPath(dataDir))
	if err != nil {
		return nil, err
	}

	s, err := newServer(cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return s, nil
}

func newServer(cfg *config.AppConfig, st *store.Store) (*Server, error) {
	lexicon, err := parser.LoadLexicon(config.ResolvePath(cfg.Classifier.LexiconPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	formatter, err := format.New(cfg.Display.Currency, cfg.Display.Locale)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: gin.New(),
		store:  st,
		api: api.NewHandler(st, api.Options{
			MaxUploadBytes: cfg.MaxUploadBytes(),
			SampleRows:     cfg.Data.SampleRows,
			Formatter:      formatter,
			Classifier:     parser.NewShapeClassifier(lexicon),
		}),
	}
	s.setupRoutes(cfg.Server.DevMode)
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(gin.Recovery(), logger.GinMiddleware())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 开发模式：非 API 请求转到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	}
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器（阻塞直到关闭）
func (s *Server) Run(addr string) error {
	s.http.Addr = addr
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭并释放数据库连接
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
