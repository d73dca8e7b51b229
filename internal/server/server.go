package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"wbsdash/internal/api"
	"wbsdash/internal/config"
	"wbsdash/internal/importer"
	"wbsdash/internal/model"
	"wbsdash/internal/service/excel"
	"wbsdash/internal/store"
)

// DBFileName 数据目录下的 SQLite 文件名
const DBFileName = "wbsdash.db"

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer 创建服务器：初始化数据目录、缓存库、列映射与 API 处理器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("创建数据目录失败: %v", err)
		dataDir = config.ResolveDataDir(cfg)
	}

	var st *store.Store
	if cfg.Data.CacheEnabled {
		st, err = store.New(filepath.Join(dataDir, DBFileName))
		if err != nil {
			return nil, err
		}
	}

	mapping, err := config.LoadMappingFile(cfg.Mapping.File)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	return New(cfg, st, dataDir, mapping), nil
}

// New 用已准备好的依赖组装服务器
func New(cfg *config.AppConfig, st *store.Store, dataDir string, mapping model.ColumnMapping) *Server {
	engine := excel.NewEngine(importer.EngineOptions(cfg.Engine))
	coord := importer.NewCoordinator(engine, st, importer.Options{Sheets: cfg.Engine.Sheets})

	s := &Server{
		router: gin.New(),
		store:  st,
		api:    api.NewHandler(coord, dataDir, mapping),
	}
	s.router.Use(gin.Recovery())
	if cfg.Server.DevMode {
		s.router.Use(gin.Logger())
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭缓存库
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
