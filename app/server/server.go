package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shortplay-scraper/app/auth"
	"shortplay-scraper/app/config"
	"shortplay-scraper/app/database"
	"shortplay-scraper/app/filewatcher"
	"shortplay-scraper/app/handler"
	"shortplay-scraper/app/logger"
	"shortplay-scraper/app/middleware"
	"shortplay-scraper/app/scanner"
	"shortplay-scraper/app/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server 管理接口与刮削后台任务
type Server struct {
	Config *config.Config
	Logger *logger.Logger
	gin    *gin.Engine
	http   *http.Server

	db        *gorm.DB
	registry  *service.SiteRegistry
	runner    *service.Runner
	scheduler *service.CronScheduler
	watcher   *filewatcher.DirWatcher
}

// New 创建一个新的 Server 实例
func New(cfg *config.Config, log *logger.Logger, db *gorm.DB, registry *service.SiteRegistry, runner *service.Runner) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		gin: router,
		http: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Config:    cfg,
		Logger:    log,
		db:        db,
		registry:  registry,
		runner:    runner,
		scheduler: service.NewCronScheduler(log.Named("cron")),
	}

	// 设置路由
	s.setupRoutes()

	return s
}

// Handler 返回路由，测试时直接使用
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start 启动刮削后台任务与 HTTP 服务
func (s *Server) Start() error {
	if err := s.startScraper(); err != nil {
		return err
	}

	s.Logger.Infof("在端口 %s 启动服务器", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startScraper 注册定时任务、启动目录监听，onlyonce 时立即运行一次
func (s *Server) startScraper() error {
	sc := s.Config.Scraper
	if !sc.Enabled {
		s.Logger.Info("刮削未启用，仅提供管理接口")
		return nil
	}

	if sc.IntervalHours > 0 {
		interval := time.Duration(sc.IntervalHours) * time.Hour
		if err := s.scheduler.Register(interval, s.trigger); err != nil {
			return err
		}
	}

	if sc.Watch {
		debounce := time.Duration(sc.WatchDebounceSeconds) * time.Second
		w, err := filewatcher.New(scanner.ParseRoots(sc.MonitorDirs), debounce, s.trigger, s.Logger.Named("watcher"))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			s.Logger.Warnf("目录监听启动失败: %v", err)
			_ = w.Stop()
		} else {
			s.watcher = w
		}
	}

	if sc.OnlyOnce {
		s.Logger.Info("启动时立即运行一次刮削")
		s.trigger()
	}
	return nil
}

func (s *Server) trigger() {
	if err := s.runner.Trigger(); err != nil {
		s.Logger.Infof("跳过本次触发: %v", err)
	}
}

// Shutdown 依次停止目录监听、定时任务、刮削与 HTTP 服务
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.Logger.Warnf("停止目录监听失败: %v", err)
		}
	}
	s.scheduler.Unregister()
	s.scheduler.Stop()
	s.runner.Stop()

	err := s.http.Shutdown(ctx)

	// 关闭数据库连接
	if dbErr := database.Close(); dbErr != nil {
		s.Logger.Errorf("关闭数据库连接失败: %v", dbErr)
	}
	return err
}

// setupRoutes 设置API路由
func (s *Server) setupRoutes() {
	jwtService := auth.NewJWTService(s.Config.JWT)

	// 创建处理器实例
	authHandler := handler.NewAuthHandler(s.db, jwtService)
	siteHandler := handler.NewSiteHandler(s.registry)
	scrapeHandler := handler.NewScrapeHandler(s.runner, s.scheduler.Next)
	recordHandler := handler.NewRecordHandler(s.db)

	// API路由组
	api := s.gin.Group("/api")

	// 认证相关路由（不需要JWT验证）
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
	}

	// 需要JWT验证的路由
	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		protected.GET("/me", authHandler.Me)

		sites := protected.Group("/sites")
		{
			sites.POST("", siteHandler.CreateSite)
			sites.GET("", siteHandler.GetSites)
			sites.GET("/:id", siteHandler.GetSite)
			sites.PUT("/:id", siteHandler.UpdateSite)
			sites.DELETE("/:id", siteHandler.DeleteSite)
		}

		protected.GET("/sources/general", scrapeHandler.GeneralSites)

		scrape := protected.Group("/scrape")
		{
			scrape.POST("/run", scrapeHandler.Run)
			scrape.GET("/status", scrapeHandler.Status)
		}

		protected.GET("/records", recordHandler.GetRecords)
	}
}

// requestLogger 用 zap 记录请求
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
