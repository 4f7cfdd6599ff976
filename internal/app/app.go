package app

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"study_plan_backend/internal/config"
	"study_plan_backend/internal/controller"
	"study_plan_backend/internal/repository"
	"study_plan_backend/internal/service"
	"study_plan_backend/internal/util"
	"study_plan_backend/pkg/configwatcher"
	"study_plan_backend/pkg/database"
	"study_plan_backend/pkg/logger"
	"study_plan_backend/pkg/monitoring"
	"study_plan_backend/pkg/security"
	"study_plan_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 热加载监听的配置文件
var ConfigFile = filepath.Join("configs", "config.yaml")

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiters        []*security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	storage     *service.StorageService
	material    *service.LearningMaterialService
	ai          *service.AIService
	studyPlan   *service.StudyPlanService
	diagnostics *service.RedisDiagnosticsWriter
}

type controllers struct {
	studyPlan   *controller.StudyPlanController
	diagnostics *controller.DiagnosticsController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 配置文件变更后依次通知回调
func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initServices(cfg *config.Config) *services {
	s := &services{
		storage: service.NewStorageService(&cfg.Storage),
		ai:      service.NewAIService(config.NewEnvCredentials()),
	}

	opts := []service.StudyPlanOption{service.WithPlanConfig(cfg.Plan)}

	if a.DB != nil {
		s.material = service.NewLearningMaterialService(repository.NewLearningMaterialRepository(a.DB))
		opts = append(opts, service.WithMaterialLoader(s.material))
	}

	if cfg.Diagnostics.Enabled {
		objects := service.NewStorageDiagnosticsWriter(s.storage, cfg.Diagnostics.Prefix)
		sinks := service.MultiDiagnostics{objects}
		if a.Redis != nil {
			s.diagnostics = service.NewRedisDiagnosticsWriter(a.Redis, cfg.Diagnostics.RedisList, cfg.Diagnostics.RedisMaxEntries).
				WithObjectURL(objects.URL)
			sinks = append(sinks, s.diagnostics)
		}
		opts = append(opts, service.WithDiagnostics(sinks))
	}

	providers := cfg.AI.EnabledProviders()
	if len(providers) == 0 {
		logger.Log.Warn("未配置可用的AI服务商，学习计划将全部由本地生成")
	}
	s.studyPlan = service.NewStudyPlanService(s.ai, providers, opts...)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.studyPlan.SetProviders(c.AI.EnabledProviders())
		logger.Log.Info("AI服务商配置已更新", zap.Int("providers", len(c.AI.EnabledProviders())))
	})

	return s
}

func (a *App) initControllers(s *services) *controllers {
	c := &controllers{
		studyPlan:   controller.NewStudyPlanController(s.studyPlan),
		diagnostics: &controller.DiagnosticsController{},
		health:      controller.NewHealthController(a.DB, a.Redis),
	}
	if s.diagnostics != nil {
		c.diagnostics = controller.NewDiagnosticsController(s.diagnostics)
	}
	return c
}

func (a *App) newLimiter(maxRequests, windowMinutes int) *security.RateLimiter {
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	l := security.NewRateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute)
	a.limiters = append(a.limiters, l)
	return l
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		router.Use(a.newLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowMinutes).Middleware())
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	if cfg.Database.Host != "" {
		db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}
		app.DB = db
	} else {
		logger.Log.Warn("未配置数据库，生成计划时不附带学习资料")
	}

	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Host != "" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			// Redis 只承载诊断索引，不可用时降级运行
			logger.Log.Warn("Failed to initialize redis", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	app.services = app.initServices(cfg)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("study-plan-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			cfg.Tracing.Enabled = false
		} else {
			app.tracer = tp
		}
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := configwatcher.WatchConfig(ctx, ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("配置文件监听启动失败", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close()
	log.Println("Server exiting")
}

// Close 释放后台资源，等待未写完的诊断记录
func (a *App) Close() {
	for _, l := range a.limiters {
		l.Stop()
	}
	if a.services != nil {
		a.services.studyPlan.Wait()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Sync()
}
