// Package app 提供应用程序的初始化与运行.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/yeisme/dataroom/pkg/api"
	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/cache"
	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/jobs"
	"github.com/yeisme/dataroom/pkg/internal/storage"
	"github.com/yeisme/dataroom/pkg/log"
	"github.com/yeisme/dataroom/pkg/metrics"
	"github.com/yeisme/dataroom/pkg/middleware"
	"github.com/yeisme/dataroom/pkg/queue"
	"github.com/yeisme/dataroom/pkg/scheduler"
	"github.com/yeisme/dataroom/pkg/tracing"
)

// App 持有 HTTP 引擎及其依赖的资源.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

// Bootstrap 加载 .env 与配置文件并初始化日志. 命令行子命令与 NewApp 共用.
func Bootstrap(configPath string, debug bool) (*configs.AppConfig, error) {
	// .env 不存在时忽略.
	_ = godotenv.Load()

	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	cfg := configs.GetConfig()
	if debug {
		cfg.Server.Debug = true
		cfg.Log.Level = "debug"
	}

	log.Init()

	return cfg, nil
}

// NewApp 初始化配置、存储、追踪、监控与路由.
func NewApp(ctx context.Context, configPath string, debug bool) (*App, error) {
	cfg, err := Bootstrap(configPath, debug)
	if err != nil {
		return nil, err
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := log.Named("app")

	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn().Msg("JWT secret is the development default, set auth.jwt_secret before deploying")
	}

	if err := tracing.InitTracer(cfg.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: cfg, manager: manager, logger: logger}

	if cfg.Scheduler.Enabled {
		if err := a.initScheduler(); err != nil {
			_ = manager.Close()
			return nil, err
		}
	}

	if manager.MQ != nil {
		if err := queue.NewAuditor(manager.MQ).Start(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to start event auditor")
		}
	}

	a.Engine = a.newEngine()

	if cfg.Metrics.Enabled {
		if err := metrics.StartMetricsServer(cfg.Metrics, a.Engine); err != nil {
			logger.Error().Err(err).Msg("failed to start metrics server")
		}
	}

	return a, nil
}

func (a *App) initScheduler() error {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, a.manager, &a.config.Scheduler); err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("register cron jobs: %w", err)
	}

	sched.Start()
	a.scheduler = sched

	return nil
}

func (a *App) newEngine() *gin.Engine {
	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	if err := engine.SetTrustedProxies(a.config.Server.TrustedProxies); err != nil {
		a.logger.Warn().Err(err).Msg("invalid server.trusted_proxies, trusting none")
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(a.config.Server),
	)

	if a.config.Server.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	engine.Use(
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(a.config.Metrics.Path),
		middleware.RateLimitMiddleware(a.config.RateLimit),
		middleware.CircuitBreakerMiddleware(a.config.CircuitBreaker),
		middleware.StorageMiddleware(a.manager),
	)

	opts := api.Options{
		Issuer:    auth.NewIssuer(&a.config.Auth),
		CacheTTL:  a.config.Cache.ResponseTTL,
		RateLimit: a.config.RateLimit,
		Scheduler: a.scheduler,
	}

	if a.config.Cache.Enabled && a.manager.KV != nil {
		opts.Cache = cache.NewCache(a.manager.KV, cache.WithPrefix(cache.ResponsePrefix))
	}

	return api.RegisterRoutes(engine, opts)
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			a.cleanup(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-quit:
		a.logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
	defer cancel()

	err := srv.Shutdown(ctx)
	a.cleanup(ctx)

	return err
}

func (a *App) cleanup(ctx context.Context) {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			a.logger.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		a.logger.Error().Err(err).Msg("tracer shutdown failed")
	}

	if err := a.manager.Close(); err != nil {
		a.logger.Error().Err(err).Msg("storage close failed")
	}
}
