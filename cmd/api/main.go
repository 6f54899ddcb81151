// @title           Tinta y Hojas API
// @version         1.0
// @description     Tinta y Hojas网上书店：目录、购物车、结账、书评和后台管理
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	applogger "github.com/xiebiao/tintayhojas/internal/infrastructure/logger"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/tintayhojas/internal/interface/http/router"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
	"github.com/xiebiao/tintayhojas/pkg/response"
	"github.com/xiebiao/tintayhojas/pkg/tracing"
)

// shutdownTimeout 优雅关闭等待进行中请求的最长时间
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger := applogger.New(cfg.Log)
	response.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("服务异常退出", gecho.Field("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *gecho.Logger) error {
	logger.Info("配置加载成功",
		gecho.Field("port", cfg.Server.Port),
		gecho.Field("mode", cfg.Server.Mode),
		gecho.Field("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		gecho.Field("redis", cfg.Redis.Addr()),
		gecho.Field("mq", cfg.MQ.Enabled),
	)

	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}
	defer func() { _ = mysql.Close(db) }()

	if cfg.Database.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	redisClient, err := redis.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("初始化Redis失败: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	events, closeEvents, err := provideEvents(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	comps, err := buildComponents(cfg, logger, db, redisClient, events)
	if err != nil {
		return err
	}

	engine, err := router.New(cfg, logger, comps.handlers, comps.auth, comps.limiter)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动成功", gecho.Field("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务失败: %w", err)
	case <-ctx.Done():
	}

	logger.Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已关闭")
	return nil
}
