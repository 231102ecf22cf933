package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/config"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/controller"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/middleware"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/repository"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/router"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/task"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/database"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
)

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB // 未配置 DATABASE_DSN 时为 nil
	Metrics     *metrics.Collector
	Limiter     *middleware.ClientLimiter
	Services    *Services
	Controllers router.Controllers
	FilesDir    string
}

type Services struct {
	Copy     *service.CopyService
	TikTok   *service.TikTokService
	Analysis *service.AnalysisService
	Image    *service.ImageService
	Usage    *service.UsageService
}

func runServe(cfg *config.Config) error {
	logger := newLogger(cfg.Server)
	defer logger.Sync()

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, err := initDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	tm := initTasks(deps)
	defer tm.Stop()

	r := router.New(deps.Controllers, router.Options{
		Logger:    logger,
		Metrics:   deps.Metrics,
		Limiter:   deps.Limiter,
		JWTSecret: cfg.Auth.JWTSecret,
		FilesDir:  deps.FilesDir,
	})

	return startServer(r, cfg.Server.Port, logger)
}

// ==================== 依赖初始化 ====================

func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCollector(),
		Limiter: middleware.NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}

	// 1. 数据库 (可选)
	var logRepo repository.AICallLogRepository
	if cfg.Database.Enabled() {
		db, err := database.InitDB(database.Options{
			Driver: cfg.Database.Driver,
			DSN:    cfg.Database.DSN,
			Debug:  cfg.Server.IsDevelopment(),
		}, logger, &model.AICallLog{})
		if err != nil {
			return nil, err
		}
		deps.DB = db
		logRepo = repository.NewAICallLogRepository(db)
	} else {
		logger.Warn("未配置 DATABASE_DSN，调用日志与用量统计不可用")
	}

	// 2. 存储 (可选)
	storage, err := service.NewStorageProvider(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	if local, ok := storage.(*service.LocalStorage); ok {
		deps.FilesDir = local.Root()
	}

	// 3. 上游客户端，缺少 Key 时在请求时报错
	chat := newDeepSeekSource(cfg, logger)
	vision := service.NewChatSource(llm.NewClient(llm.Config{
		Provider:  "Qwen",
		APIKey:    cfg.Qwen.APIKey,
		APIKeyEnv: "QWEN_API_KEY",
		BaseURL:   cfg.Qwen.BaseURL,
		Model:     cfg.Qwen.Model,
		ModelEnv:  "QWEN_MODEL",
		Timeout:   cfg.Qwen.Timeout,
	}, logger))
	images := service.NewImageSource(qwenimage.NewClient(qwenimage.Config{
		APIKey:  cfg.QwenImage.APIKey,
		BaseURL: cfg.QwenImage.BaseURL,
		Model:   cfg.QwenImage.Model,
	}, logger))

	// 4. 服务层
	recorder := service.NewCallRecorder(logRepo, deps.Metrics, logger)
	deps.Services = &Services{
		Copy:     service.NewCopyService(chat, recorder, deps.Metrics, logger),
		TikTok:   service.NewTikTokService(chat, recorder, logger),
		Analysis: service.NewAnalysisService(vision, recorder, logger),
		Image: service.NewImageService(images, storage, service.ImagePolling{
			MaxAttempts: cfg.QwenImage.MaxAttempts,
			Interval:    cfg.QwenImage.Interval,
		}, recorder, deps.Metrics, logger),
		Usage: service.NewUsageService(logRepo),
	}

	// 5. 控制器
	deps.Controllers = router.Controllers{
		Generate: controller.NewGenerateController(deps.Services.Copy),
		TikTok:   controller.NewTikTokController(deps.Services.TikTok, deps.Metrics, logger),
		Image:    controller.NewImageController(deps.Services.Image, deps.Services.Analysis),
		Usage:    controller.NewUsageController(deps.Services.Usage),
	}

	return deps, nil
}

// Close 释放数据库连接
func (d *Dependencies) Close() {
	if d.DB == nil {
		return
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func initTasks(deps *Dependencies) *task.TaskManager {
	taskDeps := task.TaskManagerDeps{
		Limiter: deps.Limiter,
		Logger:  deps.Logger,
	}
	if deps.DB != nil {
		taskDeps.LogRepo = repository.NewAICallLogRepository(deps.DB)
	}

	tm := task.NewTaskManager(taskDeps, task.TaskManagerConfig{
		RetentionDays: deps.Config.Database.RetentionDays,
	})
	if err := tm.Start(); err != nil {
		deps.Logger.Error("后台任务启动失败", zap.Error(err))
	}
	return tm
}

// ==================== 服务启动 ====================

func startServer(r *gin.Engine, port string, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case <-quit:
	}

	logger.Info("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务关闭超时: %w", err)
	}
	logger.Info("服务已退出")
	return nil
}
