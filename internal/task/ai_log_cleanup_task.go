package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LogPurger 按时间删除调用日志，repository.AICallLogRepository 实现
type LogPurger interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// AILogCleanupTask AI 调用日志保留期清理
type AILogCleanupTask struct {
	repo      LogPurger
	retention time.Duration
	Cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
}

func NewAILogCleanupTask(repo LogPurger, retentionDays int, logger *zap.Logger) *AILogCleanupTask {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AILogCleanupTask{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		Cron:      cron.New(cron.WithSeconds()), // 支持秒级控制
		logger:    logger.With(zap.String("task", "ai_log_cleanup")),
		now:       time.Now,
	}
}

// Start 启动时先执行一次，之后每天 03:30 执行
func (t *AILogCleanupTask) Start() error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.Execute(ctx)
	}()

	// Cron: "0 30 3 * * *"
	_, err := t.Cron.AddFunc("0 30 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.Execute(ctx)
	})
	if err != nil {
		return err
	}

	t.Cron.Start()
	t.logger.Info("AI 调用日志清理任务已启动", zap.Duration("retention", t.retention))
	return nil
}

// Stop 等待执行中的任务结束
func (t *AILogCleanupTask) Stop() {
	<-t.Cron.Stop().Done()
}

// Execute 删除保留期之前的日志
func (t *AILogCleanupTask) Execute(ctx context.Context) int64 {
	cutoff := t.now().Add(-t.retention)

	deleted, err := t.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		t.logger.Error("清理 AI 调用日志失败", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		t.logger.Info("已清理过期 AI 调用日志", zap.Int64("deleted", deleted), zap.Time("before", cutoff))
	}
	return deleted
}
