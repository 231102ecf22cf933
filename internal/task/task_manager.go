package task

import (
	"time"

	"go.uber.org/zap"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务，未配置依赖的任务不启动
type TaskManager struct {
	cleanupTask *AILogCleanupTask
	sweepTask   *LimiterSweepTask
	logger      *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	LogRepo LogPurger // 为 nil 时不清理日志
	Limiter Sweeper   // 为 nil 时不回收限流条目
	Logger  *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	RetentionDays int
	LimiterIdle   time.Duration
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps TaskManagerDeps, cfg TaskManagerConfig) *TaskManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tm := &TaskManager{logger: logger}
	if deps.LogRepo != nil {
		tm.cleanupTask = NewAILogCleanupTask(deps.LogRepo, cfg.RetentionDays, logger)
	}
	if deps.Limiter != nil {
		tm.sweepTask = NewLimiterSweepTask(deps.Limiter, cfg.LimiterIdle, logger)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.cleanupTask != nil {
		if err := tm.cleanupTask.Start(); err != nil {
			return err
		}
	}
	if tm.sweepTask != nil {
		if err := tm.sweepTask.Start(); err != nil {
			return err
		}
	}
	tm.logger.Info("后台任务已启动", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.cleanupTask != nil {
		tm.cleanupTask.Stop()
	}
	if tm.sweepTask != nil {
		tm.sweepTask.Stop()
	}
	tm.logger.Info("后台任务已全部停止")
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"ai_log_cleanup": tm.cleanupTask != nil,
		"limiter_sweep":  tm.sweepTask != nil,
	}
}
