package task

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper 清理闲置限流条目，middleware.ClientLimiter 实现
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// LimiterSweepTask 定期回收限流器内存
type LimiterSweepTask struct {
	limiter Sweeper
	idle    time.Duration
	Cron    *cron.Cron
	logger  *zap.Logger
}

func NewLimiterSweepTask(limiter Sweeper, idle time.Duration, logger *zap.Logger) *LimiterSweepTask {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LimiterSweepTask{
		limiter: limiter,
		idle:    idle,
		Cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With(zap.String("task", "limiter_sweep")),
	}
}

// Start 每 10 分钟执行一次
func (t *LimiterSweepTask) Start() error {
	_, err := t.Cron.AddFunc("0 0/10 * * * *", func() { t.Execute() })
	if err != nil {
		return err
	}
	t.Cron.Start()
	return nil
}

func (t *LimiterSweepTask) Stop() {
	<-t.Cron.Stop().Done()
}

func (t *LimiterSweepTask) Execute() int {
	removed := t.limiter.Sweep(t.idle)
	if removed > 0 {
		t.logger.Debug("已回收闲置限流条目", zap.Int("removed", removed))
	}
	return removed
}
