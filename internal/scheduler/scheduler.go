package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/internal/analyzer"
)

// Scheduler 评估周期调度器
// 首次评估立即执行，后续按配置周期对齐到整点边界触发
type Scheduler struct {
	analyzer *analyzer.Analyzer
	interval time.Duration
}

// NewScheduler 创建调度器
func NewScheduler(a *analyzer.Analyzer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		analyzer: a,
		interval: interval,
	}
}

// Start 启动调度循环，阻塞直到ctx取消
func (s *Scheduler) Start(ctx context.Context) {
	zap.L().Info("🚀 调度器启动",
		zap.Duration("interval", s.interval))

	// 启动后立即执行一次
	s.analyzer.RunCycle(ctx)

	for {
		next := s.nextAlignedTime()
		wait := time.Until(next)

		zap.L().Info("⏰ 下次评估已排期",
			zap.Time("next_run", next),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			zap.L().Info("🛑 调度器已停止")
			return
		case <-time.After(wait):
			s.analyzer.RunCycle(ctx)
		}
	}
}

// nextAlignedTime 计算下一个对齐到周期边界的触发时间
func (s *Scheduler) nextAlignedTime() time.Time {
	now := time.Now()
	aligned := now.Truncate(s.interval).Add(s.interval)
	if !aligned.After(now) {
		aligned = aligned.Add(s.interval)
	}
	return aligned
}
