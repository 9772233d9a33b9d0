package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/internal/analyzer"
	"binance-trade-sentry/internal/strategy/database"
)

// PerformanceMonitor 运行状态监控
// 周期性输出引擎统计，并在数据库启用时汇总各交易对的策略表现
type PerformanceMonitor struct {
	analyzer *analyzer.Analyzer
	db       *database.Manager // 可为nil
	interval time.Duration
	symbols  []string
}

// NewPerformanceMonitor 创建性能监控器
func NewPerformanceMonitor(a *analyzer.Analyzer, db *database.Manager, symbols []string) *PerformanceMonitor {
	return &PerformanceMonitor{
		analyzer: a,
		db:       db,
		interval: 30 * time.Minute,
		symbols:  symbols,
	}
}

// Start 启动监控循环，阻塞直到ctx取消
func (pm *PerformanceMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.report()
		}
	}
}

// report 输出一次运行报告
func (pm *PerformanceMonitor) report() {
	stats := pm.analyzer.GetStats()

	zap.L().Info("📈 引擎运行统计",
		zap.Int64("cycles", stats.Cycles),
		zap.Int64("signals", stats.Signals),
		zap.Int64("trades", stats.Trades),
		zap.Int64("errors", stats.Errors))

	if pm.db != nil {
		pm.printDailyReport()
	}
}

// printDailyReport 打印数据库中近7天的策略表现
func (pm *PerformanceMonitor) printDailyReport() {
	var lines []string

	for _, symbol := range pm.symbols {
		performances, err := pm.db.GetStrategyPerformance(symbol, 7)
		if err != nil {
			zap.L().Warn("⚠️ 策略表现查询失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		var total, buys, sells, trades int
		for _, p := range performances {
			total += p.TotalSignals
			buys += p.BuySignals
			sells += p.SellSignals
			trades += p.TradeCount
		}

		lines = append(lines, fmt.Sprintf("  %-12s 信号:%-4d 买入:%-4d 卖出:%-4d 成交:%-4d",
			symbol, total, buys, sells, trades))
	}

	if len(lines) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("═══════════ 近7天策略表现 ═══════════")
	fmt.Println(strings.Join(lines, "\n"))
	fmt.Println("═════════════════════════════════════")
	fmt.Println()
}
