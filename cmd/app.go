package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/internal/analyzer"
	"binance-trade-sentry/internal/fetcher"
	"binance-trade-sentry/internal/notifier"
	"binance-trade-sentry/internal/scheduler"
	"binance-trade-sentry/internal/storage"
	"binance-trade-sentry/internal/strategy/database"
	"binance-trade-sentry/internal/strategy/monitor"
	"binance-trade-sentry/internal/strategy/signals"
	"binance-trade-sentry/internal/strategy/websocket"
	"binance-trade-sentry/pkg/types"
)

// App 应用程序管理器
type App struct {
	config   *types.Config
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	db       *database.Manager
	wsClient *websocket.Client
}

// NewApp 创建应用程序实例
func NewApp(config *types.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动应用程序
func (app *App) Start() {
	zap.L().Info("🚀 Binance Trade Sentry 启动中...")

	// 初始化各模块
	stateManager := storage.NewStateManager(app.config.Redis)

	if app.config.Database.MySQL.Enabled {
		db, err := database.NewManager(app.config.Database.MySQL)
		if err != nil {
			zap.L().Error("❌ MySQL初始化失败，历史数据持久化已禁用", zap.Error(err))
		} else {
			app.db = db
		}
	}

	// 根据配置选择通知服务（优先级：钉钉 > PushPlus > 控制台）
	var notifyService notifier.Interface
	if app.config.DingTalk.WebhookURL != "" {
		notifyService = notifier.NewDingTalkNotifier(app.config.DingTalk.WebhookURL, app.config.DingTalk.Secret)
	} else if app.config.PushPlus.UserToken != "" {
		notifyService = notifier.NewPushPlusNotifier(app.config.PushPlus.UserToken, app.config.PushPlus.To)
	} else {
		notifyService = notifier.NewConsoleNotifier()
	}

	feed := fetcher.NewBinanceFetcher(app.config.Network)
	arb := app.buildArbitrageStrategy()

	analysisEngine := analyzer.NewAnalyzer(app.config, stateManager, feed, notifyService, app.db, arb)

	// 启动调度器
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		scheduler.NewScheduler(analysisEngine, app.config.Engine.Interval).Start(app.ctx)
	}()

	// 启动性能监控
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		monitor.NewPerformanceMonitor(analysisEngine, app.db, app.allSymbols()).Start(app.ctx)
	}()

	// 启动实时行情流
	if app.config.Stream.Enabled {
		app.startQuoteStream(stateManager)
	}

	zap.L().Info("✅ Binance Trade Sentry 已启动")
}

// buildArbitrageStrategy 按需构建套利策略
func (app *App) buildArbitrageStrategy() *signals.ArbitrageStrategy {
	needed := false
	for _, userCfg := range app.config.Users {
		for _, symCfg := range userCfg.Symbols {
			if symCfg.Strategy == "arbitrage" {
				needed = true
			}
		}
	}
	if !needed {
		return nil
	}

	arb, err := signals.NewArbitrageStrategy(
		app.config.Strategy.Arbitrage,
		fetcher.NewBinanceSpotSource(app.config.Network),
		fetcher.NewCoinbaseSpotSource(app.config.Network),
	)
	if err != nil {
		zap.L().Error("❌ 套利策略初始化失败", zap.Error(err))
		return nil
	}
	return arb
}

// startQuoteStream 启动WebSocket报价流并回填到状态管理器
func (app *App) startQuoteStream(stateManager *storage.StateManager) {
	app.wsClient = websocket.NewClient(app.config.Network.Proxy, app.config.Stream)

	if err := app.wsClient.Connect(); err != nil {
		zap.L().Error("❌ 行情流连接失败，将仅使用REST行情", zap.Error(err))
		return
	}
	if err := app.wsClient.Subscribe(app.allSymbols()); err != nil {
		zap.L().Error("❌ 行情流订阅失败", zap.Error(err))
		return
	}
	app.wsClient.StartReading()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		for {
			select {
			case <-app.ctx.Done():
				return
			case tick := <-app.wsClient.GetQuoteChannel():
				stateManager.StoreQuote(tick.Symbol, tick.Price, tick.Timestamp)
			}
		}
	}()
}

// allSymbols 汇总全部用户配置的交易对，去重排序
func (app *App) allSymbols() []string {
	seen := make(map[string]struct{})
	for _, userCfg := range app.config.Users {
		for symbol := range userCfg.Symbols {
			seen[symbol] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Stop 停止应用程序
func (app *App) Stop() {
	zap.L().Info("🛑 收到停止信号，正在优雅关闭...")
	app.cancel()

	if app.wsClient != nil {
		app.wsClient.Close()
	}

	// 等待所有goroutine结束，最多等待30秒
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("✅ Binance Trade Sentry 已安全关闭")
	case <-time.After(30 * time.Second):
		zap.L().Warn("⚠️ 强制关闭超时")
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			zap.L().Error("❌ 数据库关闭失败", zap.Error(err))
		}
	}
}

// WaitForShutdown 等待关闭信号
func (app *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
