package analyzer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/internal/fetcher"
	"binance-trade-sentry/internal/notifier"
	"binance-trade-sentry/internal/storage"
	"binance-trade-sentry/internal/strategy/database"
	"binance-trade-sentry/internal/strategy/engine"
	"binance-trade-sentry/internal/strategy/signals"
	"binance-trade-sentry/internal/trader"
	"binance-trade-sentry/pkg/types"
)

// 实时报价缓存的有效期，超期后回退到REST查询
const quoteMaxAge = 2 * time.Minute

// Stats 引擎运行统计
type Stats struct {
	Cycles  int64 `json:"cycles"`
	Signals int64 `json:"signals"`
	Trades  int64 `json:"trades"`
	Errors  int64 `json:"errors"`
}

// Analyzer 信号评估与交易执行核心
// 每个评估周期遍历全部用户×交易对组合，单个组合的失败不影响其他组合
type Analyzer struct {
	cfg    *types.Config
	store  *storage.StateManager
	feed   fetcher.PriceFeed
	notify notifier.Interface
	db     *database.Manager // 未启用MySQL时为nil
	arb    *signals.ArbitrageStrategy

	mu         sync.Mutex
	strategies map[string]signals.Strategy
	venues     map[string]engine.TradingVenue
	stats      Stats
}

// NewAnalyzer 创建信号分析器
func NewAnalyzer(cfg *types.Config, store *storage.StateManager, feed fetcher.PriceFeed,
	notify notifier.Interface, db *database.Manager, arb *signals.ArbitrageStrategy) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		store:      store,
		feed:       feed,
		notify:     notify,
		db:         db,
		arb:        arb,
		strategies: make(map[string]signals.Strategy),
		venues:     make(map[string]engine.TradingVenue),
	}
}

// RunCycle 执行一个完整评估周期
func (a *Analyzer) RunCycle(ctx context.Context) {
	start := time.Now()

	// 基准序列每周期拉取一次，失败时动量策略降级为风险关闭状态
	benchmark, err := a.feed.DailyOHLCV(ctx, a.cfg.Engine.Benchmark, a.cfg.Engine.HistoryLimit)
	if err != nil {
		zap.L().Error("❌ 基准序列拉取失败，本周期动量买入将被抑制",
			zap.String("benchmark", a.cfg.Engine.Benchmark),
			zap.Error(err))
		benchmark = nil
	}

	evaluated := 0
	for _, userID := range sortedKeys(a.cfg.Users) {
		userCfg := a.cfg.Users[userID]
		for _, symbol := range sortedKeys(userCfg.Symbols) {
			symCfg := userCfg.Symbols[symbol]

			if err := a.evaluateSymbol(ctx, userID, userCfg, symbol, symCfg, benchmark); err != nil {
				a.mu.Lock()
				a.stats.Errors++
				a.mu.Unlock()

				zap.L().Error("❌ 评估失败",
					zap.String("user", userID),
					zap.String("symbol", symbol),
					zap.Error(err))
			}
			evaluated++
		}
	}

	a.mu.Lock()
	a.stats.Cycles++
	a.mu.Unlock()

	zap.L().Info("📊 评估周期完成",
		zap.Int("pairs", evaluated),
		zap.Duration("elapsed", time.Since(start)))
}

// evaluateSymbol 评估单个用户×交易对组合
func (a *Analyzer) evaluateSymbol(ctx context.Context, userID string, userCfg types.UserConfig,
	symbol string, symCfg types.SymbolConfig, benchmark types.PriceSeries) error {
	state := a.store.GetOrCreate(userID, symbol, symCfg)

	if state.Strategy == "arbitrage" {
		return a.evaluateArbitrage(ctx, state, userCfg)
	}

	asset, err := a.feed.DailyOHLCV(ctx, symbol, a.cfg.Engine.HistoryLimit)
	if err != nil {
		return fmt.Errorf("K线拉取失败: %w", err)
	}

	signal, err := a.EvaluateSignal(state.Strategy, asset, benchmark)
	if err != nil {
		return err
	}

	price, err := a.currentPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("价格查询失败: %w", err)
	}

	a.mu.Lock()
	a.stats.Signals++
	a.mu.Unlock()

	a.recordSignal(state, signal, price)

	exec, err := a.executorFor(ctx, state, userID, userCfg)
	if err != nil {
		return err
	}

	decision, message, err := engine.DecideAndExecute(state, signal, price, exec)
	a.store.Persist(state)
	if err != nil {
		return fmt.Errorf("交易执行失败: %w", err)
	}
	if decision == nil {
		return nil
	}

	a.mu.Lock()
	a.stats.Trades++
	a.mu.Unlock()

	alert := &types.TradeAlert{
		UserID:    userID,
		Symbol:    symbol,
		Side:      decision.Side,
		Quantity:  decision.Quantity,
		Price:     price,
		Signal:    signal,
		Mode:      decision.Mode,
		Message:   message,
		AlertTime: time.Now(),
	}
	a.recordTrade(alert, signal)

	if userCfg.Notifications {
		if err := a.notify.SendTradeAlert(alert); err != nil {
			zap.L().Warn("⚠️ 交易通知发送失败", zap.Error(err))
		}
	}

	return nil
}

// evaluateArbitrage 评估套利信号
// 套利信号仅通知，不驱动交易状态机
func (a *Analyzer) evaluateArbitrage(ctx context.Context, state *types.SymbolState, userCfg types.UserConfig) error {
	if a.arb == nil {
		return fmt.Errorf("套利策略未配置")
	}

	signal, quote, err := a.arb.Evaluate(ctx)
	if err != nil {
		return fmt.Errorf("套利评估失败: %w", err)
	}

	a.mu.Lock()
	a.stats.Signals++
	a.mu.Unlock()

	if signal == state.LastSignal {
		return nil
	}
	state.LastSignal = signal
	a.store.Persist(state)

	if signal == types.SignalHold {
		return nil
	}

	cheaper, side := quote.VenueA, types.SideBuy
	if signal == types.SignalBuyBSellA {
		cheaper = quote.VenueB
	}

	zap.L().Info("💰 检测到套利机会",
		zap.String("symbol", state.Symbol),
		zap.String("cheaper_venue", cheaper),
		zap.Float64("price_a", quote.PriceA),
		zap.Float64("price_b", quote.PriceB),
		zap.Float64("spread", quote.Spread))

	a.recordSignal(state, signal, quote.PriceA)

	if userCfg.Notifications {
		alert := &types.TradeAlert{
			UserID: state.UserID,
			Symbol: state.Symbol,
			Side:   side,
			Price:  quote.PriceA,
			Signal: signal,
			Mode:   state.Mode,
			Message: fmt.Sprintf("%s $%.2f vs %s $%.2f，价差 %.2f%%",
				quote.VenueA, quote.PriceA, quote.VenueB, quote.PriceB, quote.Spread*100),
			AlertTime: time.Now(),
		}
		if err := a.notify.SendTradeAlert(alert); err != nil {
			zap.L().Warn("⚠️ 套利通知发送失败", zap.Error(err))
		}
	}

	return nil
}

// EvaluateSignal 按策略名评估序列的最新信号
func (a *Analyzer) EvaluateSignal(strategyName string, asset, benchmark types.PriceSeries) (types.Signal, error) {
	strategy, err := a.strategyFor(strategyName)
	if err != nil {
		return types.SignalHold, err
	}

	sigs, err := strategy.EvaluateSeries(asset, benchmark)
	if err != nil {
		return types.SignalHold, fmt.Errorf("策略 %s 评估失败: %w", strategy.Name(), err)
	}
	return signals.Latest(sigs), nil
}

// strategyFor 获取或创建策略实例
func (a *Analyzer) strategyFor(name string) (signals.Strategy, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strategy, ok := a.strategies[name]; ok {
		return strategy, nil
	}

	strategy, err := signals.New(name, a.cfg.Strategy)
	if err != nil {
		return nil, err
	}
	a.strategies[name] = strategy
	return strategy, nil
}

// executorFor 按执行模式构建执行器
func (a *Analyzer) executorFor(ctx context.Context, state *types.SymbolState, userID string, userCfg types.UserConfig) (engine.Executor, error) {
	if state.Mode == types.ModeSimulated {
		if state.Ledger == nil {
			state.Ledger = types.NewSimLedger(10000)
		}
		return engine.NewSimulatedExecutor(state.Ledger), nil
	}

	venue, err := a.venueFor(userID, userCfg)
	if err != nil {
		return nil, err
	}

	planner := engine.NewProtectivePlanner(state.StopLossPct, state.TakeProfitPct)
	return engine.NewLiveExecutor(ctx, venue, state.Symbol, planner), nil
}

// venueFor 获取或创建用户的实盘交易客户端
func (a *Analyzer) venueFor(userID string, userCfg types.UserConfig) (engine.TradingVenue, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if venue, ok := a.venues[userID]; ok {
		return venue, nil
	}

	if userCfg.APIKey == "" || userCfg.APISecret == "" {
		return nil, fmt.Errorf("用户 %s 未配置实盘API凭据", userID)
	}

	venue := trader.NewBinanceClient(userCfg.APIKey, userCfg.APISecret, a.cfg.Network)
	a.venues[userID] = venue
	return venue, nil
}

// currentPrice 查询当前价格，优先使用实时报价缓存
func (a *Analyzer) currentPrice(ctx context.Context, symbol string) (float64, error) {
	if price, ok := a.store.LatestQuote(symbol, quoteMaxAge); ok {
		return price, nil
	}
	return a.feed.LatestPrice(ctx, symbol)
}

// recordSignal 信号落库，数据库未启用或写入失败不影响主流程
func (a *Analyzer) recordSignal(state *types.SymbolState, signal types.Signal, price float64) {
	if a.db == nil {
		return
	}
	if err := a.db.SaveSignal(state.UserID, state.Symbol, state.Strategy, signal, price, time.Now()); err != nil {
		zap.L().Warn("⚠️ 信号落库失败", zap.Error(err))
	}
}

// recordTrade 成交落库并更新策略统计
func (a *Analyzer) recordTrade(alert *types.TradeAlert, signal types.Signal) {
	if a.db == nil {
		return
	}
	if err := a.db.SaveTrade(alert); err != nil {
		zap.L().Warn("⚠️ 成交落库失败", zap.Error(err))
	}
	if err := a.db.UpdateStrategyPerformance(alert.Symbol, signal, true); err != nil {
		zap.L().Warn("⚠️ 策略统计更新失败", zap.Error(err))
	}
}

// GetStats 获取运行统计快照
func (a *Analyzer) GetStats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// sortedKeys 返回排序后的map键，保证遍历顺序稳定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
