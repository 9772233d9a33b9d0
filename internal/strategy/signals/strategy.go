package signals

import (
	"fmt"
	"strings"

	"binance-trade-sentry/pkg/types"
)

// Strategy 基于历史序列的信号策略接口
type Strategy interface {
	// Name 策略名称
	Name() string
	// EvaluateSeries 对整条序列逐根K线评估信号，输出与输入等长
	EvaluateSeries(asset, benchmark types.PriceSeries) ([]types.Signal, error)
}

// New 策略工厂：按名称创建序列策略并校验参数
// 套利策略依赖外部报价源，不经由此工厂创建
func New(name string, cfg types.StrategyConfig) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "momentum", "":
		return NewMomentumStrategy(cfg.Momentum)
	case "trend":
		return NewTrendStrategy(cfg.Trend)
	default:
		return nil, fmt.Errorf("未知策略: %s (可选: momentum, trend, arbitrage)", name)
	}
}

// Latest 取序列信号中最新一个，序列为空时返回hold
func Latest(sigs []types.Signal) types.Signal {
	if len(sigs) == 0 {
		return types.SignalHold
	}
	return sigs[len(sigs)-1]
}
