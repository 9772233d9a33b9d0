package signals

import (
	"context"
	"fmt"
	"math"

	"binance-trade-sentry/pkg/types"
)

// QuoteSource 现货报价源接口
type QuoteSource interface {
	// Name 报价源名称
	Name() string
	// SpotPrice 查询交易对最新现货价格
	SpotPrice(ctx context.Context, symbol string) (float64, error)
}

// ArbitrageStrategy 跨交易所价差套利策略
// 任一报价源失败即整体失败，绝不基于过期单边价格发信号
type ArbitrageStrategy struct {
	symbol    string
	threshold float64
	venueA    QuoteSource
	venueB    QuoteSource
}

// NewArbitrageStrategy 创建套利策略并校验配置
func NewArbitrageStrategy(cfg types.ArbitrageConfig, venueA, venueB QuoteSource) (*ArbitrageStrategy, error) {
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("套利触发阈值必须大于0: %f", cfg.Threshold)
	}
	if venueA == nil || venueB == nil {
		return nil, fmt.Errorf("套利策略需要两个报价源")
	}

	symbol := cfg.Symbol
	if symbol == "" {
		symbol = "BTCUSDT"
	}

	return &ArbitrageStrategy{
		symbol:    symbol,
		threshold: cfg.Threshold,
		venueA:    venueA,
		venueB:    venueB,
	}, nil
}

// Name 策略名称
func (s *ArbitrageStrategy) Name() string {
	return "arbitrage"
}

// Symbol 套利交易对
func (s *ArbitrageStrategy) Symbol() string {
	return s.symbol
}

// Evaluate 拉取双边报价并评估套利信号
func (s *ArbitrageStrategy) Evaluate(ctx context.Context) (types.Signal, *types.ArbitrageQuote, error) {
	priceA, err := s.venueA.SpotPrice(ctx, s.symbol)
	if err != nil {
		return types.SignalHold, nil, fmt.Errorf("%s 报价失败: %w", s.venueA.Name(), err)
	}

	priceB, err := s.venueB.SpotPrice(ctx, s.symbol)
	if err != nil {
		return types.SignalHold, nil, fmt.Errorf("%s 报价失败: %w", s.venueB.Name(), err)
	}

	quote := &types.ArbitrageQuote{
		VenueA: s.venueA.Name(),
		VenueB: s.venueB.Name(),
		PriceA: priceA,
		PriceB: priceB,
		Spread: SpreadRatio(priceA, priceB),
	}

	return ClassifySpread(priceA, priceB, s.threshold), quote, nil
}

// SpreadRatio 计算双边价差比率：|a-b| / min(a,b)
func SpreadRatio(priceA, priceB float64) float64 {
	lower := math.Min(priceA, priceB)
	if lower <= 0 {
		return math.NaN()
	}
	return math.Abs(priceA-priceB) / lower
}

// ClassifySpread 按价差分类套利信号：在低价交易所买入，高价交易所卖出
// 纯函数，价差未超阈值时返回hold
func ClassifySpread(priceA, priceB, threshold float64) types.Signal {
	spread := SpreadRatio(priceA, priceB)
	if !(spread > threshold) {
		return types.SignalHold
	}

	if priceA < priceB {
		return types.SignalBuyASellB
	}
	return types.SignalBuyBSellA
}
