package signals

import (
	"fmt"

	"binance-trade-sentry/internal/strategy/indicators"
	"binance-trade-sentry/pkg/types"
)

// TrendStrategy 趋势跟踪策略
// EMA金叉死叉与唐奇安通道突破任一触发即产生信号，不依赖基准序列
type TrendStrategy struct {
	shortWindow    int
	longWindow     int
	donchianCalc   *indicators.DonchianCalculator
	donchianWindow int
}

// NewTrendStrategy 创建趋势跟踪策略并校验配置
func NewTrendStrategy(cfg types.TrendConfig) (*TrendStrategy, error) {
	if cfg.ShortWindow <= 0 || cfg.LongWindow <= 0 || cfg.DonchianWindow <= 0 {
		return nil, fmt.Errorf("趋势策略窗口参数必须大于0: short=%d long=%d donchian=%d",
			cfg.ShortWindow, cfg.LongWindow, cfg.DonchianWindow)
	}
	if cfg.ShortWindow >= cfg.LongWindow {
		return nil, fmt.Errorf("趋势策略短周期必须小于长周期: short=%d long=%d",
			cfg.ShortWindow, cfg.LongWindow)
	}

	return &TrendStrategy{
		shortWindow:    cfg.ShortWindow,
		longWindow:     cfg.LongWindow,
		donchianCalc:   indicators.NewDonchianCalculator(cfg.DonchianWindow),
		donchianWindow: cfg.DonchianWindow,
	}, nil
}

// Name 策略名称
func (s *TrendStrategy) Name() string {
	return "trend"
}

// EvaluateSeries 逐根K线评估趋势信号
// 买入：短EMA上穿长EMA，或收盘价突破前一根的唐奇安上轨
// 卖出：短EMA下穿长EMA，或收盘价跌破前一根的唐奇安下轨
func (s *TrendStrategy) EvaluateSeries(asset, benchmark types.PriceSeries) ([]types.Signal, error) {
	if len(asset) == 0 {
		return nil, fmt.Errorf("资产序列为空")
	}

	closes := asset.Closes()
	emaShort := indicators.EMA(closes, s.shortWindow)
	emaLong := indicators.EMA(closes, s.longWindow)

	donchianHighs := s.donchianCalc.Highs(asset)
	donchianLows := s.donchianCalc.Lows(asset)

	sigs := make([]types.Signal, len(asset))
	for i := range asset {
		sigs[i] = types.SignalHold
		if i == 0 {
			continue
		}

		spread := emaShort[i] - emaLong[i]
		prevSpread := emaShort[i-1] - emaLong[i-1]

		// NaN参与的比较恒为false，窗口未满时不会触发
		crossUp := spread > 0 && prevSpread <= 0
		crossDown := spread < 0 && prevSpread >= 0
		breakoutUp := closes[i] > donchianHighs[i-1]
		breakoutDown := closes[i] < donchianLows[i-1]

		switch {
		case crossUp || breakoutUp:
			sigs[i] = types.SignalBuy
		case crossDown || breakoutDown:
			sigs[i] = types.SignalSell
		}
	}

	return sigs, nil
}
