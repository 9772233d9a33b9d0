package backtest

import (
	"fmt"

	"go.uber.org/zap"

	"binance-trade-sentry/internal/strategy/signals"
	"binance-trade-sentry/pkg/types"
)

// Result 单个交易对的回测结果
type Result struct {
	Symbol      string  `json:"symbol"`
	Strategy    string  `json:"strategy"`
	Bars        int     `json:"bars"`
	Trades      int     `json:"trades"`
	ROI         float64 `json:"roi"`          // 总收益率
	MaxDrawdown float64 `json:"max_drawdown"` // 最大回撤，非负
	FinalEquity float64 `json:"final_equity"` // 期末权益（期初为1.0）
}

// Run 对历史序列回测一个策略
// 买入信号全仓按收盘价建仓，卖出信号全仓平仓，hold延续当前仓位
func Run(strategy signals.Strategy, symbol string, asset, benchmark types.PriceSeries) (*Result, error) {
	if len(asset) == 0 {
		return nil, fmt.Errorf("资产序列为空")
	}

	sigs, err := strategy.EvaluateSeries(asset, benchmark)
	if err != nil {
		return nil, fmt.Errorf("策略评估失败: %w", err)
	}
	if len(sigs) != len(asset) {
		return nil, fmt.Errorf("信号序列长度不匹配: %d != %d", len(sigs), len(asset))
	}

	cash := 1.0
	position := 0.0
	trades := 0

	peak := 1.0
	maxDrawdown := 0.0

	for i, bar := range asset {
		switch sigs[i] {
		case types.SignalBuy:
			if position == 0 && bar.Close > 0 {
				position = cash / bar.Close
				cash = 0
				trades++
			}
		case types.SignalSell:
			if position > 0 {
				cash += position * bar.Close
				position = 0
				trades++
			}
		}

		equity := cash + position*bar.Close
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			drawdown := (peak - equity) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	finalEquity := cash + position*asset[len(asset)-1].Close

	return &Result{
		Symbol:      symbol,
		Strategy:    strategy.Name(),
		Bars:        len(asset),
		Trades:      trades,
		ROI:         finalEquity - 1,
		MaxDrawdown: maxDrawdown,
		FinalEquity: finalEquity,
	}, nil
}

// RunAll 批量回测多个交易对，单个失败不影响其他
func RunAll(strategy signals.Strategy, series map[string]types.PriceSeries, benchmark types.PriceSeries) []*Result {
	results := make([]*Result, 0, len(series))

	for symbol, asset := range series {
		result, err := Run(strategy, symbol, asset, benchmark)
		if err != nil {
			zap.L().Warn("⚠️ 回测失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		zap.L().Info("📊 回测完成",
			zap.String("symbol", symbol),
			zap.String("strategy", result.Strategy),
			zap.Int("trades", result.Trades),
			zap.Float64("roi", result.ROI),
			zap.Float64("max_drawdown", result.MaxDrawdown))

		results = append(results, result)
	}

	return results
}
