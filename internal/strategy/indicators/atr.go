package indicators

import (
	"math"

	"binance-trade-sentry/pkg/types"
)

// ATRCalculator ATR指标计算器
type ATRCalculator struct {
	length int
}

// NewATRCalculator 创建ATR计算器
func NewATRCalculator(length int) *ATRCalculator {
	return &ATRCalculator{
		length: length,
	}
}

// TrueRange 计算真实波幅序列
// 首根K线没有前收盘价，真实波幅取 high-low
func (ac *ATRCalculator) TrueRange(bars types.PriceSeries) []float64 {
	trValues := make([]float64, len(bars))

	for i, bar := range bars {
		hl := bar.High - bar.Low
		if i == 0 {
			trValues[i] = hl
			continue
		}

		prevClose := bars[i-1].Close
		hc := math.Abs(bar.High - prevClose)
		lc := math.Abs(bar.Low - prevClose)

		trValues[i] = math.Max(hl, math.Max(hc, lc))
	}

	return trValues
}

// Series 计算整条ATR序列（真实波幅的滚动均值），窗口未满时为NaN
func (ac *ATRCalculator) Series(bars types.PriceSeries) []float64 {
	return RollingMean(ac.TrueRange(bars), ac.length)
}

// Latest 计算最新一根K线的ATR值，数据不足时返回NaN
func (ac *ATRCalculator) Latest(bars types.PriceSeries) float64 {
	series := ac.Series(bars)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// Normalized 计算标准化ATR（ATR相对价格的比率）
func (ac *ATRCalculator) Normalized(atrValue, price float64) float64 {
	if price == 0 {
		return math.NaN()
	}
	return atrValue / price
}
