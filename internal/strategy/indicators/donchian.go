package indicators

import (
	"math"

	"binance-trade-sentry/pkg/types"
)

// DonchianCalculator 唐奇安通道计算器
type DonchianCalculator struct {
	window int
}

// NewDonchianCalculator 创建唐奇安通道计算器
func NewDonchianCalculator(window int) *DonchianCalculator {
	return &DonchianCalculator{
		window: window,
	}
}

// Highs 计算window窗口内最高价的滚动最大值序列，窗口未满时为NaN
func (dc *DonchianCalculator) Highs(bars types.PriceSeries) []float64 {
	result := make([]float64, len(bars))
	for i := range bars {
		if i < dc.window-1 {
			result[i] = math.NaN()
			continue
		}

		highest := bars[i-dc.window+1].High
		for j := i - dc.window + 2; j <= i; j++ {
			if bars[j].High > highest {
				highest = bars[j].High
			}
		}
		result[i] = highest
	}
	return result
}

// Lows 计算window窗口内最低价的滚动最小值序列，窗口未满时为NaN
func (dc *DonchianCalculator) Lows(bars types.PriceSeries) []float64 {
	result := make([]float64, len(bars))
	for i := range bars {
		if i < dc.window-1 {
			result[i] = math.NaN()
			continue
		}

		lowest := bars[i-dc.window+1].Low
		for j := i - dc.window + 2; j <= i; j++ {
			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
		}
		result[i] = lowest
	}
	return result
}

// Width 计算通道宽度相对中轨的百分比
func (dc *DonchianCalculator) Width(upper, lower float64) float64 {
	middle := (upper + lower) / 2
	if middle == 0 || math.IsNaN(middle) {
		return math.NaN()
	}
	return (upper - lower) / middle * 100
}
