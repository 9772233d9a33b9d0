package indicators

import (
	"math"
	"sort"

	"binance-trade-sentry/pkg/types"
)

// OBV 计算能量潮：按收盘价涨跌方向累加成交量，持平视作0
func OBV(bars types.PriceSeries) []float64 {
	result := make([]float64, len(bars))

	cum := 0.0
	for i, bar := range bars {
		if i == 0 {
			result[i] = 0
			continue
		}

		switch {
		case bar.Close > bars[i-1].Close:
			cum += bar.Volume
		case bar.Close < bars[i-1].Close:
			cum -= bar.Volume
		}
		result[i] = cum
	}

	return result
}

// RollingQuantile 计算window窗口的滚动分位数（线性插值），窗口未满时为NaN
func RollingQuantile(values []float64, window int, q float64) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}

		sorted := make([]float64, window)
		copy(sorted, values[i-window+1:i+1])
		sort.Float64s(sorted)

		pos := q * float64(window-1)
		lower := int(math.Floor(pos))
		upper := int(math.Ceil(pos))
		if lower == upper {
			result[i] = sorted[lower]
			continue
		}
		frac := pos - float64(lower)
		result[i] = sorted[lower]*(1-frac) + sorted[upper]*frac
	}
	return result
}

// VolumeRatio 计算成交量相对其126日滚动60分位的倍数
// 采用"比率"口径：当前成交量 / 滚动60分位值
func VolumeRatio(volumes []float64, window int) []float64 {
	q60 := RollingQuantile(volumes, window, 0.6)

	result := make([]float64, len(volumes))
	for i := range volumes {
		if math.IsNaN(q60[i]) || q60[i] == 0 {
			result[i] = math.NaN()
			continue
		}
		result[i] = volumes[i] / q60[i]
	}
	return result
}
