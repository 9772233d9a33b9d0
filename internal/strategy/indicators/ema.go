package indicators

import "math"

// EMA 计算指数移动平均，平滑系数 alpha = 2/(span+1)
// 以首个有效值为种子，序列前导NaN会被跳过并保留为NaN
func EMA(values []float64, span int) []float64 {
	result := make([]float64, len(values))
	if span <= 0 {
		for i := range result {
			result[i] = math.NaN()
		}
		return result
	}

	alpha := 2.0 / (float64(span) + 1.0)
	started := false
	prev := 0.0

	for i, v := range values {
		if !started {
			if math.IsNaN(v) {
				result[i] = math.NaN()
				continue
			}
			prev = v
			result[i] = v
			started = true
			continue
		}

		if math.IsNaN(v) {
			// 输入缺失时延续上一个EMA值
			result[i] = prev
			continue
		}

		prev = alpha*v + (1-alpha)*prev
		result[i] = prev
	}

	return result
}

// Diff 计算一阶差分，首个元素为NaN
func Diff(values []float64) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i == 0 || math.IsNaN(values[i]) || math.IsNaN(values[i-1]) {
			result[i] = math.NaN()
			continue
		}
		result[i] = values[i] - values[i-1]
	}
	return result
}

// MACD 计算MACD线：EMA12 - EMA26
func MACD(values []float64) []float64 {
	ema12 := EMA(values, 12)
	ema26 := EMA(values, 26)

	result := make([]float64, len(values))
	for i := range values {
		result[i] = ema12[i] - ema26[i]
	}
	return result
}

// RSI 计算相对强弱指标：period周期内平均涨幅与平均跌幅之比
// 前period个位置为NaN
func RSI(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range result {
		result[i] = math.NaN()
	}
	if period <= 0 || len(values) <= period {
		return result
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		diff := values[i] - values[i-1]
		if diff > 0 {
			gains[i] = diff
		} else {
			losses[i] = -diff
		}
	}

	// 差分序列从下标1开始，因此RSI从下标period开始有效
	for i := period; i < len(values); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)

		rs := avgGain / avgLoss // avgLoss为0时rs为+Inf，RSI趋于100
		result[i] = 100 - (100 / (1 + rs))
	}

	return result
}

// ROC 计算period周期涨跌幅（百分比变化），前period个位置为NaN
func ROC(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < period || values[i-period] == 0 ||
			math.IsNaN(values[i]) || math.IsNaN(values[i-period]) {
			result[i] = math.NaN()
			continue
		}
		result[i] = (values[i] - values[i-period]) / values[i-period]
	}
	return result
}

// RollingMean 计算window窗口的滚动均值，窗口未满时为NaN
func RollingMean(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}

		sum := 0.0
		valid := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}

		if !valid {
			result[i] = math.NaN()
			continue
		}
		result[i] = sum / float64(window)
	}
	return result
}
