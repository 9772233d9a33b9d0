package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMAConstantSeries(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5}
	result := EMA(values, 3)

	require.Len(t, result, len(values))
	for i, v := range result {
		assert.InDelta(t, 5.0, v, 1e-12, "常数序列的EMA应保持不变, i=%d", i)
	}
}

func TestEMASeedAndSmoothing(t *testing.T) {
	values := []float64{10, 20}
	result := EMA(values, 3) // alpha = 0.5

	assert.Equal(t, 10.0, result[0], "首值作为种子")
	assert.InDelta(t, 15.0, result[1], 1e-12)
}

func TestEMALeadingNaN(t *testing.T) {
	values := []float64{math.NaN(), math.NaN(), 10, 12}
	result := EMA(values, 3)

	assert.True(t, math.IsNaN(result[0]))
	assert.True(t, math.IsNaN(result[1]))
	assert.Equal(t, 10.0, result[2])
	assert.InDelta(t, 11.0, result[3], 1e-12)
}

func TestDiff(t *testing.T) {
	result := Diff([]float64{1, 3, 2})

	assert.True(t, math.IsNaN(result[0]))
	assert.Equal(t, 2.0, result[1])
	assert.Equal(t, -1.0, result[2])
}

func TestRSIAllGains(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(100 + i)
	}

	result := RSI(values, 14)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(result[i]), "窗口未满时RSI应为NaN, i=%d", i)
	}
	// 只涨不跌时平均跌幅为0，RSI趋于100
	assert.InDelta(t, 100.0, result[19], 1e-9)
}

func TestRSIAllLosses(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(100 - i)
	}

	result := RSI(values, 14)
	assert.InDelta(t, 0.0, result[19], 1e-9)
}

func TestROC(t *testing.T) {
	values := []float64{100, 0, 0, 0, 110}
	result := ROC(values, 4)

	assert.True(t, math.IsNaN(result[0]))
	assert.True(t, math.IsNaN(result[3]))
	assert.InDelta(t, 0.10, result[4], 1e-12)
}

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	result := RollingMean(values, 3)

	assert.True(t, math.IsNaN(result[0]))
	assert.True(t, math.IsNaN(result[1]))
	assert.InDelta(t, 2.0, result[2], 1e-12)
	assert.InDelta(t, 3.0, result[3], 1e-12)
}

func TestMACDTrendingUp(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + float64(i)*2
	}

	result := MACD(values)

	// 持续上涨时快线在慢线之上
	assert.Greater(t, result[59], 0.0)
	// 首值两条EMA相同
	assert.InDelta(t, 0.0, result[0], 1e-12)
}
