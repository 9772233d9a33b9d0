package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"binance-trade-sentry/pkg/types"
)

func makeVolumeBars(closes, volumes []float64) types.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(types.PriceSeries, len(closes))
	for i := range closes {
		bars[i] = types.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Close:     closes[i],
			Volume:    volumes[i],
		}
	}
	return bars
}

func TestOBV(t *testing.T) {
	bars := makeVolumeBars(
		[]float64{10, 11, 11, 9},
		[]float64{100, 200, 300, 400},
	)

	result := OBV(bars)

	assert.Equal(t, 0.0, result[0], "首根K线OBV为0")
	assert.Equal(t, 200.0, result[1], "上涨加量")
	assert.Equal(t, 200.0, result[2], "持平不变")
	assert.Equal(t, -200.0, result[3], "下跌减量")
}

func TestRollingQuantileMedian(t *testing.T) {
	values := []float64{3, 1, 2, 5, 4}
	result := RollingQuantile(values, 3, 0.5)

	assert.True(t, math.IsNaN(result[1]))
	assert.Equal(t, 2.0, result[2], "窗口{3,1,2}的中位数")
	assert.Equal(t, 2.0, result[3], "窗口{1,2,5}的中位数")
	assert.Equal(t, 4.0, result[4], "窗口{2,5,4}的中位数")
}

func TestRollingQuantileInterpolation(t *testing.T) {
	values := []float64{10, 20}
	result := RollingQuantile(values, 2, 0.6)

	// 线性插值: 10 + 0.6*(20-10)
	assert.InDelta(t, 16.0, result[1], 1e-12)
}

func TestVolumeRatio(t *testing.T) {
	volumes := []float64{100, 100, 100, 150}
	result := VolumeRatio(volumes, 3)

	assert.True(t, math.IsNaN(result[0]))
	assert.True(t, math.IsNaN(result[1]))
	assert.InDelta(t, 1.0, result[2], 1e-12)
	// q60{100,100,150} 线性插值 = 110
	assert.InDelta(t, 150.0/110.0, result[3], 1e-12)
}
