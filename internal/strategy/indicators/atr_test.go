package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

func makeBars(ohlcv [][4]float64) types.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(types.PriceSeries, len(ohlcv))
	for i, row := range ohlcv {
		bars[i] = types.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      row[0],
			High:      row[1],
			Low:       row[2],
			Close:     row[3],
			Volume:    100,
		}
	}
	return bars
}

func TestTrueRangeFirstBar(t *testing.T) {
	bars := makeBars([][4]float64{
		{10, 12, 9, 11},
	})

	calc := NewATRCalculator(14)
	tr := calc.TrueRange(bars)

	require.Len(t, tr, 1)
	assert.Equal(t, 3.0, tr[0], "首根K线真实波幅取 high-low")
}

func TestTrueRangeGap(t *testing.T) {
	// 跳空高开：波幅由前收盘价主导
	bars := makeBars([][4]float64{
		{10, 11, 9, 10},
		{15, 16, 15, 15},
	})

	calc := NewATRCalculator(14)
	tr := calc.TrueRange(bars)

	assert.Equal(t, 6.0, tr[1], "high-prevClose = 16-10")
}

func TestATRSeriesWindow(t *testing.T) {
	rows := make([][4]float64, 5)
	for i := range rows {
		rows[i] = [4]float64{10, 12, 10, 11}
	}
	bars := makeBars(rows)

	calc := NewATRCalculator(3)
	series := calc.Series(bars)

	assert.True(t, math.IsNaN(series[0]))
	assert.True(t, math.IsNaN(series[1]))
	assert.InDelta(t, 2.0, series[2], 1e-12)
	assert.InDelta(t, 2.0, series[4], 1e-12)
}

func TestNormalized(t *testing.T) {
	calc := NewATRCalculator(14)

	assert.InDelta(t, 0.02, calc.Normalized(2.0, 100.0), 1e-12)
	assert.True(t, math.IsNaN(calc.Normalized(2.0, 0)))
}
