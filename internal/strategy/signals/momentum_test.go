package signals

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

func fullStrengthRow() types.FeatureRow {
	return types.FeatureRow{
		Close:       110,
		EMA50:       100,
		EMA200:      90,
		EMA50Slope:  1,
		WeeklyMACD:  2,
		VolumePct:   1.2,
		OBVSlope:    5,
		RelStrength: 0.3,
		Regime:      true,
	}
}

func TestScoreFullStrength(t *testing.T) {
	score := Score(fullStrengthRow(), types.DefaultScoreWeights())

	// 趋势3/3 + 量能 + 相对强度 + 基本面中性0.5
	assert.InDelta(t, 95.0, score, 1e-9)
}

func TestScoreAllNaN(t *testing.T) {
	row := types.FeatureRow{
		Close:       math.NaN(),
		EMA50:       math.NaN(),
		EMA200:      math.NaN(),
		EMA50Slope:  math.NaN(),
		WeeklyMACD:  math.NaN(),
		VolumePct:   math.NaN(),
		OBVSlope:    math.NaN(),
		RelStrength: math.NaN(),
	}

	// NaN比较恒为false，只剩基本面中性项
	score := Score(row, types.DefaultScoreWeights())
	assert.InDelta(t, 5.0, score, 1e-9)
}

func TestScoreBoundsAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := types.DefaultScoreWeights()

	for i := 0; i < 1000; i++ {
		row := types.FeatureRow{
			Close:       rng.Float64() * 200,
			EMA50:       rng.Float64() * 200,
			EMA200:      rng.Float64() * 200,
			EMA50Slope:  rng.Float64()*2 - 1,
			WeeklyMACD:  rng.Float64()*2 - 1,
			VolumePct:   rng.Float64() * 3,
			OBVSlope:    rng.Float64()*2 - 1,
			RelStrength: rng.Float64()*2 - 1,
			Regime:      rng.Intn(2) == 0,
		}

		score := Score(row, w)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		assert.Equal(t, score, Score(row, w), "相同输入必须产生相同评分")
	}
}

func TestClassifyBuyRequiresRegime(t *testing.T) {
	row := fullStrengthRow()
	score := Score(row, types.DefaultScoreWeights())
	require.GreaterOrEqual(t, score, 60.0)

	assert.Equal(t, types.SignalBuy, Classify(row, score))

	// 市场状态关闭时即便评分达标也不买入
	row.Regime = false
	assert.Equal(t, types.SignalHold, Classify(row, score))
}

func TestClassifySellOnLowScore(t *testing.T) {
	row := fullStrengthRow()
	assert.Equal(t, types.SignalSell, Classify(row, 40))
}

func TestClassifySellBelowEMA50(t *testing.T) {
	row := fullStrengthRow()
	row.Close = 95 // 跌破EMA50
	row.Regime = false

	assert.Equal(t, types.SignalSell, Classify(row, 50))
}

func TestClassifyHoldMidRange(t *testing.T) {
	row := fullStrengthRow()
	row.Regime = false

	assert.Equal(t, types.SignalHold, Classify(row, 50))
}

func TestNewMomentumStrategyValidation(t *testing.T) {
	_, err := NewMomentumStrategy(types.MomentumConfig{StressThreshold: 0})
	assert.Error(t, err)

	_, err = NewMomentumStrategy(types.MomentumConfig{
		StressThreshold: 0.08,
		Weights:         types.ScoreWeights{Trend: 0.9, Volume: 0.9},
	})
	assert.Error(t, err, "权重之和不为1应报错")

	s, err := NewMomentumStrategy(types.MomentumConfig{StressThreshold: 0.08})
	require.NoError(t, err, "零值权重应回退到默认权重")
	assert.Equal(t, "momentum", s.Name())
}

func TestMomentumEvaluateSeriesLength(t *testing.T) {
	s, err := NewMomentumStrategy(types.MomentumConfig{StressThreshold: 0.08})
	require.NoError(t, err)

	asset := makeCloseSeries([]float64{100, 101, 102, 103, 104})
	sigs, err := s.EvaluateSeries(asset, asset)
	require.NoError(t, err)
	assert.Len(t, sigs, len(asset))

	// 历史不足时评分仅剩中性项，全部落入卖出区间
	for _, sig := range sigs {
		assert.Equal(t, types.SignalSell, sig)
	}
}
