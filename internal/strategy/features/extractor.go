package features

import (
	"fmt"
	"math"
	"time"

	"binance-trade-sentry/internal/strategy/indicators"
	"binance-trade-sentry/pkg/types"
)

// 特征计算窗口常量
const (
	emaShortSpan    = 50
	emaLongSpan     = 200
	rocShortPeriod  = 63
	rocLongPeriod   = 126
	atrLength       = 14
	volumeWindow    = 126
	relStrengthLag  = 252
	weeklyRSIPeriod = 14
)

// Extractor 技术特征提取器
// 将日线序列与基准序列转换为信号评估所需的特征行
type Extractor struct {
	stressThreshold float64
	atrCalc         *indicators.ATRCalculator
}

// NewExtractor 创建特征提取器
func NewExtractor(stressThreshold float64) *Extractor {
	return &Extractor{
		stressThreshold: stressThreshold,
		atrCalc:         indicators.NewATRCalculator(atrLength),
	}
}

// Compute 计算资产序列对应的全部特征行
// 基准序列按时间戳前向填充对齐到资产序列，历史不足的特征为NaN
func (e *Extractor) Compute(asset, benchmark types.PriceSeries) ([]types.FeatureRow, error) {
	if len(asset) == 0 {
		return nil, fmt.Errorf("资产序列为空")
	}

	closes := asset.Closes()
	volumes := asset.Volumes()

	ema50 := indicators.EMA(closes, emaShortSpan)
	ema200 := indicators.EMA(closes, emaLongSpan)
	ema50Slope := indicators.Diff(ema50)

	roc63 := indicators.ROC(closes, rocShortPeriod)
	roc126 := indicators.ROC(closes, rocLongPeriod)

	atr14 := e.atrCalc.Series(asset)

	obv := indicators.OBV(asset)
	obvSlope := indicators.Diff(obv)
	volumePct := indicators.VolumeRatio(volumes, volumeWindow)

	weeklyMACD, weeklyRSI := weeklyOscillators(asset)

	benchCloses := alignForwardFill(asset, benchmark)
	benchEMA200 := indicators.EMA(benchCloses, emaLongSpan)
	relStrength := relativeStrength(closes, benchCloses)

	rows := make([]types.FeatureRow, len(asset))
	for i, bar := range asset {
		atrRatio := math.NaN()
		if bar.Close != 0 {
			atrRatio = atr14[i] / bar.Close
		}

		// NaN参与的比较恒为false，市场状态默认视为风险关闭
		regime := benchCloses[i] > benchEMA200[i] && atrRatio < e.stressThreshold

		rows[i] = types.FeatureRow{
			Timestamp:   bar.Timestamp,
			Close:       bar.Close,
			EMA50:       ema50[i],
			EMA200:      ema200[i],
			EMA50Slope:  ema50Slope[i],
			WeeklyMACD:  weeklyMACD[i],
			WeeklyRSI:   weeklyRSI[i],
			ROC63:       roc63[i],
			ROC126:      roc126[i],
			ATR14:       atr14[i],
			ATRRatio:    atrRatio,
			OBV:         obv[i],
			OBVSlope:    obvSlope[i],
			VolumePct:   volumePct[i],
			RelStrength: relStrength[i],
			Regime:      regime,
		}
	}

	return rows, nil
}

// weeklyOscillators 在周线尺度上计算MACD与RSI，再前向填充回日线
// 每个ISO周取最后一根日线收盘价作为周线值，生效时点为该周最后一根日线
func weeklyOscillators(asset types.PriceSeries) (macd, rsi []float64) {
	type weeklyPoint struct {
		timestamp time.Time
		close     float64
	}

	var weekly []weeklyPoint
	for _, bar := range asset {
		year, week := bar.Timestamp.ISOWeek()
		key := weeklyPoint{timestamp: bar.Timestamp, close: bar.Close}

		if len(weekly) > 0 {
			lastYear, lastWeek := weekly[len(weekly)-1].timestamp.ISOWeek()
			if lastYear == year && lastWeek == week {
				weekly[len(weekly)-1] = key
				continue
			}
		}
		weekly = append(weekly, key)
	}

	weeklyCloses := make([]float64, len(weekly))
	for i, wp := range weekly {
		weeklyCloses[i] = wp.close
	}

	weeklyMACD := indicators.MACD(weeklyCloses)
	weeklyRSI := indicators.RSI(weeklyCloses, weeklyRSIPeriod)

	macd = make([]float64, len(asset))
	rsi = make([]float64, len(asset))

	// 双指针前向填充：日线取时间戳不晚于自身的最近一个周线值
	w := -1
	for i, bar := range asset {
		for w+1 < len(weekly) && !weekly[w+1].timestamp.After(bar.Timestamp) {
			w++
		}
		if w < 0 {
			macd[i] = math.NaN()
			rsi[i] = math.NaN()
			continue
		}
		macd[i] = weeklyMACD[w]
		rsi[i] = weeklyRSI[w]
	}

	return macd, rsi
}

// alignForwardFill 将基准序列前向填充对齐到资产序列的时间轴
// 资产K线取基准中时间戳不晚于自身的最近收盘价，更早的位置为NaN
func alignForwardFill(asset, benchmark types.PriceSeries) []float64 {
	aligned := make([]float64, len(asset))

	b := -1
	for i, bar := range asset {
		for b+1 < len(benchmark) && !benchmark[b+1].Timestamp.After(bar.Timestamp) {
			b++
		}
		if b < 0 {
			aligned[i] = math.NaN()
			continue
		}
		aligned[i] = benchmark[b].Close
	}

	return aligned
}

// relativeStrength 计算252日相对基准强度
// (资产252日收益比 / 基准252日收益比) - 1
func relativeStrength(closes, benchCloses []float64) []float64 {
	result := make([]float64, len(closes))
	for i := range closes {
		if i < relStrengthLag {
			result[i] = math.NaN()
			continue
		}

		assetBase := closes[i-relStrengthLag]
		benchNow := benchCloses[i]
		benchBase := benchCloses[i-relStrengthLag]

		if assetBase == 0 || benchBase == 0 || benchNow == 0 ||
			math.IsNaN(benchNow) || math.IsNaN(benchBase) {
			result[i] = math.NaN()
			continue
		}

		assetRatio := closes[i] / assetBase
		benchRatio := benchNow / benchBase
		result[i] = assetRatio/benchRatio - 1
	}
	return result
}
