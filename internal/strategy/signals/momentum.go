package signals

import (
	"fmt"
	"math"

	"binance-trade-sentry/internal/strategy/features"
	"binance-trade-sentry/pkg/types"
)

// 动量策略信号分类阈值
const (
	momentumBuyScore  = 60.0
	momentumSellScore = 45.0
)

// MomentumStrategy 动量评分策略
// 趋势、成交量、相对强度、基本面四项加权打分，结合市场状态分类信号
type MomentumStrategy struct {
	extractor *features.Extractor
	weights   types.ScoreWeights
}

// NewMomentumStrategy 创建动量策略并校验配置
func NewMomentumStrategy(cfg types.MomentumConfig) (*MomentumStrategy, error) {
	if cfg.StressThreshold <= 0 {
		return nil, fmt.Errorf("动量策略压力阈值必须大于0: %f", cfg.StressThreshold)
	}

	weights := cfg.Weights
	if weights == (types.ScoreWeights{}) {
		weights = types.DefaultScoreWeights()
	}
	sum := weights.Trend + weights.Volume + weights.RelStrength + weights.Fundamentals
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("动量策略评分权重之和必须为1.0，当前为 %f", sum)
	}

	return &MomentumStrategy{
		extractor: features.NewExtractor(cfg.StressThreshold),
		weights:   weights,
	}, nil
}

// Name 策略名称
func (s *MomentumStrategy) Name() string {
	return "momentum"
}

// EvaluateSeries 逐根K线评估动量信号
func (s *MomentumStrategy) EvaluateSeries(asset, benchmark types.PriceSeries) ([]types.Signal, error) {
	rows, err := s.extractor.Compute(asset, benchmark)
	if err != nil {
		return nil, fmt.Errorf("特征计算失败: %w", err)
	}

	sigs := make([]types.Signal, len(rows))
	for i, row := range rows {
		sigs[i] = Classify(row, Score(row, s.weights))
	}
	return sigs, nil
}

// Score 计算单行特征的动量评分，取值范围[0, 100]
// 纯函数：相同输入必然产生相同输出
func Score(row types.FeatureRow, w types.ScoreWeights) float64 {
	// 趋势项：三项检查各占1/3，NaN比较恒为false
	trendChecks := 0
	if row.Close > row.EMA200 {
		trendChecks++
	}
	if row.EMA50Slope > 0 {
		trendChecks++
	}
	if row.WeeklyMACD > 0 {
		trendChecks++
	}
	trendScore := float64(trendChecks) / 3.0

	// 成交量项：量能处于温和放大区间且OBV向上
	volumeScore := 0.0
	if row.VolumePct >= 1.0 && row.VolumePct <= 1.5 && row.OBVSlope > 0 {
		volumeScore = 1.0
	}

	// 相对强度项
	rsScore := 0.0
	if row.RelStrength > 0 {
		rsScore = 1.0
	}

	// 基本面项：无外部数据源，固定取中性值0.5
	fundamentalsScore := 0.5

	score := w.Trend*trendScore +
		w.Volume*volumeScore +
		w.RelStrength*rsScore +
		w.Fundamentals*fundamentalsScore

	return score * 100
}

// Classify 按评分与市场状态分类信号
// 买入要求市场状态健康且评分达标；跌破EMA50或评分过低即卖出
func Classify(row types.FeatureRow, score float64) types.Signal {
	if row.Regime && score >= momentumBuyScore {
		return types.SignalBuy
	}
	if score < momentumSellScore || row.Close < row.EMA50 {
		return types.SignalSell
	}
	return types.SignalHold
}
