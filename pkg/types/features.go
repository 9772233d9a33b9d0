package types

import "time"

// FeatureRow 单根K线对应的技术特征
// 历史数据不足时对应的特征值为NaN，任何与NaN的比较结果均为false
type FeatureRow struct {
	Timestamp   time.Time `json:"timestamp"`
	Close       float64   `json:"close"`
	EMA50       float64   `json:"ema50"`
	EMA200      float64   `json:"ema200"`
	EMA50Slope  float64   `json:"ema50_slope"`
	WeeklyMACD  float64   `json:"weekly_macd"`  // 周线MACD，前向填充到日线
	WeeklyRSI   float64   `json:"weekly_rsi"`   // 周线RSI，前向填充到日线
	ROC63       float64   `json:"roc63"`        // 63日涨跌幅
	ROC126      float64   `json:"roc126"`       // 126日涨跌幅
	ATR14       float64   `json:"atr14"`        // 14日平均真实波幅
	ATRRatio    float64   `json:"atr_ratio"`    // ATR14 / 收盘价
	OBV         float64   `json:"obv"`          // 能量潮
	OBVSlope    float64   `json:"obv_slope"`    // OBV一阶差分
	VolumePct   float64   `json:"volume_pct"`   // 成交量相对126日60分位的倍数
	RelStrength float64   `json:"rel_strength"` // 252日相对基准强度
	Regime      bool      `json:"regime"`       // 市场状态：基准在EMA200之上且波动未超压力阈值
}

// ScoreWeights 动量策略评分权重，四项之和应为1.0
type ScoreWeights struct {
	Trend        float64 `mapstructure:"trend"`
	Volume       float64 `mapstructure:"volume"`
	RelStrength  float64 `mapstructure:"rel_strength"`
	Fundamentals float64 `mapstructure:"fundamentals"`
}

// DefaultScoreWeights 默认评分权重：趋势0.5 成交量0.2 相对强度0.2 基本面0.1
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Trend:        0.5,
		Volume:       0.2,
		RelStrength:  0.2,
		Fundamentals: 0.1,
	}
}
