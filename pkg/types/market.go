package types

import "time"

// PriceBar 日线行情数据（OHLCV）
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries 按时间严格递增排列的价格序列
type PriceSeries []PriceBar

// Closes 提取收盘价序列
func (ps PriceSeries) Closes() []float64 {
	closes := make([]float64, len(ps))
	for i, bar := range ps {
		closes[i] = bar.Close
	}
	return closes
}

// Volumes 提取成交量序列
func (ps PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(ps))
	for i, bar := range ps {
		volumes[i] = bar.Volume
	}
	return volumes
}

// Last 获取最新一根K线，序列为空时返回nil
func (ps PriceSeries) Last() *PriceBar {
	if len(ps) == 0 {
		return nil
	}
	return &ps[len(ps)-1]
}

// QuoteTick 实时报价数据点
type QuoteTick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
