package types

import "time"

// Signal 交易信号
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"

	// 套利信号：标识买入低价交易所、卖出高价交易所
	SignalBuyASellB Signal = "buy_a_sell_b"
	SignalBuyBSellA Signal = "buy_b_sell_a"
)

// TradeSide 交易方向
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// TradeDecision 一次信号切换产生的交易决策，产生后立即被消费
type TradeDecision struct {
	Side     TradeSide  `json:"side"`
	Quantity float64    `json:"quantity"`
	Mode     LedgerMode `json:"mode"`
}

// TradeFill 已成交的交易回报
type TradeFill struct {
	Symbol   string    `json:"symbol"`
	Side     TradeSide `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
}

// ArbitrageQuote 套利策略的双边报价快照
type ArbitrageQuote struct {
	VenueA string  `json:"venue_a"`
	VenueB string  `json:"venue_b"`
	PriceA float64 `json:"price_a"`
	PriceB float64 `json:"price_b"`
	Spread float64 `json:"spread"` // |a-b| / min(a,b)
}

// TradeAlert 交易通知数据
type TradeAlert struct {
	UserID    string     `json:"user_id"`
	Symbol    string     `json:"symbol"`
	Side      TradeSide  `json:"side"`
	Quantity  float64    `json:"quantity"`
	Price     float64    `json:"price"`
	Signal    Signal     `json:"signal"`
	Mode      LedgerMode `json:"mode"`
	Message   string     `json:"message"` // 附加状态信息，如模拟账户余额
	AlertTime time.Time  `json:"alert_time"`
}
