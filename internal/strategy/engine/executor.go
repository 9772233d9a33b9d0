package engine

import (
	"context"

	"binance-trade-sentry/pkg/types"
)

// Executor 交易执行接口，模拟账本与实盘委托实现可互换
type Executor interface {
	// Execute 执行一笔交易，返回可读的状态信息
	Execute(side types.TradeSide, quantity, price float64) (string, error)
	// Balance 查询可用现金余额
	Balance() (float64, error)
}

// TradingVenue 实盘交易所接口
type TradingVenue interface {
	// Order 提交市价委托
	Order(ctx context.Context, symbol string, side types.TradeSide, quantity float64) (*types.OrderReceipt, error)
	// PlaceProtectiveOrder 挂触发型保护单（止损/止盈）
	PlaceProtectiveOrder(ctx context.Context, symbol string, side types.TradeSide, quantity, triggerPrice float64) (*types.OrderReceipt, error)
	// Balance 查询可用USDT余额
	Balance(ctx context.Context) (float64, error)
}
