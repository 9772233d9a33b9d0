package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"binance-trade-sentry/pkg/types"
)

// LiveExecutor 实盘执行器：提交市价委托并补挂保护单
// 保护单提交失败只记录日志，绝不回滚已成交的主委托
type LiveExecutor struct {
	ctx     context.Context
	venue   TradingVenue
	symbol  string
	planner *ProtectivePlanner
}

// NewLiveExecutor 创建实盘执行器
func NewLiveExecutor(ctx context.Context, venue TradingVenue, symbol string, planner *ProtectivePlanner) *LiveExecutor {
	return &LiveExecutor{
		ctx:     ctx,
		venue:   venue,
		symbol:  symbol,
		planner: planner,
	}
}

// Execute 提交实盘市价委托，成交后按配置补挂止损止盈
func (e *LiveExecutor) Execute(side types.TradeSide, quantity, price float64) (string, error) {
	receipt, err := e.venue.Order(e.ctx, e.symbol, side, quantity)
	if err != nil {
		return "", fmt.Errorf("实盘委托失败: %w", err)
	}

	zap.L().Info("✅ 实盘委托成功",
		zap.String("symbol", e.symbol),
		zap.String("side", string(side)),
		zap.Float64("quantity", quantity),
		zap.Int64("order_id", receipt.OrderID))

	if e.planner != nil && e.planner.Enabled() {
		e.placeProtectiveOrders(types.TradeFill{
			Symbol:   e.symbol,
			Side:     side,
			Quantity: quantity,
			Price:    price,
		})
	}

	return fmt.Sprintf("Order %d %s: %s %.6f %s", receipt.OrderID, receipt.Status, side, quantity, e.symbol), nil
}

// placeProtectiveOrders 独立提交各保护单，互不影响
func (e *LiveExecutor) placeProtectiveOrders(fill types.TradeFill) {
	for _, order := range e.planner.Plan(fill) {
		receipt, err := e.venue.PlaceProtectiveOrder(e.ctx, e.symbol, order.Side, order.Quantity, order.TriggerPrice)
		if err != nil {
			zap.L().Error("❌ 保护单提交失败",
				zap.String("symbol", e.symbol),
				zap.String("label", order.Label),
				zap.Float64("trigger_price", order.TriggerPrice),
				zap.Error(err))
			continue
		}

		zap.L().Info("🛡️ 保护单已挂出",
			zap.String("symbol", e.symbol),
			zap.String("label", order.Label),
			zap.Float64("trigger_price", order.TriggerPrice),
			zap.Int64("order_id", receipt.OrderID))
	}
}

// Balance 查询交易所可用USDT余额
func (e *LiveExecutor) Balance() (float64, error) {
	return e.venue.Balance(e.ctx)
}
