package engine

import "binance-trade-sentry/pkg/types"

// ProtectiveOrder 待提交的保护性委托
type ProtectiveOrder struct {
	Side         types.TradeSide `json:"side"`
	Quantity     float64         `json:"quantity"`
	TriggerPrice float64         `json:"trigger_price"`
	Label        string          `json:"label"` // stop_loss / take_profit
}

// ProtectivePlanner 保护单规划器：按成交价推算止损止盈触发价
type ProtectivePlanner struct {
	stopLossPct   float64
	takeProfitPct float64
}

// NewProtectivePlanner 创建保护单规划器，百分比为0表示对应保护单不启用
func NewProtectivePlanner(stopLossPct, takeProfitPct float64) *ProtectivePlanner {
	return &ProtectivePlanner{
		stopLossPct:   stopLossPct,
		takeProfitPct: takeProfitPct,
	}
}

// Enabled 是否配置了任一保护单
func (p *ProtectivePlanner) Enabled() bool {
	return p.stopLossPct > 0 || p.takeProfitPct > 0
}

// Plan 根据成交回报规划保护单
// 买入成交挂卖出方向保护单；卖出成交挂买入方向的镜像保护单
func (p *ProtectivePlanner) Plan(fill types.TradeFill) []ProtectiveOrder {
	var orders []ProtectiveOrder

	protectSide := types.SideSell
	stopFactor := 1 - p.stopLossPct/100
	takeFactor := 1 + p.takeProfitPct/100
	if fill.Side == types.SideSell {
		protectSide = types.SideBuy
		stopFactor = 1 + p.stopLossPct/100
		takeFactor = 1 - p.takeProfitPct/100
	}

	if p.stopLossPct > 0 {
		orders = append(orders, ProtectiveOrder{
			Side:         protectSide,
			Quantity:     fill.Quantity,
			TriggerPrice: fill.Price * stopFactor,
			Label:        "stop_loss",
		})
	}
	if p.takeProfitPct > 0 {
		orders = append(orders, ProtectiveOrder{
			Side:         protectSide,
			Quantity:     fill.Quantity,
			TriggerPrice: fill.Price * takeFactor,
			Label:        "take_profit",
		})
	}

	return orders
}
