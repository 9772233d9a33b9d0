package engine

import (
	"fmt"

	"binance-trade-sentry/pkg/types"
)

// RecordSimulatedTrade 将一笔成交记入模拟账本并返回账户状态信息
// 盈亏按成交价对持仓市值估值：现金 + 持仓市值 - 初始资金
func RecordSimulatedTrade(ledger *types.SimLedger, side types.TradeSide, price, qty float64) string {
	if side == types.SideBuy {
		ledger.CashBalance -= price * qty
		ledger.Position += qty
	} else {
		// 卖出数量钳制到当前持仓，超出部分不入账
		if qty > ledger.Position {
			qty = ledger.Position
		}
		ledger.CashBalance += price * qty
		ledger.Position -= qty
	}

	ledger.Trades = append(ledger.Trades, types.TradeAction{
		Side:  side,
		Price: price,
		Qty:   qty,
	})

	pnl := ledger.CashBalance + ledger.Position*price - ledger.StartBalance
	return fmt.Sprintf("Balance: %.2f | P&L: %+.2f", ledger.CashBalance, pnl)
}

// SimulatedExecutor 模拟账本执行器
type SimulatedExecutor struct {
	ledger *types.SimLedger
}

// NewSimulatedExecutor 创建模拟执行器
func NewSimulatedExecutor(ledger *types.SimLedger) *SimulatedExecutor {
	return &SimulatedExecutor{
		ledger: ledger,
	}
}

// Execute 在模拟账本中记账，永不失败
func (e *SimulatedExecutor) Execute(side types.TradeSide, quantity, price float64) (string, error) {
	return RecordSimulatedTrade(e.ledger, side, price, quantity), nil
}

// Balance 返回模拟账本现金余额
func (e *SimulatedExecutor) Balance() (float64, error) {
	return e.ledger.CashBalance, nil
}
