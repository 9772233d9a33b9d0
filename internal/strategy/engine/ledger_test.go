package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

func TestRecordSimulatedTradeMessages(t *testing.T) {
	ledger := types.NewSimLedger(1000)

	// 买入1个@100：现金减少，按成交价估值盈亏为0
	msg := RecordSimulatedTrade(ledger, types.SideBuy, 100, 1)
	assert.Equal(t, "Balance: 900.00 | P&L: +0.00", msg)
	assert.Equal(t, 900.0, ledger.CashBalance)
	assert.Equal(t, 1.0, ledger.Position)

	// 以120卖出1个：实现20盈利
	msg = RecordSimulatedTrade(ledger, types.SideSell, 120, 1)
	assert.Equal(t, "Balance: 1020.00 | P&L: +20.00", msg)
	assert.Equal(t, 1020.0, ledger.CashBalance)
	assert.Equal(t, 0.0, ledger.Position)

	require.Len(t, ledger.Trades, 2)
}

func TestRecordSimulatedTradeNegativePnL(t *testing.T) {
	ledger := types.NewSimLedger(1000)

	RecordSimulatedTrade(ledger, types.SideBuy, 100, 2)
	msg := RecordSimulatedTrade(ledger, types.SideSell, 90, 2)

	assert.Equal(t, "Balance: 980.00 | P&L: -20.00", msg)
}

func TestSellClampNeverNegative(t *testing.T) {
	ledger := types.NewSimLedger(1000)
	ledger.Position = 1

	msg := RecordSimulatedTrade(ledger, types.SideSell, 100, 5)
	assert.Equal(t, 0.0, ledger.Position, "超卖时持仓钳制为0")
	assert.Equal(t, 1100.0, ledger.CashBalance, "只按实际持仓入账，超出部分不产生现金")
	assert.Equal(t, "Balance: 1100.00 | P&L: +100.00", msg)
}

func TestSimulatedExecutor(t *testing.T) {
	ledger := types.NewSimLedger(500)
	exec := NewSimulatedExecutor(ledger)

	balance, err := exec.Balance()
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)

	msg, err := exec.Execute(types.SideBuy, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "Balance: 400.00 | P&L: +0.00", msg)
}
