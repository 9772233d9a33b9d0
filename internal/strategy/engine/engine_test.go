package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

// failingExecutor 委托必然失败的执行器
type failingExecutor struct {
	balance float64
}

func (e *failingExecutor) Execute(side types.TradeSide, quantity, price float64) (string, error) {
	return "", errors.New("exchange unavailable")
}

func (e *failingExecutor) Balance() (float64, error) {
	return e.balance, nil
}

func newSimState(startBalance float64) (*types.SymbolState, Executor) {
	ledger := types.NewSimLedger(startBalance)
	state := &types.SymbolState{
		UserID:     "u1",
		Symbol:     "BTCUSDT",
		Strategy:   "momentum",
		LastSignal: types.SignalHold,
		Mode:       types.ModeSimulated,
		Ledger:     ledger,
	}
	return state, NewSimulatedExecutor(ledger)
}

func TestSameSignalIsIgnored(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradeQty = 1
	state.LastSignal = types.SignalBuy

	decision, _, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
	require.NoError(t, err)
	assert.Nil(t, decision, "重复信号不触发交易")
	assert.Equal(t, 1000.0, state.Ledger.CashBalance)
}

func TestBuyWithTradePercent(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradePercent = 10

	decision, msg, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
	require.NoError(t, err)
	require.NotNil(t, decision)

	assert.Equal(t, types.SideBuy, decision.Side)
	assert.InDelta(t, 1.0, decision.Quantity, 1e-9, "1000的10% / 100")
	assert.Equal(t, "Balance: 900.00 | P&L: +0.00", msg)
	assert.Equal(t, types.SignalBuy, state.LastSignal)
}

func TestSizingPriority(t *testing.T) {
	// 百分比优先于固定金额与固定数量
	assert.InDelta(t, 2.0, rawQuantity(types.SizingRule{TradePercent: 20, TradeAmount: 500, TradeQty: 9}, 1000, 100), 1e-9)
	assert.InDelta(t, 5.0, rawQuantity(types.SizingRule{TradeAmount: 500, TradeQty: 9}, 1000, 100), 1e-9)
	assert.InDelta(t, 9.0, rawQuantity(types.SizingRule{TradeQty: 9}, 1000, 100), 1e-9)
	assert.Equal(t, 0.0, rawQuantity(types.SizingRule{}, 1000, 100))
}

// 仓位上限场景：10%下单规则 + 25%权益上限，三次买入数量递减
func TestMaxPercentCapScenario(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradePercent = 10
	state.MaxPercent = 25

	buy := func() *types.TradeDecision {
		decision, _, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
		require.NoError(t, err)
		// 信号交替触发：买入之间穿插hold
		d2, _, err := DecideAndExecute(state, types.SignalHold, 100, exec)
		require.NoError(t, err)
		require.Nil(t, d2)
		return decision
	}

	d1 := buy()
	require.NotNil(t, d1)
	assert.InDelta(t, 1.0, d1.Quantity, 1e-9)

	d2 := buy()
	require.NotNil(t, d2)
	assert.InDelta(t, 0.9, d2.Quantity, 1e-9)

	d3 := buy()
	require.NotNil(t, d3)
	assert.InDelta(t, 0.6, d3.Quantity, 1e-9, "受25%上限钳制")

	assert.InDelta(t, 750.0, state.Ledger.CashBalance, 1e-9)
	assert.InDelta(t, 2.5, state.Position, 1e-9)

	// 仓位已满：第四次买入被跳过，但信号仍然前移
	d4 := buy()
	assert.Nil(t, d4)
	assert.InDelta(t, 2.5, state.Position, 1e-9)
}

func TestBuySkippedWhenHoldingWithoutCap(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradeQty = 1
	state.Position = 2

	// 未配置上限时执行单仓规则
	decision, _, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
	require.NoError(t, err)
	assert.Nil(t, decision)
	assert.Equal(t, types.SignalBuy, state.LastSignal, "跳过的信号不会重试")
	assert.Equal(t, 2.0, state.Position)
}

func TestBuySkippedWithoutSizingRule(t *testing.T) {
	state, exec := newSimState(1000)

	decision, _, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
	require.NoError(t, err)
	assert.Nil(t, decision)
	assert.Equal(t, types.SignalBuy, state.LastSignal)
}

func TestSellLiquidatesFullPosition(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradePercent = 10
	state.Position = 3
	state.Ledger.Position = 3

	decision, _, err := DecideAndExecute(state, types.SignalSell, 100, exec)
	require.NoError(t, err)
	require.NotNil(t, decision)

	assert.Equal(t, types.SideSell, decision.Side)
	assert.Equal(t, 3.0, decision.Quantity, "卖出信号全部清仓")
	assert.Equal(t, 0.0, state.Position)
}

func TestSellWithoutPositionIsSkipped(t *testing.T) {
	state, exec := newSimState(1000)

	decision, _, err := DecideAndExecute(state, types.SignalSell, 100, exec)
	require.NoError(t, err)
	assert.Nil(t, decision)
	assert.Equal(t, types.SignalSell, state.LastSignal)
}

func TestExecutionFailureKeepsPosition(t *testing.T) {
	state := &types.SymbolState{
		UserID:     "u1",
		Symbol:     "BTCUSDT",
		LastSignal: types.SignalHold,
		Mode:       types.ModeLive,
		Sizing:     types.SizingRule{TradeQty: 1},
	}
	exec := &failingExecutor{balance: 1000}

	decision, _, err := DecideAndExecute(state, types.SignalBuy, 100, exec)
	assert.Error(t, err)
	assert.Nil(t, decision)

	// 委托失败：持仓不变，但信号已前移，不会重试
	assert.Equal(t, 0.0, state.Position)
	assert.Equal(t, types.SignalBuy, state.LastSignal)

	decision, _, err = DecideAndExecute(state, types.SignalBuy, 100, exec)
	require.NoError(t, err)
	assert.Nil(t, decision)
}

func TestInvalidPriceRejected(t *testing.T) {
	state, exec := newSimState(1000)
	state.Sizing.TradeQty = 1

	_, _, err := DecideAndExecute(state, types.SignalBuy, 0, exec)
	assert.Error(t, err)
}
