package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

func newMemoryManager() *StateManager {
	// 不配置Redis地址，走纯内存模式
	return NewStateManager(types.RedisConfig{})
}

func TestGetOrCreateInitialState(t *testing.T) {
	sm := newMemoryManager()

	state := sm.GetOrCreate("u1", "BTCUSDT", types.SymbolConfig{
		Strategy:        "trend",
		TradePercent:    10,
		MaxPercent:      25,
		Simulated:       true,
		SimStartBalance: 1000,
	})

	assert.Equal(t, "u1", state.UserID)
	assert.Equal(t, "BTCUSDT", state.Symbol)
	assert.Equal(t, "trend", state.Strategy)
	assert.Equal(t, types.SignalHold, state.LastSignal, "初始信号为hold")
	assert.Equal(t, types.ModeSimulated, state.Mode)
	require.NotNil(t, state.Ledger)
	assert.Equal(t, 1000.0, state.Ledger.CashBalance)
}

func TestGetOrCreateDefaults(t *testing.T) {
	sm := newMemoryManager()

	state := sm.GetOrCreate("u1", "ETHUSDT", types.SymbolConfig{})

	assert.Equal(t, "momentum", state.Strategy, "策略默认为momentum")
	assert.Equal(t, types.ModeLive, state.Mode)
	assert.Nil(t, state.Ledger)
}

func TestGetOrCreateReturnsSameInstance(t *testing.T) {
	sm := newMemoryManager()

	first := sm.GetOrCreate("u1", "BTCUSDT", types.SymbolConfig{Simulated: true})
	first.Position = 2.5

	second := sm.GetOrCreate("u1", "BTCUSDT", types.SymbolConfig{Simulated: true})
	assert.Same(t, first, second)
	assert.Equal(t, 2.5, second.Position)
}

func TestStateIsolationPerUserAndSymbol(t *testing.T) {
	sm := newMemoryManager()

	a := sm.GetOrCreate("u1", "BTCUSDT", types.SymbolConfig{})
	b := sm.GetOrCreate("u2", "BTCUSDT", types.SymbolConfig{})
	c := sm.GetOrCreate("u1", "ETHUSDT", types.SymbolConfig{})

	a.Position = 1

	assert.Equal(t, 0.0, b.Position, "不同用户的状态互不影响")
	assert.Equal(t, 0.0, c.Position, "不同交易对的状态互不影响")
}

func TestAllStatesSorted(t *testing.T) {
	sm := newMemoryManager()

	sm.GetOrCreate("u2", "BTCUSDT", types.SymbolConfig{})
	sm.GetOrCreate("u1", "ETHUSDT", types.SymbolConfig{})
	sm.GetOrCreate("u1", "BTCUSDT", types.SymbolConfig{})

	states := sm.AllStates()
	require.Len(t, states, 3)
	assert.Equal(t, "u1", states[0].UserID)
	assert.Equal(t, "BTCUSDT", states[0].Symbol)
	assert.Equal(t, "u1", states[1].UserID)
	assert.Equal(t, "ETHUSDT", states[1].Symbol)
	assert.Equal(t, "u2", states[2].UserID)
}

func TestQuoteCache(t *testing.T) {
	sm := newMemoryManager()

	_, ok := sm.LatestQuote("BTCUSDT", time.Minute)
	assert.False(t, ok)

	sm.StoreQuote("BTCUSDT", 50000, time.Now())
	price, ok := sm.LatestQuote("BTCUSDT", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 50000.0, price)

	// 过期报价不可用
	sm.StoreQuote("ETHUSDT", 3000, time.Now().Add(-5*time.Minute))
	_, ok = sm.LatestQuote("ETHUSDT", time.Minute)
	assert.False(t, ok)
}
