package signals

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binance-trade-sentry/pkg/types"
)

type stubQuoteSource struct {
	name  string
	price float64
	err   error
}

func (s *stubQuoteSource) Name() string { return s.name }

func (s *stubQuoteSource) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	return s.price, s.err
}

func TestClassifySpread(t *testing.T) {
	// 2%价差超过1%阈值：A更便宜
	assert.Equal(t, types.SignalBuyASellB, ClassifySpread(100, 102, 0.01))
	// B更便宜
	assert.Equal(t, types.SignalBuyBSellA, ClassifySpread(102, 100, 0.01))
	// 价差未超阈值
	assert.Equal(t, types.SignalHold, ClassifySpread(100, 100.5, 0.01))
	// 无价差
	assert.Equal(t, types.SignalHold, ClassifySpread(100, 100, 0.01))
	// 非法价格不触发信号
	assert.Equal(t, types.SignalHold, ClassifySpread(0, 100, 0.01))
}

func TestSpreadRatio(t *testing.T) {
	assert.InDelta(t, 0.02, SpreadRatio(100, 102), 1e-12)
	assert.InDelta(t, 0.02, SpreadRatio(102, 100), 1e-12, "价差比率与方向无关")
}

func TestArbitrageValidation(t *testing.T) {
	a := &stubQuoteSource{name: "binance", price: 100}
	b := &stubQuoteSource{name: "coinbase", price: 100}

	_, err := NewArbitrageStrategy(types.ArbitrageConfig{Threshold: 0}, a, b)
	assert.Error(t, err)

	_, err = NewArbitrageStrategy(types.ArbitrageConfig{Threshold: 0.01}, nil, b)
	assert.Error(t, err)
}

func TestArbitrageEvaluate(t *testing.T) {
	a := &stubQuoteSource{name: "binance", price: 100}
	b := &stubQuoteSource{name: "coinbase", price: 102}

	s, err := NewArbitrageStrategy(types.ArbitrageConfig{Symbol: "BTCUSDT", Threshold: 0.01}, a, b)
	require.NoError(t, err)

	signal, quote, err := s.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.SignalBuyASellB, signal)

	require.NotNil(t, quote)
	assert.Equal(t, "binance", quote.VenueA)
	assert.Equal(t, "coinbase", quote.VenueB)
	assert.InDelta(t, 0.02, quote.Spread, 1e-12)
}

func TestArbitrageQuoteFailureIsHard(t *testing.T) {
	a := &stubQuoteSource{name: "binance", price: 100}
	b := &stubQuoteSource{name: "coinbase", err: errors.New("timeout")}

	s, err := NewArbitrageStrategy(types.ArbitrageConfig{Threshold: 0.01}, a, b)
	require.NoError(t, err)

	// 单边报价失败必须整体失败，绝不基于单边价格发信号
	signal, quote, err := s.Evaluate(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "coinbase")
	assert.Equal(t, types.SignalHold, signal)
	assert.Nil(t, quote)
}
