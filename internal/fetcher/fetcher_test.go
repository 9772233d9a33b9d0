package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKlines(t *testing.T) {
	payload := []byte(`[
		[1704067200000,"42000.1","42500.5","41800.0","42300.9","1234.56",1704153599999,"0",100,"0","0","0"],
		[1704153600000,"42300.9","43000.0","42100.0","42900.0","2345.67",1704239999999,"0",120,"0","0","0"]
	]`)

	series, err := ParseKlines(payload)
	require.NoError(t, err)
	require.Len(t, series, 2)

	first := series[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 42000.1, first.Open)
	assert.Equal(t, 42500.5, first.High)
	assert.Equal(t, 41800.0, first.Low)
	assert.Equal(t, 42300.9, first.Close)
	assert.Equal(t, 1234.56, first.Volume)

	assert.True(t, series[1].Timestamp.After(first.Timestamp), "序列按时间递增")
}

func TestParseKlinesMalformed(t *testing.T) {
	_, err := ParseKlines([]byte(`not json`))
	assert.Error(t, err)

	// 字段不足
	_, err = ParseKlines([]byte(`[[1704067200000,"1","2"]]`))
	assert.Error(t, err)

	// 数值非法
	_, err = ParseKlines([]byte(`[[1704067200000,"abc","2","3","4","5"]]`))
	assert.Error(t, err)
}

func TestToCoinbasePair(t *testing.T) {
	// USDT计价在Coinbase侧按USD报价
	assert.Equal(t, "BTC-USD", toCoinbasePair("BTCUSDT"))
	assert.Equal(t, "ETH-USD", toCoinbasePair("ethusdt"))
	assert.Equal(t, "SOL-USDC", toCoinbasePair("SOLUSDC"))
	assert.Equal(t, "ETH-BTC", toCoinbasePair("ETHBTC"))
}
