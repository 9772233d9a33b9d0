package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"binance-trade-sentry/pkg/types"
)

const coinbaseAPIBase = "https://api.coinbase.com"

// BinanceSpotSource 币安现货报价源，实现 signals.QuoteSource
type BinanceSpotSource struct {
	httpClient *http.Client
}

// NewBinanceSpotSource 创建币安现货报价源
func NewBinanceSpotSource(netCfg types.NetworkConfig) *BinanceSpotSource {
	timeout := netCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceSpotSource{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name 报价源名称
func (s *BinanceSpotSource) Name() string {
	return "binance"
}

// SpotPrice 查询币安现货最新成交价
func (s *BinanceSpotSource) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	reqURL := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", spotAPIBase, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result.Price, 64)
}

// CoinbaseSpotSource Coinbase现货报价源，实现 signals.QuoteSource
type CoinbaseSpotSource struct {
	httpClient *http.Client
}

// NewCoinbaseSpotSource 创建Coinbase现货报价源
func NewCoinbaseSpotSource(netCfg types.NetworkConfig) *CoinbaseSpotSource {
	timeout := netCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinbaseSpotSource{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name 报价源名称
func (s *CoinbaseSpotSource) Name() string {
	return "coinbase"
}

// SpotPrice 查询Coinbase现货价格
func (s *CoinbaseSpotSource) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	reqURL := fmt.Sprintf("%s/v2/prices/%s/spot", coinbaseAPIBase, toCoinbasePair(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result.Data.Amount, 64)
}

// toCoinbasePair 将币安交易对转换为Coinbase格式
// USDT计价在Coinbase侧按USD报价，如 BTCUSDT -> BTC-USD
func toCoinbasePair(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, quote := range []string{"USDT", "USDC", "USD", "BTC", "ETH"} {
		if strings.HasSuffix(upper, quote) && len(upper) > len(quote) {
			base := strings.TrimSuffix(upper, quote)
			if quote == "USDT" {
				quote = "USD"
			}
			return base + "-" + quote
		}
	}
	return upper
}
