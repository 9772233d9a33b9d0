package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/pkg/types"
)

const (
	futuresAPIBase = "https://fapi.binance.com"
	spotAPIBase    = "https://api.binance.com"

	maxRetries    = 3
	retryInterval = 2 * time.Second
)

// PriceFeed 行情数据源接口
type PriceFeed interface {
	// LatestPrice 查询交易对最新价格
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	// DailyOHLCV 拉取最近limit根日线K线，按时间递增排列
	DailyOHLCV(ctx context.Context, symbol string, limit int) (types.PriceSeries, error)
}

// BinanceFetcher 币安行情拉取器
// 最新价取自合约标记价，日线取自现货K线接口
type BinanceFetcher struct {
	httpClient *http.Client
}

// NewBinanceFetcher 创建行情拉取器
func NewBinanceFetcher(netCfg types.NetworkConfig) *BinanceFetcher {
	timeout := netCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{}
	if netCfg.Proxy != "" {
		if proxyURL, err := url.Parse(netCfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
			zap.L().Info("🌐 行情拉取已启用代理", zap.String("proxy", netCfg.Proxy))
		} else {
			zap.L().Warn("⚠️ 代理地址解析失败，使用直连", zap.String("proxy", netCfg.Proxy))
		}
	}

	return &BinanceFetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// LatestPrice 查询最新标记价格，失败自动重试
func (f *BinanceFetcher) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	reqURL := fmt.Sprintf("%s/fapi/v1/premiumIndex?symbol=%s", futuresAPIBase, symbol)

	body, err := f.getWithRetry(ctx, reqURL)
	if err != nil {
		return 0, fmt.Errorf("最新价查询失败 %s: %w", symbol, err)
	}

	var result struct {
		MarkPrice string `json:"markPrice"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("最新价响应解析失败 %s: %w", symbol, err)
	}

	return strconv.ParseFloat(result.MarkPrice, 64)
}

// DailyOHLCV 拉取日线K线
func (f *BinanceFetcher) DailyOHLCV(ctx context.Context, symbol string, limit int) (types.PriceSeries, error) {
	reqURL := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1d&limit=%d", spotAPIBase, symbol, limit)

	body, err := f.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("K线拉取失败 %s: %w", symbol, err)
	}

	series, err := ParseKlines(body)
	if err != nil {
		return nil, fmt.Errorf("K线解析失败 %s: %w", symbol, err)
	}

	zap.L().Debug("📊 K线拉取完成",
		zap.String("symbol", symbol),
		zap.Int("bars", len(series)))
	return series, nil
}

// getWithRetry 带重试的GET请求
func (f *BinanceFetcher) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := f.get(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt < maxRetries {
			zap.L().Warn("⚠️ 行情请求失败，准备重试",
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryInterval):
			}
		}
	}

	return nil, fmt.Errorf("重试%d次后仍失败: %w", maxRetries, lastErr)
}

func (f *BinanceFetcher) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ParseKlines 解析币安K线数组响应
// 每个元素为 [openTime, open, high, low, close, volume, ...]，价格字段为字符串
func ParseKlines(body []byte) (types.PriceSeries, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	series := make(types.PriceSeries, 0, len(raw))
	for i, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("第%d根K线字段不足: %d", i, len(row))
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("第%d根K线时间戳解析失败: %w", i, err)
		}

		values := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			var s string
			if err := json.Unmarshal(row[j], &s); err != nil {
				return nil, fmt.Errorf("第%d根K线第%d列解析失败: %w", i, j, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("第%d根K线第%d列数值无效: %w", i, j, err)
			}
			values[j-1] = v
		}

		series = append(series, types.PriceBar{
			Timestamp: time.UnixMilli(openTime).UTC(),
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}

	return series, nil
}
