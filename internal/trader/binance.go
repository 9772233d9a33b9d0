package trader

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"binance-trade-sentry/pkg/types"
)

const futuresBaseURL = "https://fapi.binance.com"

// BinanceClient 币安USDT永续合约签名客户端
// 实现 engine.TradingVenue 接口
type BinanceClient struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

// NewBinanceClient 创建币安合约客户端
func NewBinanceClient(apiKey, apiSecret string, netCfg types.NetworkConfig) *BinanceClient {
	timeout := netCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{}
	if netCfg.Proxy != "" {
		if proxyURL, err := url.Parse(netCfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			zap.L().Warn("⚠️ 代理地址解析失败，使用直连", zap.String("proxy", netCfg.Proxy))
		}
	}

	return &BinanceClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   futuresBaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Order 提交市价委托
func (c *BinanceClient) Order(ctx context.Context, symbol string, side types.TradeSide, quantity float64) (*types.OrderReceipt, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", formatQuantity(quantity))

	body, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return nil, err
	}
	return parseReceipt(body)
}

// PlaceProtectiveOrder 挂触发型保护单
// 触发价相对当前标记价的方向决定委托类型：
// 向不利方向触发为STOP_MARKET，向有利方向触发为TAKE_PROFIT_MARKET
func (c *BinanceClient) PlaceProtectiveOrder(ctx context.Context, symbol string, side types.TradeSide, quantity, triggerPrice float64) (*types.OrderReceipt, error) {
	current, err := c.markPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("标记价查询失败: %w", err)
	}

	orderType := "TAKE_PROFIT_MARKET"
	if (side == types.SideSell && triggerPrice < current) ||
		(side == types.SideBuy && triggerPrice > current) {
		orderType = "STOP_MARKET"
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", orderType)
	params.Set("quantity", formatQuantity(quantity))
	params.Set("stopPrice", formatQuantity(triggerPrice))
	params.Set("reduceOnly", "true")

	body, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return nil, err
	}
	return parseReceipt(body)
}

// Balance 查询合约账户可用USDT余额
func (c *BinanceClient) Balance(ctx context.Context) (float64, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/balance", url.Values{})
	if err != nil {
		return 0, err
	}

	var balances []struct {
		Asset            string `json:"asset"`
		AvailableBalance string `json:"availableBalance"`
	}
	if err := json.Unmarshal(body, &balances); err != nil {
		return 0, fmt.Errorf("余额响应解析失败: %w", err)
	}

	for _, b := range balances {
		if b.Asset == "USDT" {
			return strconv.ParseFloat(b.AvailableBalance, 64)
		}
	}
	return 0, fmt.Errorf("余额响应中未找到USDT资产")
}

// markPrice 查询最新标记价格
func (c *BinanceClient) markPrice(ctx context.Context, symbol string) (float64, error) {
	reqURL := fmt.Sprintf("%s/fapi/v1/premiumIndex?symbol=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("标记价查询HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		MarkPrice string `json:"markPrice"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(result.MarkPrice, 64)
}

// doSigned 发送HMAC-SHA256签名请求
func (c *BinanceClient) doSigned(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", "5000")

	query := params.Encode()
	query += "&signature=" + c.sign(query)

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(query))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("响应读取失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("交易所返回HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// sign 对查询串做HMAC-SHA256签名
func (c *BinanceClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseReceipt 解析委托回执
func parseReceipt(body []byte) (*types.OrderReceipt, error) {
	var result struct {
		OrderID int64  `json:"orderId"`
		Symbol  string `json:"symbol"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("委托回执解析失败: %w", err)
	}

	return &types.OrderReceipt{
		OrderID: result.OrderID,
		Symbol:  result.Symbol,
		Status:  result.Status,
	}, nil
}

// formatQuantity 数量格式化，去除多余的尾零
func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
