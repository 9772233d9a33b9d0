package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"binance-trade-sentry/pkg/types"
)

// Client 币安行情WebSocket客户端
// 订阅miniTicker频道并输出实时报价流
type Client struct {
	endpoint      string
	proxy         string
	conn          *websocket.Conn
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
	quoteChan     chan types.QuoteTick
	config        types.StreamConfig
	symbols       []string
	subID         int
}

// miniTickerEvent 币安miniTicker推送消息
type miniTickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
}

// subscribeRequest 币安订阅消息
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// NewClient 创建WebSocket客户端
func NewClient(proxy string, config types.StreamConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = "wss://stream.binance.com:9443/ws"
	}

	return &Client{
		endpoint:      endpoint,
		proxy:         proxy,
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		quoteChan:     make(chan types.QuoteTick, 1000), // 缓冲1000个报价
		config:        config,
	}
}

// Connect 建立WebSocket连接
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dialer := websocket.DefaultDialer
	if c.proxy != "" {
		proxyURL, err := url.Parse(c.proxy)
		if err != nil {
			return fmt.Errorf("解析代理URL失败: %v", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	conn, _, err := dialer.Dial(c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("WebSocket连接失败: %v", err)
	}

	c.conn = conn
	c.isConnected = true

	zap.L().Info("✅ WebSocket连接建立成功",
		zap.String("endpoint", c.endpoint),
		zap.String("proxy", c.proxy))

	return nil
}

// Subscribe 订阅交易对的miniTicker报价流
func (c *Client) Subscribe(symbols []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected || c.conn == nil {
		return fmt.Errorf("WebSocket未连接")
	}

	params := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		params = append(params, strings.ToLower(symbol)+"@miniTicker")
	}

	c.symbols = symbols
	c.subID++

	req := subscribeRequest{
		Method: "SUBSCRIBE",
		Params: params,
		ID:     c.subID,
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("发送订阅消息失败: %v", err)
	}

	zap.L().Info("📊 已订阅实时报价",
		zap.Strings("symbols", symbols))

	return nil
}

// StartReading 启动读取、重连与心跳协程
func (c *Client) StartReading() {
	go c.readLoop()
	go c.reconnectLoop()
	go c.pingLoop()
}

// readLoop 读取数据循环
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("WebSocket读取panic", zap.Any("error", r))
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				time.Sleep(time.Second)
				continue
			}

			_, message, err := conn.ReadMessage()
			if err != nil {
				zap.L().Error("WebSocket读取消息失败", zap.Error(err))
				c.handleDisconnect()
				continue
			}

			if err := c.parseQuote(message); err != nil {
				zap.L().Warn("解析报价数据失败", zap.Error(err))
			}
		}
	}
}

// parseQuote 解析miniTicker推送
func (c *Client) parseQuote(message []byte) error {
	var event miniTickerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return err
	}

	// 订阅确认等非行情消息直接忽略
	if event.EventType != "24hrMiniTicker" {
		return nil
	}

	price, err := strconv.ParseFloat(event.Close, 64)
	if err != nil {
		return fmt.Errorf("解析最新价失败: %v", err)
	}

	tick := types.QuoteTick{
		Symbol:    event.Symbol,
		Price:     price,
		Timestamp: time.UnixMilli(event.EventTime),
	}

	select {
	case c.quoteChan <- tick:
	default:
		zap.L().Warn("报价通道满，丢弃数据", zap.String("symbol", tick.Symbol))
	}

	return nil
}

// reconnectLoop 重连循环
func (c *Client) reconnectLoop() {
	reconnectAttempts := 0

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			reconnectAttempts++
			if reconnectAttempts > c.config.MaxReconnectAttempts {
				zap.L().Error("达到最大重连次数，停止重连",
					zap.Int("max_attempts", c.config.MaxReconnectAttempts))
				return
			}

			zap.L().Info("尝试重连WebSocket",
				zap.Int("attempt", reconnectAttempts),
				zap.Int("max_attempts", c.config.MaxReconnectAttempts))

			if err := c.Connect(); err != nil {
				zap.L().Error("重连失败", zap.Error(err))
				time.Sleep(c.config.ReconnectInterval)
				c.reconnectChan <- struct{}{}
				continue
			}

			// 重连成功后需要重新订阅
			if len(c.symbols) > 0 {
				if err := c.Subscribe(c.symbols); err != nil {
					zap.L().Error("重连后订阅失败", zap.Error(err))
					c.handleDisconnect()
					continue
				}
			}

			reconnectAttempts = 0
			zap.L().Info("WebSocket重连成功")
		}
	}
}

// pingLoop 心跳循环
func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			isConnected := c.isConnected
			c.mu.RUnlock()

			if !isConnected || conn == nil {
				continue
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error("发送心跳失败", zap.Error(err))
				c.handleDisconnect()
			}
		}
	}
}

// handleDisconnect 处理断线
func (c *Client) handleDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.isConnected = false

	// 触发重连
	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

// GetQuoteChannel 获取报价数据通道
func (c *Client) GetQuoteChannel() <-chan types.QuoteTick {
	return c.quoteChan
}

// Close 关闭WebSocket连接
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.isConnected = false
		return err
	}

	return nil
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}
