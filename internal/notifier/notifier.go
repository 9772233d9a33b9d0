package notifier

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"binance-trade-sentry/pkg/types"
)

// buildTradingURL 根据交易对生成币安交易页链接
func buildTradingURL(symbol string) string {
	return fmt.Sprintf("https://www.binance.com/zh-CN/futures/%s", strings.ToUpper(symbol))
}

// sideText 交易方向的中文描述与图标
func sideText(side types.TradeSide) (string, string) {
	if side == types.SideBuy {
		return "买入", "📈"
	}
	return "卖出", "📉"
}

// modeText 执行模式的中文描述
func modeText(mode types.LedgerMode) string {
	if mode == types.ModeSimulated {
		return "模拟盘"
	}
	return "实盘"
}

// Interface 通知接口
type Interface interface {
	SendTradeAlert(alert *types.TradeAlert) error
	SendBatchTradeAlerts(alerts []*types.TradeAlert) error
}

// ConsoleNotifier 控制台通知器
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (cn *ConsoleNotifier) SendTradeAlert(alert *types.TradeAlert) error {
	cn.printAlert(alert)
	return nil
}

func (cn *ConsoleNotifier) SendBatchTradeAlerts(alerts []*types.TradeAlert) error {
	for _, alert := range alerts {
		cn.printAlert(alert)
	}
	return nil
}

func (cn *ConsoleNotifier) printAlert(alert *types.TradeAlert) {
	border := "╔" + strings.Repeat("═", 60) + "╗"
	bottomBorder := "╚" + strings.Repeat("═", 60) + "╝"

	action, arrow := sideText(alert.Side)

	fmt.Println()
	fmt.Println(border)
	fmt.Printf("║ %s 🔔 交易信号触发！%s ║\n", arrow, strings.Repeat(" ", 36))
	fmt.Println("║" + strings.Repeat(" ", 60) + "║")
	fmt.Printf("║ 用户: %-49s ║\n", alert.UserID)
	fmt.Printf("║ 交易对: %-47s ║\n", alert.Symbol)
	fmt.Printf("║ 方向: %-49s ║\n", action)
	fmt.Printf("║ 数量: %-49.6f ║\n", alert.Quantity)
	fmt.Printf("║ 价格: $%-48.6f ║\n", alert.Price)
	fmt.Printf("║ 模式: %-49s ║\n", modeText(alert.Mode))
	if alert.Message != "" {
		fmt.Printf("║ 状态: %-49s ║\n", alert.Message)
	}
	fmt.Printf("║ 时间: %-49s ║\n", alert.AlertTime.Format("2006-01-02 15:04:05"))
	fmt.Println(bottomBorder)
	fmt.Println()
}

// PushPlusNotifier PushPlus通知器
type PushPlusNotifier struct {
	userToken  string
	to         string // 好友令牌，多人用逗号分隔
	enabled    bool
	httpClient *http.Client
}

type PushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
	To       string `json:"to,omitempty"`
}

type PushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data string `json:"data"`
}

func NewPushPlusNotifier(userToken, to string) Interface {
	// 如果没有配置user token，返回控制台通知器
	if userToken == "" {
		fmt.Println("🔧 未配置PushPlus User Token，使用控制台输出模式")
		return NewConsoleNotifier()
	}

	if to != "" {
		fmt.Printf("✅ 已配置PushPlus通知服务（包含好友推送: %s）\n", to)
	} else {
		fmt.Println("✅ 已配置PushPlus通知服务")
	}

	return &PushPlusNotifier{
		userToken: userToken,
		to:        to,
		enabled:   true,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (ppn *PushPlusNotifier) SendTradeAlert(alert *types.TradeAlert) error {
	if !ppn.enabled {
		return NewConsoleNotifier().SendTradeAlert(alert)
	}

	action, _ := sideText(alert.Side)
	title := fmt.Sprintf("🔔 交易提醒 - %s %s", alert.Symbol, action)
	content := ppn.buildHTMLContent(alert)

	if err := ppn.sendPushPlusMessage(title, content); err != nil {
		fmt.Printf("❌ PushPlus发送失败: %v，降级为控制台输出\n", err)
		return NewConsoleNotifier().SendTradeAlert(alert)
	}

	fmt.Printf("✅ PushPlus通知已发送: %s %s %.6f\n", alert.Symbol, alert.Side, alert.Quantity)
	return nil
}

func (ppn *PushPlusNotifier) SendBatchTradeAlerts(alerts []*types.TradeAlert) error {
	for _, alert := range alerts {
		if err := ppn.SendTradeAlert(alert); err != nil {
			return err
		}
	}
	return nil
}

func (ppn *PushPlusNotifier) buildHTMLContent(alert *types.TradeAlert) string {
	action, arrow := sideText(alert.Side)
	color := "#00C851"
	if alert.Side == types.SideSell {
		color = "#FF4444"
	}

	tradingURL := buildTradingURL(alert.Symbol)
	content := fmt.Sprintf(`
<div style="border: 2px solid %s; border-radius: 10px; padding: 20px; margin: 10px; background-color: #f9f9f9;">
    <h2 style="color: %s; text-align: center; margin-top: 0;">%s 交易信号触发</h2>

    <div style="background-color: white; padding: 15px; border-radius: 8px; margin: 10px 0;">
        <p><strong>交易对:</strong> <a href="%s" style="font-size: 18px; color: #1890ff; text-decoration: none;" target="_blank">%s 🔗</a></p>
        <p><strong>方向:</strong> <span style="font-size: 18px; font-weight: bold; color: %s;">%s</span></p>
        <p><strong>数量:</strong> <span style="font-size: 16px; color: #333;">%.6f</span></p>
        <p><strong>价格:</strong> <span style="font-size: 16px; color: #333;">$%.6f</span></p>
        <p><strong>信号:</strong> <span style="color: #666;">%s</span></p>
        <p><strong>模式:</strong> <span style="color: #666;">%s</span></p>
        <p><strong>时间:</strong> <span style="color: #666;">%s</span></p>
    </div>

    <div style="background-color: %s; color: white; padding: 10px; border-radius: 8px; text-align: center; margin-top: 15px;">
        <strong>%s</strong>
    </div>
</div>
`,
		color, color, arrow,
		tradingURL, alert.Symbol,
		color, action,
		alert.Quantity,
		alert.Price,
		alert.Signal,
		modeText(alert.Mode),
		alert.AlertTime.Format("2006-01-02 15:04:05"),
		color, alert.Message)

	return content
}

func (ppn *PushPlusNotifier) sendPushPlusMessage(title, content string) error {
	reqData := PushPlusRequest{
		Token:    ppn.userToken,
		Title:    title,
		Content:  content,
		Template: "html",
		To:       ppn.to,
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("序列化请求数据失败: %v", err)
	}

	resp, err := ppn.httpClient.Post(
		"http://www.pushplus.plus/send",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	var pushResp PushPlusResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	if pushResp.Code != 200 {
		return fmt.Errorf("PushPlus API错误: %s", pushResp.Msg)
	}

	return nil
}

// DingTalkNotifier 钉钉通知器
type DingTalkNotifier struct {
	webhookURL string
	secret     string
	enabled    bool
	httpClient *http.Client
}

// DingTalkMessage 钉钉消息结构
type DingTalkMessage struct {
	MsgType  string            `json:"msgtype"`
	Markdown *DingTalkMarkdown `json:"markdown,omitempty"`
	At       *DingTalkAt       `json:"at,omitempty"`
}

type DingTalkMarkdown struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type DingTalkAt struct {
	AtAll bool `json:"isAtAll"`
}

// DingTalkResponse 钉钉API响应
type DingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func NewDingTalkNotifier(webhookURL, secret string) Interface {
	// 如果没有配置webhook URL，返回控制台通知器
	if webhookURL == "" {
		fmt.Println("🔧 未配置钉钉Webhook URL，使用控制台输出模式")
		return NewConsoleNotifier()
	}

	if secret != "" {
		fmt.Println("✅ 已配置钉钉通知服务（含加签验证）")
	} else {
		fmt.Println("⚠️ 钉钉通知已配置，但未设置secret（建议配置加签验证）")
	}

	return &DingTalkNotifier{
		webhookURL: webhookURL,
		secret:     secret,
		enabled:    true,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (dtn *DingTalkNotifier) SendTradeAlert(alert *types.TradeAlert) error {
	if !dtn.enabled {
		return NewConsoleNotifier().SendTradeAlert(alert)
	}

	action, _ := sideText(alert.Side)
	title := fmt.Sprintf("🔔 交易提醒 - %s %s", alert.Symbol, action)
	content := dtn.buildMarkdownContent(alert)

	if err := dtn.sendDingTalkMessage(title, content); err != nil {
		fmt.Printf("❌ 钉钉发送失败: %v，降级为控制台输出\n", err)
		return NewConsoleNotifier().SendTradeAlert(alert)
	}

	fmt.Printf("✅ 钉钉通知已发送: %s %s %.6f\n", alert.Symbol, alert.Side, alert.Quantity)
	return nil
}

func (dtn *DingTalkNotifier) SendBatchTradeAlerts(alerts []*types.TradeAlert) error {
	for _, alert := range alerts {
		if err := dtn.SendTradeAlert(alert); err != nil {
			return err
		}
	}
	return nil
}

// generateSignature 生成钉钉加签
func (dtn *DingTalkNotifier) generateSignature(timestamp int64) (string, error) {
	if dtn.secret == "" {
		return "", nil // 没有secret则不加签
	}

	// 按照文档要求: timestamp + "\n" + secret
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, dtn.secret)

	// HMAC-SHA256签名
	h := hmac.New(sha256.New, []byte(dtn.secret))
	h.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(h.Sum(nil))

	// URL编码
	return url.QueryEscape(signature), nil
}

// buildSignedURL 构建带签名的URL
func (dtn *DingTalkNotifier) buildSignedURL() (string, error) {
	timestamp := time.Now().UnixNano() / 1e6 // 毫秒时间戳

	if dtn.secret == "" {
		return dtn.webhookURL, nil
	}

	signature, err := dtn.generateSignature(timestamp)
	if err != nil {
		return "", err
	}

	separator := "&"
	if !strings.Contains(dtn.webhookURL, "?") {
		separator = "?"
	}

	return fmt.Sprintf("%s%stimestamp=%d&sign=%s",
		dtn.webhookURL, separator, timestamp, signature), nil
}

// buildMarkdownContent 构建交易提醒的Markdown内容
func (dtn *DingTalkNotifier) buildMarkdownContent(alert *types.TradeAlert) string {
	action, arrow := sideText(alert.Side)
	color := "green"
	if alert.Side == types.SideSell {
		color = "red"
	}

	tradingURL := buildTradingURL(alert.Symbol)

	content := fmt.Sprintf(`## %s 交易信号触发

**用户**: %s
**交易对**: [%s](%s)
**方向**: <font color="%s">%s</font>
**数量**: %.6f
**价格**: $%.6f
**信号**: %s
**模式**: %s
**时间**: %s

> %s`,
		arrow,
		alert.UserID,
		alert.Symbol, tradingURL,
		color, action,
		alert.Quantity,
		alert.Price,
		alert.Signal,
		modeText(alert.Mode),
		alert.AlertTime.Format("2006-01-02 15:04:05"),
		alert.Message)

	return content
}

// sendDingTalkMessage 发送钉钉消息
func (dtn *DingTalkNotifier) sendDingTalkMessage(title, content string) error {
	signedURL, err := dtn.buildSignedURL()
	if err != nil {
		return fmt.Errorf("生成签名失败: %v", err)
	}

	message := &DingTalkMessage{
		MsgType: "markdown",
		Markdown: &DingTalkMarkdown{
			Title: title,
			Text:  content,
		},
		At: &DingTalkAt{
			AtAll: false, // 不@所有人，避免过度打扰
		},
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %v", err)
	}

	resp, err := dtn.httpClient.Post(signedURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	var dingResp DingTalkResponse
	if err := json.NewDecoder(resp.Body).Decode(&dingResp); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	if dingResp.ErrCode != 0 {
		return fmt.Errorf("钉钉API错误 [%d]: %s", dingResp.ErrCode, dingResp.ErrMsg)
	}

	return nil
}
