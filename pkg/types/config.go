package types

import "time"

// Config 主配置结构
type Config struct {
	Log      LogConfig             `mapstructure:"log"`
	Redis    RedisConfig           `mapstructure:"redis"`
	Database DatabaseConfig        `mapstructure:"database"`
	DingTalk DingTalkConfig        `mapstructure:"dingtalk"`
	PushPlus PushPlusConfig        `mapstructure:"pushplus"`
	Network  NetworkConfig         `mapstructure:"network"`
	Engine   EngineConfig          `mapstructure:"engine"`
	Strategy StrategyConfig        `mapstructure:"strategy"`
	Stream   StreamConfig          `mapstructure:"stream"`
	Users    map[string]UserConfig `mapstructure:"users"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	FilePath   string `mapstructure:"file_path"`   // 日志输出路径名
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件大小 单位：MB，超限后会自动切割
	MaxAge     int    `mapstructure:"max_age"`     // 日志文件存放时间 单位：天
	MaxBackups int    `mapstructure:"max_backups"` // 日志文件备份数量
	Compress   bool   `mapstructure:"compress"`    // 日志文件压缩
}

// RedisConfig Redis配置
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DingTalkConfig 钉钉配置
type DingTalkConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Secret     string `mapstructure:"secret"`
}

// PushPlusConfig PushPlus配置
type PushPlusConfig struct {
	UserToken string `mapstructure:"user_token"`
	To        string `mapstructure:"to"` // 好友令牌，多人用逗号分隔
}

// NetworkConfig 网络配置
type NetworkConfig struct {
	Proxy   string        `mapstructure:"proxy"`   // HTTP代理地址，如 http://127.0.0.1:7890
	Timeout time.Duration `mapstructure:"timeout"` // 网络超时时间
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
}

// MySQLConfig MySQL配置
type MySQLConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// EngineConfig 信号引擎配置
type EngineConfig struct {
	Interval     time.Duration `mapstructure:"interval"`      // 评估周期
	HistoryLimit int           `mapstructure:"history_limit"` // 每次评估拉取的日线数量
	Benchmark    string        `mapstructure:"benchmark"`     // 基准交易对，用于判断市场状态
}

// StreamConfig 实时行情流配置
type StreamConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Endpoint             string        `mapstructure:"endpoint"`
	ReconnectInterval    time.Duration `mapstructure:"reconnect_interval"`
	PingInterval         time.Duration `mapstructure:"ping_interval"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
}

// StrategyConfig 策略配置总入口
type StrategyConfig struct {
	Momentum  MomentumConfig  `mapstructure:"momentum"`
	Trend     TrendConfig     `mapstructure:"trend"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
}

// MomentumConfig 动量策略配置
type MomentumConfig struct {
	StressThreshold float64      `mapstructure:"stress_threshold"` // ATR比率压力阈值，默认0.08
	Weights         ScoreWeights `mapstructure:"weights"`
}

// TrendConfig 趋势跟踪策略配置
type TrendConfig struct {
	ShortWindow    int `mapstructure:"short_window"`    // 短周期EMA窗口，默认20
	LongWindow     int `mapstructure:"long_window"`     // 长周期EMA窗口，默认50
	DonchianWindow int `mapstructure:"donchian_window"` // 唐奇安通道窗口，默认20
}

// ArbitrageConfig 跨交易所套利策略配置
type ArbitrageConfig struct {
	Symbol    string  `mapstructure:"symbol"`    // 套利交易对，默认BTCUSDT
	Threshold float64 `mapstructure:"threshold"` // 价差触发阈值，默认0.01即1%
}

// UserConfig 用户配置：实盘凭据与各交易对的自动交易参数
type UserConfig struct {
	APIKey        string                  `mapstructure:"api_key"`
	APISecret     string                  `mapstructure:"api_secret"`
	Notifications bool                    `mapstructure:"notifications"`
	Symbols       map[string]SymbolConfig `mapstructure:"symbols"`
}

// SymbolConfig 单个交易对的自动交易参数
type SymbolConfig struct {
	Strategy        string  `mapstructure:"strategy"`          // 策略名称，默认momentum
	TradePercent    float64 `mapstructure:"trade_percent"`     // 按余额百分比下单
	TradeAmount     float64 `mapstructure:"trade_amount"`      // 按固定金额下单
	TradeQty        float64 `mapstructure:"trade_qty"`         // 按固定数量下单
	MaxPercent      float64 `mapstructure:"max_percent"`       // 最大仓位占权益百分比
	StopLossPct     float64 `mapstructure:"stop_loss_pct"`     // 止损百分比
	TakeProfitPct   float64 `mapstructure:"take_profit_pct"`   // 止盈百分比
	Simulated       bool    `mapstructure:"simulated"`         // 是否使用模拟账本
	SimStartBalance float64 `mapstructure:"sim_start_balance"` // 模拟账本初始资金
}
