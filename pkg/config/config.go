package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"binance-trade-sentry/pkg/types"
)

// Load 加载配置
func Load() (*types.Config, error) {
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	setDefaults()

	// 读取环境变量
	viper.AutomaticEnv()

	// 优先尝试读取本地配置文件
	viper.SetConfigName("config.local")
	if err := viper.ReadInConfig(); err != nil {
		// 如果本地配置文件不存在，尝试读取默认配置文件
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, err
			}
		}
	}

	var config types.Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file_path", "logs")
	viper.SetDefault("log.max_size", 200)
	viper.SetDefault("log.max_age", 30)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.compress", false)
	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.max_idle_conns", 5)
	viper.SetDefault("database.mysql.max_open_conns", 20)
	viper.SetDefault("dingtalk.webhook_url", "")
	viper.SetDefault("dingtalk.secret", "")
	viper.SetDefault("pushplus.user_token", "")
	viper.SetDefault("pushplus.to", "")
	viper.SetDefault("network.proxy", "")
	viper.SetDefault("network.timeout", 30*time.Second)
	viper.SetDefault("engine.interval", 5*time.Minute)
	viper.SetDefault("engine.history_limit", 400)
	viper.SetDefault("engine.benchmark", "BTCUSDT")
	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.endpoint", "wss://fstream.binance.com/ws")
	viper.SetDefault("stream.reconnect_interval", 5*time.Second)
	viper.SetDefault("stream.ping_interval", 20*time.Second)
	viper.SetDefault("stream.max_reconnect_attempts", 10)
	viper.SetDefault("strategy.momentum.stress_threshold", 0.08)
	viper.SetDefault("strategy.momentum.weights.trend", 0.5)
	viper.SetDefault("strategy.momentum.weights.volume", 0.2)
	viper.SetDefault("strategy.momentum.weights.rel_strength", 0.2)
	viper.SetDefault("strategy.momentum.weights.fundamentals", 0.1)
	viper.SetDefault("strategy.trend.short_window", 20)
	viper.SetDefault("strategy.trend.long_window", 50)
	viper.SetDefault("strategy.trend.donchian_window", 20)
	viper.SetDefault("strategy.arbitrage.symbol", "BTCUSDT")
	viper.SetDefault("strategy.arbitrage.threshold", 0.01)
}
