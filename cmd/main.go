package main

import (
	"log"

	"binance-trade-sentry/pkg/config"
	"binance-trade-sentry/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化日志
	if _, err := logger.Init(cfg.Log); err != nil {
		log.Fatal("初始化日志失败:", err)
	}

	app := NewApp(cfg)
	app.Start()
	app.WaitForShutdown()
	app.Stop()
}
