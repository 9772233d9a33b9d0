package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"binance-trade-sentry/pkg/types"
)

// Manager 数据库管理器
type Manager struct {
	db     *gorm.DB
	config types.MySQLConfig
}

// SignalRecord 信号历史模型
type SignalRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);not null;index:idx_user_symbol" json:"user_id"`
	Symbol     string    `gorm:"type:varchar(20);not null;index:idx_user_symbol" json:"symbol"`
	Strategy   string    `gorm:"type:varchar(20);not null" json:"strategy"`
	Signal     string    `gorm:"type:varchar(20);not null" json:"signal"`
	Price      float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	SignalTime int64     `gorm:"not null;index:idx_signal_time" json:"signal_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// TradeRecord 成交历史模型
type TradeRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;index:idx_user_symbol" json:"user_id"`
	Symbol    string    `gorm:"type:varchar(20);not null;index:idx_user_symbol" json:"symbol"`
	Side      string    `gorm:"type:enum('BUY','SELL');not null" json:"side"`
	Quantity  float64   `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Price     float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	Mode      string    `gorm:"type:varchar(10);not null" json:"mode"`
	TradeTime int64     `gorm:"not null;index:idx_trade_time" json:"trade_time"`
	CreatedAt time.Time `json:"created_at"`
}

// StrategyPerformance 策略表现统计模型，按交易对×日期聚合
type StrategyPerformance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Symbol       string    `gorm:"type:varchar(20);not null;uniqueIndex:uk_symbol_date" json:"symbol"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uk_symbol_date" json:"date"`
	TotalSignals int       `gorm:"default:0" json:"total_signals"`
	BuySignals   int       `gorm:"default:0" json:"buy_signals"`
	SellSignals  int       `gorm:"default:0" json:"sell_signals"`
	TradeCount   int       `gorm:"default:0" json:"trade_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewManager 创建数据库管理器
func NewManager(config types.MySQLConfig) (*Manager, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)

	// 配置GORM日志
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 生产环境使用Silent
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %v", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %v", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	manager := &Manager{
		db:     db,
		config: config,
	}

	// 自动迁移表结构
	if err := manager.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %v", err)
	}

	zap.L().Info("✅ MySQL数据库连接成功",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("database", config.Database))

	return manager, nil
}

// AutoMigrate 自动迁移表结构
func (m *Manager) AutoMigrate() error {
	return m.db.AutoMigrate(
		&SignalRecord{},
		&TradeRecord{},
		&StrategyPerformance{},
	)
}

// SaveSignal 保存信号历史
func (m *Manager) SaveSignal(userID, symbol, strategy string, signal types.Signal, price float64, signalTime time.Time) error {
	record := &SignalRecord{
		UserID:     userID,
		Symbol:     symbol,
		Strategy:   strategy,
		Signal:     string(signal),
		Price:      price,
		SignalTime: signalTime.Unix(),
		CreatedAt:  time.Now(),
	}
	return m.db.Create(record).Error
}

// SaveTrade 保存成交历史
func (m *Manager) SaveTrade(alert *types.TradeAlert) error {
	record := &TradeRecord{
		UserID:    alert.UserID,
		Symbol:    alert.Symbol,
		Side:      string(alert.Side),
		Quantity:  alert.Quantity,
		Price:     alert.Price,
		Mode:      string(alert.Mode),
		TradeTime: alert.AlertTime.Unix(),
		CreatedAt: time.Now(),
	}
	return m.db.Create(record).Error
}

// UpdateStrategyPerformance 更新策略表现统计
func (m *Manager) UpdateStrategyPerformance(symbol string, signal types.Signal, traded bool) error {
	today := time.Now().Truncate(24 * time.Hour)

	var performance StrategyPerformance
	result := m.db.Where("symbol = ? AND date = ?", symbol, today).First(&performance)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// 创建新记录
		performance = StrategyPerformance{
			Symbol:       symbol,
			Date:         today,
			TotalSignals: 1,
		}

		if signal == types.SignalBuy {
			performance.BuySignals = 1
		} else if signal == types.SignalSell {
			performance.SellSignals = 1
		}
		if traded {
			performance.TradeCount = 1
		}

		return m.db.Create(&performance).Error
	} else if result.Error != nil {
		return result.Error
	}

	// 更新现有记录
	updates := map[string]interface{}{
		"total_signals": performance.TotalSignals + 1,
	}

	if signal == types.SignalBuy {
		updates["buy_signals"] = performance.BuySignals + 1
	} else if signal == types.SignalSell {
		updates["sell_signals"] = performance.SellSignals + 1
	}
	if traded {
		updates["trade_count"] = performance.TradeCount + 1
	}

	return m.db.Model(&performance).Where("id = ?", performance.ID).Updates(updates).Error
}

// GetSignals 获取信号历史
func (m *Manager) GetSignals(symbol string, limit int) ([]SignalRecord, error) {
	var records []SignalRecord
	err := m.db.Where("symbol = ?", symbol).
		Order("signal_time DESC").
		Limit(limit).
		Find(&records).Error

	return records, err
}

// GetTrades 获取成交历史
func (m *Manager) GetTrades(userID, symbol string, limit int) ([]TradeRecord, error) {
	var records []TradeRecord
	err := m.db.Where("user_id = ? AND symbol = ?", userID, symbol).
		Order("trade_time DESC").
		Limit(limit).
		Find(&records).Error

	return records, err
}

// GetStrategyPerformance 获取策略表现数据
func (m *Manager) GetStrategyPerformance(symbol string, days int) ([]StrategyPerformance, error) {
	var performances []StrategyPerformance
	startDate := time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	err := m.db.Where("symbol = ? AND date >= ?", symbol, startDate).
		Order("date DESC").
		Find(&performances).Error

	return performances, err
}

// Close 关闭数据库连接
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库连接健康状态
func (m *Manager) Health() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
