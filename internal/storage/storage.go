package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"binance-trade-sentry/pkg/types"
)

const stateKeyPrefix = "sentry:state:"

// StateManager 交易状态管理器
// 内存为主存储，Redis作为异步备份；Redis不可用时自动降级为纯内存模式
type StateManager struct {
	states      map[string]*types.SymbolState
	quotes      map[string]types.QuoteTick
	mutex       sync.RWMutex
	redisClient *redis.Client
	useRedis    bool
}

// NewStateManager 创建状态管理器并尝试连接Redis
func NewStateManager(redisConfig types.RedisConfig) *StateManager {
	sm := &StateManager{
		states: make(map[string]*types.SymbolState),
		quotes: make(map[string]types.QuoteTick),
	}

	// 尝试连接Redis
	if redisConfig.URL != "" {
		sm.redisClient = redis.NewClient(&redis.Options{
			Addr:     redisConfig.URL,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		})

		// 测试连接
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := sm.redisClient.Ping(ctx).Result()
		if err != nil {
			fmt.Printf("⚠️  Redis连接失败，使用纯内存模式: %v\n", err)
			sm.useRedis = false
		} else {
			fmt.Println("✅ Redis连接成功")
			sm.useRedis = true
		}
	} else {
		fmt.Println("🔧 未配置Redis，使用纯内存模式")
		sm.useRedis = false
	}

	return sm
}

// stateKey 状态在内存与Redis中的唯一键
func stateKey(userID, symbol string) string {
	return userID + ":" + symbol
}

// GetOrCreate 获取或创建交易状态
// 首次观察到用户×交易对组合时按配置初始化，优先从Redis恢复历史状态
func (sm *StateManager) GetOrCreate(userID, symbol string, cfg types.SymbolConfig) *types.SymbolState {
	key := stateKey(userID, symbol)

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if state, ok := sm.states[key]; ok {
		return state
	}

	if restored := sm.restoreFromRedis(key); restored != nil {
		sm.states[key] = restored
		return restored
	}

	state := newStateFromConfig(userID, symbol, cfg)
	sm.states[key] = state
	return state
}

// newStateFromConfig 按交易对配置初始化状态
func newStateFromConfig(userID, symbol string, cfg types.SymbolConfig) *types.SymbolState {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = "momentum"
	}

	mode := types.ModeLive
	var ledger *types.SimLedger
	if cfg.Simulated {
		mode = types.ModeSimulated
		startBalance := cfg.SimStartBalance
		if startBalance <= 0 {
			startBalance = 10000
		}
		ledger = types.NewSimLedger(startBalance)
	}

	return &types.SymbolState{
		UserID:     userID,
		Symbol:     symbol,
		Strategy:   strategy,
		LastSignal: types.SignalHold,
		Sizing: types.SizingRule{
			TradePercent: cfg.TradePercent,
			TradeAmount:  cfg.TradeAmount,
			TradeQty:     cfg.TradeQty,
		},
		MaxPercent:    cfg.MaxPercent,
		Mode:          mode,
		StopLossPct:   cfg.StopLossPct,
		TakeProfitPct: cfg.TakeProfitPct,
		Ledger:        ledger,
	}
}

// Persist 异步备份状态到Redis
func (sm *StateManager) Persist(state *types.SymbolState) {
	if !sm.useRedis {
		return
	}

	value, err := json.Marshal(state)
	if err != nil {
		fmt.Printf("序列化交易状态失败 %s:%s: %v\n", state.UserID, state.Symbol, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		key := stateKeyPrefix + stateKey(state.UserID, state.Symbol)
		if err := sm.redisClient.Set(ctx, key, value, 0).Err(); err != nil {
			fmt.Printf("Redis状态备份失败 %s: %v\n", key, err)
		}
	}()
}

// restoreFromRedis 从Redis恢复单个状态，未启用或无备份时返回nil
// 调用方需持有写锁
func (sm *StateManager) restoreFromRedis(key string) *types.SymbolState {
	if !sm.useRedis {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	value, err := sm.redisClient.Get(ctx, stateKeyPrefix+key).Result()
	if err != nil {
		return nil
	}

	var state types.SymbolState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		fmt.Printf("Redis状态解析失败 %s: %v\n", key, err)
		return nil
	}

	fmt.Printf("♻️  已从Redis恢复交易状态: %s\n", key)
	return &state
}

// AllStates 返回全部状态，按键排序保证遍历顺序稳定
func (sm *StateManager) AllStates() []*types.SymbolState {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	keys := make([]string, 0, len(sm.states))
	for key := range sm.states {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	states := make([]*types.SymbolState, 0, len(keys))
	for _, key := range keys {
		states = append(states, sm.states[key])
	}
	return states
}

// StoreQuote 写入实时报价缓存
func (sm *StateManager) StoreQuote(symbol string, price float64, timestamp time.Time) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sm.quotes[symbol] = types.QuoteTick{
		Symbol:    symbol,
		Price:     price,
		Timestamp: timestamp,
	}
}

// LatestQuote 读取未过期的实时报价
func (sm *StateManager) LatestQuote(symbol string, maxAge time.Duration) (float64, bool) {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	tick, ok := sm.quotes[symbol]
	if !ok || time.Since(tick.Timestamp) > maxAge {
		return 0, false
	}
	return tick.Price, true
}

// GetRedisStats 获取Redis统计信息
func (sm *StateManager) GetRedisStats() map[string]interface{} {
	sm.mutex.RLock()
	stateCount := len(sm.states)
	sm.mutex.RUnlock()

	stats := map[string]interface{}{
		"redis_enabled": sm.useRedis,
		"memory_states": stateCount,
	}

	if sm.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		keys, err := sm.redisClient.Keys(ctx, stateKeyPrefix+"*").Result()
		if err == nil {
			stats["redis_keys"] = len(keys)
		} else {
			stats["redis_error"] = err.Error()
		}
	}

	return stats
}
