package engine

import (
	"fmt"

	"go.uber.org/zap"

	"binance-trade-sentry/pkg/types"
)

// DecideAndExecute 交易状态机核心：信号切换时决定并执行交易
//
// 语义约定（只跳过不重试）：
//   - 仅当信号与上次已处理信号不同才触发，且无论后续仓位计算中止
//     还是委托失败，LastSignal都会前移，同一信号不会被重复执行
//   - 委托失败时持仓数据保持不变，修复依赖后续新信号
//
// 返回交易决策与执行器的状态信息；未产生交易时决策为nil
func DecideAndExecute(state *types.SymbolState, signal types.Signal, price float64, exec Executor) (*types.TradeDecision, string, error) {
	if signal == state.LastSignal {
		return nil, "", nil
	}
	state.LastSignal = signal

	switch signal {
	case types.SignalBuy:
		return executeBuy(state, price, exec)
	case types.SignalSell:
		return executeSell(state, price, exec)
	default:
		// hold与套利信号不驱动状态机
		return nil, "", nil
	}
}

// executeBuy 计算买入数量并执行
func executeBuy(state *types.SymbolState, price float64, exec Executor) (*types.TradeDecision, string, error) {
	if price <= 0 {
		return nil, "", fmt.Errorf("无效价格: %f", price)
	}

	cash, err := exec.Balance()
	if err != nil {
		return nil, "", fmt.Errorf("余额查询失败: %w", err)
	}

	equity := cash + state.Position*price

	// 仓位上限检查：剩余可投入额度按总权益计算
	var allowed float64
	if state.MaxPercent > 0 {
		allowed = equity*state.MaxPercent/100 - state.Position*price
		if allowed <= 0 {
			zap.L().Info("📊 仓位已达上限，跳过买入",
				zap.String("symbol", state.Symbol),
				zap.Float64("max_percent", state.MaxPercent))
			return nil, "", nil
		}
		if cash <= 0 {
			zap.L().Info("📊 现金不足，跳过买入", zap.String("symbol", state.Symbol))
			return nil, "", nil
		}
	} else if state.Position > 0 {
		// 未配置仓位上限时执行单仓规则：已有持仓不再加仓
		zap.L().Info("📊 已有持仓且未配置仓位上限，跳过买入",
			zap.String("symbol", state.Symbol),
			zap.Float64("position", state.Position))
		return nil, "", nil
	}

	qty := rawQuantity(state.Sizing, cash, price)
	if qty <= 0 {
		zap.L().Info("📊 未配置有效仓位规则，跳过买入", zap.String("symbol", state.Symbol))
		return nil, "", nil
	}

	if state.MaxPercent > 0 && qty*price > allowed {
		qty = allowed / price
	}
	if qty <= 0 {
		return nil, "", nil
	}

	message, err := exec.Execute(types.SideBuy, qty, price)
	if err != nil {
		return nil, "", err
	}

	state.Position += qty
	return &types.TradeDecision{
		Side:     types.SideBuy,
		Quantity: qty,
		Mode:     state.Mode,
	}, message, nil
}

// executeSell 清仓卖出
func executeSell(state *types.SymbolState, price float64, exec Executor) (*types.TradeDecision, string, error) {
	if state.Position <= 0 {
		return nil, "", nil
	}

	qty := state.Position
	message, err := exec.Execute(types.SideSell, qty, price)
	if err != nil {
		return nil, "", err
	}

	state.Position -= qty
	if state.Position < 0 {
		state.Position = 0
	}

	return &types.TradeDecision{
		Side:     types.SideSell,
		Quantity: qty,
		Mode:     state.Mode,
	}, message, nil
}

// rawQuantity 按优先级计算下单数量：余额百分比 > 固定金额 > 固定数量
func rawQuantity(rule types.SizingRule, cash, price float64) float64 {
	switch {
	case rule.TradePercent > 0:
		return cash * rule.TradePercent / 100 / price
	case rule.TradeAmount > 0:
		return rule.TradeAmount / price
	case rule.TradeQty > 0:
		return rule.TradeQty
	default:
		return 0
	}
}
