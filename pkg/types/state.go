package types

// LedgerMode 交易执行模式
type LedgerMode string

const (
	ModeSimulated LedgerMode = "simulated" // 模拟账本
	ModeLive      LedgerMode = "live"      // 实盘委托
)

// SizingRule 仓位计算规则，按优先级依次生效：
// 余额百分比 > 固定金额 > 固定数量
type SizingRule struct {
	TradePercent float64 `json:"trade_percent" mapstructure:"trade_percent"` // 按可用余额百分比下单
	TradeAmount  float64 `json:"trade_amount" mapstructure:"trade_amount"`   // 按固定金额下单
	TradeQty     float64 `json:"trade_qty" mapstructure:"trade_qty"`         // 按固定数量下单
}

// TradeAction 模拟账本中的一笔成交记录
type TradeAction struct {
	Side  TradeSide `json:"side"`
	Price float64   `json:"price"`
	Qty   float64   `json:"qty"`
}

// SimLedger 模拟账本：现金、持仓与成交流水
type SimLedger struct {
	StartBalance float64       `json:"start_balance"`
	CashBalance  float64       `json:"cash_balance"`
	Position     float64       `json:"position"`
	Trades       []TradeAction `json:"trades"`
}

// NewSimLedger 创建模拟账本
func NewSimLedger(startBalance float64) *SimLedger {
	return &SimLedger{
		StartBalance: startBalance,
		CashBalance:  startBalance,
	}
}

// SymbolState 单个用户单个交易对的交易状态机数据
// 仅由执行状态机修改；首次观察到交易对时创建，不会被隐式删除
type SymbolState struct {
	UserID        string     `json:"user_id"`
	Symbol        string     `json:"symbol"`
	Strategy      string     `json:"strategy"`
	LastSignal    Signal     `json:"last_signal"`
	Position      float64    `json:"position"` // 当前持仓数量，无做空
	Sizing        SizingRule `json:"sizing"`
	MaxPercent    float64    `json:"max_percent"` // 最大仓位占总权益百分比，0表示未设置
	Mode          LedgerMode `json:"mode"`
	StopLossPct   float64    `json:"stop_loss_pct"`   // 止损百分比，0表示不挂保护单
	TakeProfitPct float64    `json:"take_profit_pct"` // 止盈百分比，0表示不挂保护单
	Ledger        *SimLedger `json:"ledger,omitempty"` // 模拟模式下的账本
}
