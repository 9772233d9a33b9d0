package types

// OrderReceipt 交易所委托回执
type OrderReceipt struct {
	OrderID int64  `json:"order_id"`
	Symbol  string `json:"symbol"`
	Status  string `json:"status"`
}
