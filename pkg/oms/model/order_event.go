package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is one execution report in an order's audit trail. Events are
// append-only; the archive worker persists them as-is.
type OrderEvent struct {
	EventID       string          `json:"event_id" gorm:"primaryKey"`
	OrderID       int64           `json:"order_id"`
	GatewayID     string          `json:"gateway_id"`
	OrigGatewayID string          `json:"orig_gateway_id"`
	Symbol        string          `json:"symbol"`
	Side          OrderSide       `json:"side"`
	ExecType      OrderExecType   `json:"exec_type"`
	OrderStatus   OrderStatus     `json:"order_status"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	CumQuantity   decimal.Decimal `json:"cum_quantity"`
	LeavesQty     decimal.Decimal `json:"leaves_qty"`
	LastQuantity  decimal.Decimal `json:"last_quantity"`
	LastPrice     decimal.Decimal `json:"last_price"`
	ExecID        string          `json:"exec_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:      NewEventID(order.OrderID, order.ExecID),
		OrderID:      order.OrderID,
		GatewayID:    order.GatewayID,
		Symbol:       order.Symbol,
		Side:         order.Side,
		ExecType:     order.ExecType,
		OrderStatus:  order.Status,
		Price:        order.Price,
		Quantity:     order.Quantity,
		CumQuantity:  order.CumQuantity,
		LeavesQty:    order.LeavesQuantity,
		LastQuantity: order.LastQuantity,
		LastPrice:    order.LastPrice,
		ExecID:       order.ExecID,
		Timestamp:    ts,
	}
}

func NewEventID(orderID int64, execID string) string {
	return fmt.Sprintf("%d-%s", orderID, execID)
}
