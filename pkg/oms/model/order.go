package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "PendingNew"
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusReplaced        OrderStatus = "Replaced"
	OrderStatusRejected        OrderStatus = "Rejected"
)

type OrderExecType string

const (
	ExecTypeNew      OrderExecType = "New"
	ExecTypeTrade    OrderExecType = "Trade"
	ExecTypeCanceled OrderExecType = "Canceled"
	ExecTypeReplaced OrderExecType = "Replaced"
	ExecTypeRejected OrderExecType = "Rejected"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order is the gateway-facing view of one order's lifecycle. Prices and
// quantities stay decimal here; the book works in integer ticks and the OMS
// converts at the boundary.
type Order struct {
	OrderID   int64 // book-assigned, monotonic
	GatewayID string

	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time

	Status         OrderStatus
	ExecType       OrderExecType
	ExecID         string
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastQuantity   decimal.Decimal
	LastPrice      decimal.Decimal
}

func (o *Order) UpdateAddOrder(add *AddOrder) {
	o.GatewayID = add.GatewayID
	o.Account = add.Account
	o.Symbol = add.Symbol
	o.Side = add.Side
	o.Price = add.Price
	o.Quantity = add.Quantity
	o.TransactTime = add.TransactTime
	o.Status = OrderStatusPendingNew
	o.ExecType = ExecTypeNew
	o.LeavesQuantity = add.Quantity
}

func (o *Order) Accept() {
	o.Status = OrderStatusNew
	o.ExecType = ExecTypeNew
}

func (o *Order) Reject() {
	o.Status = OrderStatusRejected
	o.ExecType = ExecTypeRejected
	o.LeavesQuantity = decimal.Zero
}

func (o *Order) UpdateCancelOrder(cancel *CancelOrder) {
	o.GatewayID = cancel.GatewayID
	o.Status = OrderStatusCanceled
	o.ExecType = ExecTypeCanceled
	o.LeavesQuantity = decimal.Zero
}

func (o *Order) UpdateModifyOrder(modify *ModifyOrder) {
	o.GatewayID = modify.GatewayID
	o.Price = modify.NewPrice
	o.Quantity = modify.NewQuantity
	o.Status = OrderStatusReplaced
	o.ExecType = ExecTypeReplaced
	o.LeavesQuantity = modify.NewQuantity.Sub(o.CumQuantity)
	if o.LeavesQuantity.IsNegative() {
		o.LeavesQuantity = decimal.Zero
	}
}

// UpdateTrade applies one fill.
func (o *Order) UpdateTrade(qty, price decimal.Decimal) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.Quantity.Sub(o.CumQuantity)
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = ExecTypeTrade
	if o.LeavesQuantity.IsPositive() {
		o.Status = OrderStatusPartiallyFilled
	} else {
		o.Status = OrderStatusFilled
	}
}

func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusPartiallyFilled, OrderStatusReplaced:
		return true
	}
	return false
}

func (o *Order) CanModify() bool {
	return o.CanCancel()
}

// IsEnd reports whether the order reached a terminal status.
func (o *Order) IsEnd() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	}
	return false
}
