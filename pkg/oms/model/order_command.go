package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commands arriving from a gateway. GatewayID is the client-side
// correlation id; OrigGatewayID chains a cancel/modify to the request it
// targets. Book order ids never leave the engine.

type AddOrder struct {
	GatewayID    string
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

type CancelOrder struct {
	GatewayID     string
	OrigGatewayID string
}

type ModifyOrder struct {
	GatewayID     string
	OrigGatewayID string
	NewPrice      decimal.Decimal
	NewQuantity   decimal.Decimal
}
