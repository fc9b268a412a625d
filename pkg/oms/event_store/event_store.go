package eventstore

import "github.com/joripage/limitbook/pkg/oms/model"

// EventStore records execution reports and the gateway-id chain that links
// cancels and modifies back to the order they target.
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	TrackGatewayChain(orderID int64, gatewayID, origGatewayID string)
	LatestGatewayID(orderID int64) string
	OrderID(gatewayID string) (int64, bool)
	ReconstructChain(gatewayID string) []string
	Events(orderID int64) []*model.OrderEvent
	DeleteChainByOrderID(orderID int64)
}
