package oms

import (
	"time"

	"github.com/joripage/limitbook/pkg/oms/model"
)

func (s *OMS) AddOrderToMap(order *model.Order) {
	s.orderIDMapping.Store(order.OrderID, order)
}

func (s *OMS) GetOrderByOrderID(orderID int64) (*model.Order, error) {
	val, ok := s.orderIDMapping.Load(orderID)
	if !ok {
		return nil, errOrderIDNotFound
	}
	return val.(*model.Order), nil
}

func (s *OMS) DeleteOrderByOrderID(orderID int64) {
	s.orderIDMapping.Delete(orderID)
}

// startCleaner periodically drops terminal orders and their gateway-id
// chains so long-running sessions don't grow without bound.
func (s *OMS) startCleaner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *OMS) cleanup() {
	s.orderIDMapping.Range(func(k, v any) bool {
		order := v.(*model.Order)
		if order.IsEnd() {
			s.DeleteOrderByOrderID(order.OrderID)
			s.eventstore.DeleteChainByOrderID(order.OrderID)
		}
		return true
	})
}
