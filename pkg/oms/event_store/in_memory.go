package eventstore

import (
	"sync"

	"github.com/joripage/limitbook/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu              sync.RWMutex
	events          map[int64][]*model.OrderEvent
	latestGatewayID map[int64]string  // orderID -> current gateway id
	gatewayChain    map[string]string // gatewayID -> OrigGatewayID
	orderIDs        map[string]int64  // gatewayID -> orderID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events:          make(map[int64][]*model.OrderEvent),
		latestGatewayID: make(map[int64]string),
		gatewayChain:    make(map[string]string),
		orderIDs:        make(map[string]int64),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
	s.track(ev.OrderID, ev.GatewayID, ev.OrigGatewayID)
}

func (s *InMemoryEventStore) TrackGatewayChain(orderID int64, gatewayID, origGatewayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(orderID, gatewayID, origGatewayID)
}

func (s *InMemoryEventStore) track(orderID int64, gatewayID, origGatewayID string) {
	if gatewayID == "" {
		return
	}
	s.latestGatewayID[orderID] = gatewayID
	s.orderIDs[gatewayID] = orderID
	if origGatewayID != "" {
		s.gatewayChain[gatewayID] = origGatewayID
	}
}

func (s *InMemoryEventStore) LatestGatewayID(orderID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestGatewayID[orderID]
}

func (s *InMemoryEventStore) OrderID(gatewayID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.orderIDs[gatewayID]
	return id, ok
}

// ReconstructChain walks backward to the full chain of gateway ids.
func (s *InMemoryEventStore) ReconstructChain(gatewayID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chain []string
	curr := gatewayID
	for curr != "" {
		chain = append(chain, curr)
		curr = s.gatewayChain[curr]
	}
	return chain
}

func (s *InMemoryEventStore) Events(orderID int64) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.OrderEvent(nil), s.events[orderID]...)
}

func (s *InMemoryEventStore) DeleteChainByOrderID(orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	curr := s.latestGatewayID[orderID]
	for curr != "" {
		next := s.gatewayChain[curr]
		delete(s.gatewayChain, curr)
		delete(s.orderIDs, curr)
		curr = next
	}
	delete(s.latestGatewayID, orderID)
	delete(s.events, orderID)
}
