package eventstore

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/pkg/oms/model"
)

// JetStreamEventStore wraps another store and additionally publishes every
// event to a JetStream subject so the archive worker can persist it.
// Publishing is async and best-effort; the in-process store stays the
// source of truth for lookups.
type JetStreamEventStore struct {
	inner   EventStore
	js      nats.JetStreamContext
	subject string
}

func NewJetStreamEventStore(inner EventStore, js nats.JetStreamContext, subject string) *JetStreamEventStore {
	return &JetStreamEventStore{inner: inner, js: js, subject: subject}
}

func (s *JetStreamEventStore) AddEvent(ev *model.OrderEvent) {
	s.inner.AddEvent(ev)

	data, err := json.Marshal(ev)
	if err != nil {
		zap.S().Errorf("marshal order event %s: %v", ev.EventID, err)
		return
	}
	if _, err := s.js.PublishAsync(s.subject, data); err != nil {
		zap.S().Errorf("publish order event %s: %v", ev.EventID, err)
	}
}

func (s *JetStreamEventStore) TrackGatewayChain(orderID int64, gatewayID, origGatewayID string) {
	s.inner.TrackGatewayChain(orderID, gatewayID, origGatewayID)
}

func (s *JetStreamEventStore) LatestGatewayID(orderID int64) string {
	return s.inner.LatestGatewayID(orderID)
}

func (s *JetStreamEventStore) OrderID(gatewayID string) (int64, bool) {
	return s.inner.OrderID(gatewayID)
}

func (s *JetStreamEventStore) ReconstructChain(gatewayID string) []string {
	return s.inner.ReconstructChain(gatewayID)
}

func (s *JetStreamEventStore) Events(orderID int64) []*model.OrderEvent {
	return s.inner.Events(orderID)
}

func (s *JetStreamEventStore) DeleteChainByOrderID(orderID int64) {
	s.inner.DeleteChainByOrderID(orderID)
}
