package oms

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	eventstore "github.com/joripage/limitbook/pkg/oms/event_store"
	"github.com/joripage/limitbook/pkg/oms/model"
	"github.com/joripage/limitbook/pkg/orderbook"
)

type Config struct {
	// tick scale per symbol: number of decimal places one price tick carries
	TickScales       map[string]int32
	DefaultTickScale int32
	CleanupInterval  time.Duration
}

// OMS sits between gateways and the matching books: it converts decimal
// prices to ticks, keeps the order-id mappings, and turns trades into
// execution reports and audit events.
type OMS struct {
	orderGateway     OrderGateway
	orderbookManager *orderbook.OrderBookManager
	eventstore       eventstore.EventStore
	cfg              *Config

	orderIDMapping sync.Map // orderID int64 -> *model.Order
	stopCh         chan struct{}
	stopOnce       sync.Once
}

var totalMatchQty int64
var totalMatchCount int64

func NewOMS(orderGateway OrderGateway, store eventstore.EventStore, cfg *Config) *OMS {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 10 * time.Second
	}
	if store == nil {
		store = eventstore.NewInMemoryEventStore()
	}

	return &OMS{
		orderGateway:     orderGateway,
		orderbookManager: orderbook.NewOrderBookManager(),
		eventstore:       store,
		cfg:              cfg,
		stopCh:           make(chan struct{}),
	}
}

// Books exposes the underlying book manager for read-only market data.
func (s *OMS) Books() *orderbook.OrderBookManager {
	return s.orderbookManager
}

func (s *OMS) Start(ctx context.Context) error {
	go s.startCleaner(s.cfg.CleanupInterval)
	return s.orderGateway.Start(ctx)
}

func (s *OMS) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *OMS) AddOrder(ctx context.Context, addOrder *model.AddOrder) error {
	if _, ok := s.eventstore.OrderID(addOrder.GatewayID); ok {
		return errDuplicateOrder
	}

	order := &model.Order{}
	order.UpdateAddOrder(addOrder)
	order.ExecID = uuid.New().String()

	priceTicks, err := priceToTicks(addOrder.Price, s.tickScale(addOrder.Symbol))
	if err != nil {
		order.Reject()
		s.report(ctx, order, "")
		return err
	}
	lots, err := qtyToLots(addOrder.Quantity)
	if err != nil {
		order.Reject()
		s.report(ctx, order, "")
		return err
	}

	orderID, trades, err := s.orderbookManager.AddOrder(
		addOrder.Symbol, orderbook.Side(addOrder.Side), priceTicks, lots)
	if err != nil {
		order.Reject()
		s.report(ctx, order, "")
		return err
	}

	order.OrderID = orderID
	order.Accept()
	s.AddOrderToMap(order)
	s.eventstore.TrackGatewayChain(orderID, addOrder.GatewayID, "")
	s.report(ctx, order, "")

	s.processTrades(ctx, trades)
	return nil
}

func (s *OMS) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	orderID, ok := s.eventstore.OrderID(cancelOrder.OrigGatewayID)
	if !ok {
		return errGatewayIDNotFound
	}
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		return errInvalidOrderStatus
	}

	if err := s.orderbookManager.CancelOrder(order.Symbol, order.OrderID); err != nil {
		return errOrderIDNotFound
	}

	order.ExecID = uuid.New().String()
	order.UpdateCancelOrder(cancelOrder)
	s.eventstore.TrackGatewayChain(order.OrderID, cancelOrder.GatewayID, cancelOrder.OrigGatewayID)
	s.report(ctx, order, cancelOrder.OrigGatewayID)
	return nil
}

func (s *OMS) ModifyOrder(ctx context.Context, modifyOrder *model.ModifyOrder) error {
	orderID, ok := s.eventstore.OrderID(modifyOrder.OrigGatewayID)
	if !ok {
		return errGatewayIDNotFound
	}
	order, err := s.GetOrderByOrderID(orderID)
	if err != nil {
		return err
	}
	if !order.CanModify() {
		return errInvalidOrderStatus
	}

	priceTicks, err := priceToTicks(modifyOrder.NewPrice, s.tickScale(order.Symbol))
	if err != nil {
		return err
	}
	// NewQuantity is the new total; the book only holds what is left to fill
	remaining := modifyOrder.NewQuantity.Sub(order.CumQuantity)
	if !remaining.IsPositive() {
		return errInvalidQuantity
	}
	lots, err := qtyToLots(remaining)
	if err != nil {
		return err
	}

	trades, err := s.orderbookManager.ModifyOrder(order.Symbol, order.OrderID, priceTicks, lots)
	if err != nil {
		if err == orderbook.ErrOrderNotFound {
			return errOrderIDNotFound
		}
		return err
	}

	order.ExecID = uuid.New().String()
	order.UpdateModifyOrder(modifyOrder)
	s.eventstore.TrackGatewayChain(order.OrderID, modifyOrder.GatewayID, modifyOrder.OrigGatewayID)
	s.report(ctx, order, modifyOrder.OrigGatewayID)

	s.processTrades(ctx, trades)
	return nil
}

func (s *OMS) processTrades(ctx context.Context, trades []orderbook.Trade) {
	for _, trade := range trades {
		atomic.AddInt64(&totalMatchQty, trade.Qty)
		if atomic.AddInt64(&totalMatchCount, 1)%10000 == 0 {
			zap.S().Infof("totalMatchCount=%d totalMatchQty=%d",
				atomic.LoadInt64(&totalMatchCount), atomic.LoadInt64(&totalMatchQty))
		}

		scale := s.tickScale(trade.Symbol)
		qty := decimal.NewFromInt(trade.Qty)
		price := priceFromTicks(trade.Price, scale)

		for _, id := range []int64{trade.BuyOrderID, trade.SellOrderID} {
			order, err := s.GetOrderByOrderID(id)
			if err != nil {
				zap.S().Warnf("trade references unknown orderID=%d", id)
				continue
			}
			order.ExecID = uuid.New().String()
			order.UpdateTrade(qty, price)
			s.report(ctx, order, "")
		}
	}
}

// report snapshots the order, records the event and notifies the gateway.
func (s *OMS) report(ctx context.Context, order *model.Order, origGatewayID string) {
	bkOrder := *order
	now := time.Now()

	ev := model.NewOrderEvent(bkOrder, now)
	ev.OrigGatewayID = origGatewayID
	if bkOrder.OrderID != 0 {
		s.eventstore.AddEvent(ev)
	}
	s.orderGateway.OnOrderReport(ctx, bkOrder)
}

func (s *OMS) tickScale(symbol string) int32 {
	if scale, ok := s.cfg.TickScales[symbol]; ok {
		return scale
	}
	return s.cfg.DefaultTickScale
}
